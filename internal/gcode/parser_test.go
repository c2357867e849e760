package gcode

import (
	"testing"
)

func TestParse_BasicMoves(t *testing.T) {
	code := `; header
G90
G0 Z5
G0 X10 Y10
G1 Z-3 F300
G1 X20 Y10 F1000
G1 X20 Y20
G0 Z5
M2
`
	moves := Parse(code)
	if len(moves) != 6 {
		t.Fatalf("expected 6 moves, got %d", len(moves))
	}

	wantTypes := []MoveType{MoveRetract, MoveRapid, MovePlunge, MoveFeed, MoveFeed, MoveRetract}
	for i, want := range wantTypes {
		if moves[i].Type != want {
			t.Errorf("move %d: got type %d, want %d", i, moves[i].Type, want)
		}
	}
	if moves[3].FeedRate != 1000 || moves[4].FeedRate != 1000 {
		t.Error("feed rate should be modal")
	}
	if moves[4].FromX != 20 || moves[4].FromY != 10 || moves[4].ToY != 20 {
		t.Errorf("unexpected position tracking %+v", moves[4])
	}
}

func TestParse_Comments(t *testing.T) {
	code := "(setup) G0 X1 Y2 (inline)\nG1 X3 ; trailing\n( only a comment )\n"
	moves := Parse(code)
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	if moves[1].ToX != 3 || moves[1].ToY != 2 {
		t.Errorf("unexpected second move %+v", moves[1])
	}
}

func TestParse_IgnoresOtherCommands(t *testing.T) {
	moves := Parse("G21\nM3 S12000\nG2 X1 Y1 I1 J0\nG00 X5\n")
	if len(moves) != 1 || moves[0].ToX != 5 {
		t.Errorf("expected a single G00 move, got %+v", moves)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.HasCutBounds || s.CutLength != 0 || s.MinX != 0 {
		t.Errorf("expected zero stats, got %+v", s)
	}
}

func TestSummarize_RapidLength(t *testing.T) {
	s := Summarize(Parse("G0 X3 Y4\nG0 X3 Y0\n"))
	if s.RapidLength != 9 {
		t.Errorf("expected rapid length 9, got %f", s.RapidLength)
	}
	if s.HasCutBounds {
		t.Error("rapids should not contribute cut bounds")
	}
}
