package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed (cutting move in XY plane)
	MovePlunge                  // G1 with Z decreasing: plunging into material
	MoveRetract                 // G0/G1 with Z increasing: retracting from material
)

// Move is a single parsed G0/G1 movement in absolute coordinates.
type Move struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
}

// Length returns the XY distance travelled.
func (m Move) Length() float64 {
	return math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
}

var coordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// Parse reads a program into moves, tracking absolute position and
// feed state. Comments in either profile syntax are ignored, as are
// commands other than G0/G1.
func Parse(code string) []Move {
	var moves []Move
	var x, y, z, feed float64

	for _, line := range strings.Split(code, "\n") {
		line = strings.ToUpper(stripComment(line))
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var rapid bool
		switch fields[0] {
		case "G0", "G00":
			rapid = true
		case "G1", "G01":
		default:
			continue
		}

		nx, ny, nz, nf := x, y, z, feed
		for _, m := range coordRe.FindAllStringSubmatch(line, -1) {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				nx = v
			case "Y":
				ny = v
			case "Z":
				nz = v
			case "F":
				nf = v
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(rapid, z, nz, x != nx || y != ny),
			FromX:    x,
			FromY:    y,
			FromZ:    z,
			ToX:      nx,
			ToY:      ny,
			ToZ:      nz,
			FeedRate: nf,
		})
		x, y, z, feed = nx, ny, nz, nf
	}
	return moves
}

func stripComment(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	for {
		start := strings.Index(line, "(")
		if start < 0 {
			break
		}
		end := strings.Index(line[start:], ")")
		if end < 0 {
			line = line[:start]
			break
		}
		line = line[:start] + line[start+end+1:]
	}
	return strings.TrimSpace(line)
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(rapid bool, fromZ, toZ float64, hasXY bool) MoveType {
	dz := toZ - fromZ
	switch {
	case rapid:
		if dz > 0 {
			return MoveRetract
		}
		return MoveRapid
	case dz < -0.001 && !hasXY:
		return MovePlunge
	case dz > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// Stats summarizes a parsed toolpath.
type Stats struct {
	Plunges      int
	CutLength    float64 // XY length of feed moves below Z0
	RapidLength  float64
	MaxDepth     float64 // Deepest Z reached, as a positive number
	MinX, MinY   float64 // Bounds of cutting moves
	MaxX, MaxY   float64
	HasCutBounds bool
}

// Summarize computes toolpath statistics.
func Summarize(moves []Move) Stats {
	s := Stats{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, m := range moves {
		switch m.Type {
		case MovePlunge:
			s.Plunges++
		case MoveRapid:
			s.RapidLength += m.Length()
		case MoveFeed:
			if m.ToZ < 0 || m.FromZ < 0 {
				s.CutLength += m.Length()
				s.MinX = math.Min(s.MinX, math.Min(m.FromX, m.ToX))
				s.MinY = math.Min(s.MinY, math.Min(m.FromY, m.ToY))
				s.MaxX = math.Max(s.MaxX, math.Max(m.FromX, m.ToX))
				s.MaxY = math.Max(s.MaxY, math.Max(m.FromY, m.ToY))
				s.HasCutBounds = true
			}
		}
		if -m.ToZ > s.MaxDepth {
			s.MaxDepth = -m.ToZ
		}
	}
	if !s.HasCutBounds {
		s.MinX, s.MinY, s.MaxX, s.MaxY = 0, 0, 0, 0
	}
	return s
}
