// Package gcode emits and inspects GCode for cutting a fitted rectangle
// out of its slab.
package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/RectFit/internal/model"
)

// Generator produces GCode that cuts a rectangle blank out of a slab.
type Generator struct {
	Settings model.CutSettings
	profile  model.GCodeProfile
}

func New(settings model.CutSettings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.GetProfile(settings.GCodeProfile),
	}
}

// Profile returns the resolved controller profile.
func (g *Generator) Profile() model.GCodeProfile { return g.profile }

// Generate produces a complete program for one rectangle. The tool
// center follows the rectangle offset outward by the tool radius so the
// blank keeps its fitted size.
func (g *Generator) Generate(label string, r model.Rectangle) string {
	var b strings.Builder

	g.writeHeader(&b, label, r)
	g.writeRectangle(&b, r)
	g.writeFooter(&b)
	return b.String()
}

// ToolPath returns the tool center corners for r in cutting order.
func (g *Generator) ToolPath(r model.Rectangle) [4]model.Point2D {
	d := g.Settings.ToolDiameter
	return model.NewRectangle(r.Center, r.AngleDeg, r.Width+d, r.Height+d).Corners
}

// Passes returns the number of depth passes needed to cut through.
func (g *Generator) Passes() int {
	if g.Settings.PassDepth <= 0 || g.Settings.CutDepth <= g.Settings.PassDepth {
		return 1
	}
	return int(math.Ceil(g.Settings.CutDepth / g.Settings.PassDepth))
}

func (g *Generator) writeHeader(b *strings.Builder, label string, r model.Rectangle) {
	p := g.profile

	b.WriteString(g.comment(fmt.Sprintf("RectFit GCode - %s", label)))
	b.WriteString(g.comment(fmt.Sprintf("Blank: %.1f x %.1f mm at %.2f deg, center (%.1f, %.1f)",
		r.Width, r.Height, r.AngleDeg, r.Center.X, r.Center.Y)))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.1fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		g.Settings.ToolDiameter, g.Settings.FeedRate, g.Settings.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.1fmm in %d pass(es)", g.Settings.CutDepth, g.Passes())))
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
	}

	// Initial safe Z retract
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}
}

func (g *Generator) writeRectangle(b *strings.Builder, r model.Rectangle) {
	path := g.ToolPath(r)
	passes := g.Passes()
	p := g.profile

	for pass := 1; pass <= passes; pass++ {
		depth := g.Settings.CutDepth
		if pass < passes {
			depth = float64(pass) * g.Settings.PassDepth
		}

		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, passes, depth)))

		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(path[0].X), g.format(path[0].Y)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", p.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))

		for i := 1; i <= len(path); i++ {
			c := path[i%len(path)]
			line := fmt.Sprintf("%s X%s Y%s", p.FeedMove, g.format(c.X), g.format(c.Y))
			if i == 1 {
				line += " F" + g.format(g.Settings.FeedRate)
			}
			b.WriteString(line + "\n")
		}

		b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	}
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	s := fmt.Sprintf("%.*f", g.profile.DecimalPlaces, v)
	// Avoid "-0.000"
	if strings.Trim(s, "-0.") == "" {
		s = strings.TrimPrefix(s, "-")
	}
	return s
}
