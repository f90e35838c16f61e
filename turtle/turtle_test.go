package turtle

import (
	"math"
	"strings"
	"testing"

	"github.com/benoitkugler/svg2gcode/gcode"
	"github.com/benoitkugler/svg2gcode/machine"
	"github.com/benoitkugler/svg2gcode/svgpath"
)

func testMachine(t *testing.T, ci bool) *machine.Machine {
	t.Helper()
	m, err := machine.New(machine.SupportedFunctionality{CircularInterpolation: ci},
		machine.Sequences{
			ToolOn:        "M3",
			ToolOff:       "M5",
			End:           "M2",
			BetweenLayers: "G4 P1",
		})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newTurtle(t *testing.T, ci bool) *GCodeTurtle {
	return &GCodeTurtle{
		Machine:   testMachine(t, ci),
		Tolerance: 0.002,
		Feedrate:  300,
	}
}

func render(t *testing.T, program []gcode.Token) string {
	t.Helper()
	var sb strings.Builder
	if err := gcode.Format(&sb, program, gcode.FormatOptions{}); err != nil {
		t.Fatal(err)
	}
	return sb.String()
}

func instructions(program []gcode.Token) []gcode.Token {
	var out []gcode.Token
	for _, tok := range program {
		if tok.IsInstruction() {
			out = append(out, tok)
		}
	}
	return out
}

func TestToolStateMachine(t *testing.T) {
	tt := newTurtle(t, true)
	tt.Begin()
	tt.MoveTo(svgpath.Point{0, 0})
	tt.LineTo(svgpath.Point{10, 0})
	tt.End()

	want := "G21\nG90\nG0 X0 Y0\nM3\nG1 X10 Y0 F300\nM5\nM2\n"
	if got := render(t, tt.Program); got != want {
		t.Errorf("program:\n%q\nwant:\n%q", got, want)
	}
}

func TestToolSequenceRestoresAbsoluteMode(t *testing.T) {
	m, err := machine.New(machine.SupportedFunctionality{CircularInterpolation: true},
		machine.Sequences{
			ToolOn:  "G91\nG0 Z-1\nM3",
			ToolOff: "G91\nG0 Z1\nM5",
			End:     "M2",
		})
	if err != nil {
		t.Fatal(err)
	}
	tt := &GCodeTurtle{Machine: m, Tolerance: 0.002, Feedrate: 300}
	tt.Begin()
	tt.MoveTo(svgpath.Point{0, 0})
	tt.LineTo(svgpath.Point{10, 0})
	tt.End()

	// G90 follows each sequence so the cutting moves stay absolute
	want := "G21\nG90\nG0 X0 Y0\nG91\nG0 Z-1\nM3\nG90\nG1 X10 Y0 F300\nG91\nG0 Z1\nM5\nG90\nM2\n"
	if got := render(t, tt.Program); got != want {
		t.Errorf("program:\n%q\nwant:\n%q", got, want)
	}
}

func TestToolTurnsOffOnTravel(t *testing.T) {
	tt := newTurtle(t, true)
	tt.Begin()
	tt.MoveTo(svgpath.Point{0, 0})
	tt.LineTo(svgpath.Point{10, 0})
	tt.MoveTo(svgpath.Point{20, 20})
	tt.LineTo(svgpath.Point{30, 20})
	tt.End()

	got := render(t, tt.Program)
	want := "G21\nG90\nG0 X0 Y0\nM3\nG1 X10 Y0 F300\nM5\nG0 X20 Y20\nM3\nG1 X30 Y20 F300\nM5\nM2\n"
	if got != want {
		t.Errorf("program:\n%q\nwant:\n%q", got, want)
	}
}

func TestBetweenLayersIsDeferred(t *testing.T) {
	tt := newTurtle(t, true)
	tt.Begin()
	tt.MoveTo(svgpath.Point{0, 0})
	tt.LineTo(svgpath.Point{1, 0})
	tt.BetweenLayers()
	tt.MoveTo(svgpath.Point{0, 5})
	tt.LineTo(svgpath.Point{1, 5})
	// a trailing layer without geometry must not emit the sequence
	tt.BetweenLayers()
	tt.End()

	got := render(t, tt.Program)
	want := "G21\nG90\nG0 X0 Y0\nM3\nG1 X1 Y0 F300\nM5\nG0 X0 Y5\n\nG4 P1\nM3\nG1 X1 Y5 F300\nM5\nM2\n"
	if got != want {
		t.Errorf("program:\n%q\nwant:\n%q", got, want)
	}
}

func TestCircularInterpolation(t *testing.T) {
	tt := newTurtle(t, true)
	tt.Begin()
	tt.MoveTo(svgpath.Point{10, 0})
	tt.EllipticalTo(svgpath.SvgArc{
		To:    svgpath.Point{0, 10},
		Radii: svgpath.Point{10, 10},
		Sweep: true,
	})
	tt.End()

	got := render(t, tt.Program)
	if !strings.Contains(got, "G3 X0 Y10 I-10 J0 F300\n") {
		t.Errorf("expected a single counter clockwise arc, got:\n%s", got)
	}
	if strings.Contains(got, "G1 ") {
		t.Errorf("arc degraded to lines:\n%s", got)
	}
}

func TestCircularInterpolationMinRadius(t *testing.T) {
	tt := newTurtle(t, true)
	tt.MinArcRadius = 20
	tt.Begin()
	tt.MoveTo(svgpath.Point{10, 0})
	tt.EllipticalTo(svgpath.SvgArc{
		To:    svgpath.Point{0, 10},
		Radii: svgpath.Point{10, 10},
		Sweep: true,
	})
	tt.End()

	got := render(t, tt.Program)
	if strings.Contains(got, "G2 ") || strings.Contains(got, "G3 ") {
		t.Errorf("small arc must degrade to a line:\n%s", got)
	}
	if !strings.Contains(got, "G1 X0 Y10 F300\n") {
		t.Errorf("missing degraded line:\n%s", got)
	}
}

func TestLargeArcIsBisected(t *testing.T) {
	tt := newTurtle(t, true)
	tt.Begin()
	tt.MoveTo(svgpath.Point{10, 0})
	tt.EllipticalTo(svgpath.SvgArc{
		To:       svgpath.Point{0, 10},
		Radii:    svgpath.Point{10, 10},
		LargeArc: true,
		Sweep:    true,
	})
	tt.End()

	var arcs int
	for _, tok := range instructions(tt.Program) {
		if tok.Fields[0].Letter == 'G' && (tok.Fields[0].Value == 2 || tok.Fields[0].Value == 3) {
			arcs++
			// the split halves are below the ambiguity threshold
			if tok.Fields[0].Value != 3 {
				t.Errorf("large CCW arc must stay CCW: %+v", tok)
			}
		}
	}
	if arcs != 2 {
		t.Errorf("expected the large arc to split in two, got %d arc moves", arcs)
	}
}

func TestCubicWithoutCircularInterpolation(t *testing.T) {
	tt := newTurtle(t, false)
	tt.Begin()
	tt.MoveTo(svgpath.Point{1, 0})
	tt.CubicTo(svgpath.Point{1, 0.55}, svgpath.Point{0.55, 1}, svgpath.Point{0, 1})
	tt.End()

	got := render(t, tt.Program)
	if strings.Contains(got, "G2 ") || strings.Contains(got, "G3 ") {
		t.Errorf("machine without circular interpolation emitted an arc:\n%s", got)
	}
	var lines int
	for _, tok := range instructions(tt.Program) {
		if tok.Fields[0].Letter == 'G' && tok.Fields[0].Value == 1 {
			lines++
		}
	}
	if lines < 2 {
		t.Errorf("expected a line approximation, got %d G1 moves", lines)
	}
}

func TestLineBufferArcDetection(t *testing.T) {
	tt := newTurtle(t, true)
	tt.DetectArcs = true
	tt.MinArcPoints = 5

	const radius = 10.0
	points := make([]svgpath.Point, 20)
	for i := range points {
		a := float64(i) / float64(len(points)-1) * math.Pi / 2
		points[i] = svgpath.Point{radius * math.Cos(a), radius * math.Sin(a)}
	}

	tt.Begin()
	tt.MoveTo(points[0])
	for _, p := range points[1:] {
		tt.LineTo(p)
	}
	tt.End()

	var arcs, lines int
	for _, tok := range instructions(tt.Program) {
		if tok.Fields[0].Letter != 'G' {
			continue
		}
		switch tok.Fields[0].Value {
		case 1:
			lines++
		case 2, 3:
			arcs++
		}
	}
	if arcs != 1 || lines != 0 {
		t.Errorf("expected one detected arc and no residual lines, got %d arcs, %d lines", arcs, lines)
	}
}

func TestBoundsTurtle(t *testing.T) {
	var b BoundsTurtle
	b.Begin()
	b.MoveTo(svgpath.Point{100, 100}) // travel must not count
	b.MoveTo(svgpath.Point{1, 0})
	b.EllipticalTo(svgpath.SvgArc{
		To:    svgpath.Point{-1, 0},
		Radii: svgpath.Point{1, 1},
		Sweep: true,
	})
	b.End()

	bounds := b.Bounds()
	if bounds.IsEmpty() {
		t.Fatal("bounds are empty")
	}
	if math.Abs(bounds.Min[0]+1) > 1e-9 || math.Abs(bounds.Min[1]) > 1e-9 {
		t.Errorf("min: %v", bounds.Min)
	}
	if math.Abs(bounds.Max[0]-1) > 1e-9 || math.Abs(bounds.Max[1]-1) > 1e-9 {
		t.Errorf("max: %v", bounds.Max)
	}
}

func TestBoundsTurtleCubic(t *testing.T) {
	var b BoundsTurtle
	b.MoveTo(svgpath.Point{0, 0})
	// the x coordinate overshoots the endpoints
	b.CubicTo(svgpath.Point{2, 0}, svgpath.Point{2, 1}, svgpath.Point{0, 1})
	bounds := b.Bounds()
	if bounds.Max[0] <= 1 {
		t.Errorf("x extremum missed: %v", bounds.Max)
	}
	if bounds.Min != (svgpath.Point{0, 0}) {
		t.Errorf("min: %v", bounds.Min)
	}
}

func TestBoundsTurtleQuad(t *testing.T) {
	var b BoundsTurtle
	b.MoveTo(svgpath.Point{0, 0})
	// apex of the parabola is at y = 1
	b.QuadTo(svgpath.Point{1, 2}, svgpath.Point{2, 0})
	bounds := b.Bounds()
	if math.Abs(bounds.Max[1]-1) > 1e-9 {
		t.Errorf("quad apex missed: %v", bounds.Max)
	}
	if math.Abs(bounds.Max[0]-2) > 1e-9 || bounds.Min != (svgpath.Point{0, 0}) {
		t.Errorf("bounds: %v %v", bounds.Min, bounds.Max)
	}
}

func TestDpiTurtle(t *testing.T) {
	var b BoundsTurtle
	d := DpiTurtle{Inner: &b, Dpi: 96}
	d.MoveTo(svgpath.Point{0, 0})
	d.LineTo(svgpath.Point{96, 96})
	bounds := b.Bounds()
	if math.Abs(bounds.Max[0]-25.4) > 1e-9 || math.Abs(bounds.Max[1]-25.4) > 1e-9 {
		t.Errorf("96 user units must map to 25.4 mm, got %v", bounds.Max)
	}
}
