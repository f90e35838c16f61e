package turtle

import (
	"math"

	"github.com/benoitkugler/svg2gcode/gcode"
	"github.com/benoitkugler/svg2gcode/machine"
	"github.com/benoitkugler/svg2gcode/svgpath"
)

// line segments are buffered for arc detection up to this many points
const maxBufferedPoints = 1000

// a sweep below this angle is not worth a G2/G3 word
const minSweepAngle = 1e-6

// relative slack under which an arc counts as a semicircle
const semicircleSlack = 1e-5

// GCodeTurtle renders drawing commands into G-code tokens. Input
// coordinates are in millimeters.
type GCodeTurtle struct {
	Machine   *machine.Machine
	Tolerance float64
	Feedrate  float64
	// MinArcRadius degrades smaller G2/G3 moves to straight lines.
	MinArcRadius float64

	// DetectArcs buffers consecutive line segments and replaces
	// circular runs with G2/G3 moves.
	DetectArcs   bool
	MinArcPoints int
	ArcTolerance float64

	Program []gcode.Token

	current       svgpath.Point
	toolIsOn      bool
	pendingLayers bool
	buffer        []svgpath.Point
}

func (t *GCodeTurtle) push(tokens ...gcode.Token) {
	t.Program = append(t.Program, tokens...)
}

// Begin emits the program preamble: millimeter units, absolute
// distance mode and the machine begin sequence.
func (t *GCodeTurtle) Begin() {
	t.push(gcode.Instr(gcode.F('G', 21)))
	t.push(t.Machine.Absolute()...)
	t.push(t.Machine.BeginSequence()...)
	t.push(t.Machine.Absolute()...)
}

// End flushes pending lines, turns the tool off and emits the
// machine end sequence.
func (t *GCodeTurtle) End() {
	t.flushBuffer()
	t.toolOff()
	t.push(t.Machine.Absolute()...)
	t.push(t.Machine.EndSequence()...)
}

func (t *GCodeTurtle) Comment(text string) {
	t.push(gcode.Comment(text))
}

// BetweenLayers records that the next drawn geometry starts a new
// layer. The separator sequence is only emitted when the tool turns
// on again, so trailing layers without geometry stay silent.
func (t *GCodeTurtle) BetweenLayers() {
	t.pendingLayers = true
}

func (t *GCodeTurtle) toolOn() {
	if t.toolIsOn {
		return
	}
	if t.pendingLayers {
		t.push(gcode.Comment(""))
		t.push(t.Machine.BetweenLayers()...)
		t.pendingLayers = false
	}
	t.push(t.Machine.ToolOn()...)
	// a user sequence may leave the machine in incremental mode
	t.push(t.Machine.Absolute()...)
	t.toolIsOn = true
}

func (t *GCodeTurtle) toolOff() {
	if !t.toolIsOn {
		return
	}
	t.push(t.Machine.ToolOff()...)
	t.push(t.Machine.Absolute()...)
	t.toolIsOn = false
}

func (t *GCodeTurtle) MoveTo(to svgpath.Point) {
	t.flushBuffer()
	t.toolOff()
	t.push(gcode.Instr(gcode.F('G', 0), gcode.F('X', to[0]), gcode.F('Y', to[1])))
	t.current = to
}

func (t *GCodeTurtle) LineTo(to svgpath.Point) {
	t.toolOn()
	if t.DetectArcs && t.Machine.Functionality.CircularInterpolation {
		if len(t.buffer) == 0 {
			t.buffer = append(t.buffer, t.current)
		}
		t.buffer = append(t.buffer, to)
		if len(t.buffer) >= maxBufferedPoints {
			t.flushBuffer()
			t.buffer = append(t.buffer, to)
		}
	} else {
		t.feedLine(to)
	}
	t.current = to
}

func (t *GCodeTurtle) CubicTo(ctrl1, ctrl2, to svgpath.Point) {
	t.toolOn()
	t.flushBuffer()
	c := svgpath.CubicBezier{From: t.current, Ctrl1: ctrl1, Ctrl2: ctrl2, To: to}
	if t.Machine.Functionality.CircularInterpolation {
		svgpath.FlattenCubic(c, t.Tolerance, t.segment)
	} else {
		svgpath.FlattenCubicLines(c, t.Tolerance, t.lineSegment)
	}
	t.current = to
}

// QuadTo lifts the quadratic curve to its exact cubic form.
func (t *GCodeTurtle) QuadTo(ctrl, to svgpath.Point) {
	c := svgpath.QuadraticBezier{From: t.current, Ctrl: ctrl, To: to}.ToCubic()
	t.CubicTo(c.Ctrl1, c.Ctrl2, c.To)
}

func (t *GCodeTurtle) EllipticalTo(arc svgpath.SvgArc) {
	t.toolOn()
	t.flushBuffer()
	arc.From = t.current
	if t.Machine.Functionality.CircularInterpolation {
		svgpath.FlattenArc(arc, t.Tolerance, t.segment)
	} else {
		svgpath.FlattenArcLines(arc, t.Tolerance, t.lineSegment)
	}
	t.current = arc.To
}

func (t *GCodeTurtle) segment(s svgpath.Segment) {
	if s.IsArc {
		t.circularInterpolation(s.Arc)
	} else {
		t.feedLine(s.Line.To)
	}
}

func (t *GCodeTurtle) lineSegment(l svgpath.LineSegment) {
	t.feedLine(l.To)
}

func (t *GCodeTurtle) feedLine(to svgpath.Point) {
	t.push(gcode.Instr(gcode.F('G', 1),
		gcode.F('X', to[0]), gcode.F('Y', to[1]), gcode.F('F', t.Feedrate)))
}

// circularInterpolation emits a G2 or G3 move for a circular arc,
// degrading degenerate arcs to straight lines and bisecting the ones
// the I J center form cannot express unambiguously.
func (t *GCodeTurtle) circularInterpolation(arc svgpath.SvgArc) {
	center := arc.ToArc()
	radius := arc.Radii[0]
	chord := arc.To.Sub(arc.From).Length()
	sweep := math.Abs(center.SweepAngle)

	if radius < t.MinArcRadius || chord < t.MinArcRadius || sweep < minSweepAngle {
		t.feedLine(arc.To)
		return
	}
	// a large or near-semicircular arc is ambiguous in I J form
	nearSemi := math.Abs(chord-2*radius)/(2*radius) < semicircleSlack ||
		math.Abs(sweep-math.Pi) < semicircleSlack
	if arc.LargeArc || nearSemi {
		first, second := center.Split(0.5)
		t.circularInterpolation(first.ToSvgArc())
		t.circularInterpolation(second.ToSvgArc())
		return
	}

	word := 2.0 // clockwise
	if arc.Sweep {
		word = 3
	}
	t.push(gcode.Instr(gcode.F('G', word),
		gcode.F('X', arc.To[0]), gcode.F('Y', arc.To[1]),
		gcode.F('I', center.Center[0]-arc.From[0]),
		gcode.F('J', center.Center[1]-arc.From[1]),
		gcode.F('F', t.Feedrate)))
}

// flushBuffer runs arc detection over the buffered polyline and
// emits the result.
func (t *GCodeTurtle) flushBuffer() {
	if len(t.buffer) >= 2 {
		tolerance := t.ArcTolerance
		if tolerance == 0 {
			tolerance = t.Tolerance
		}
		svgpath.DetectArcs(t.buffer, t.MinArcPoints, tolerance, t.segment)
	}
	t.buffer = t.buffer[:0]
}
