// Package turtle receives fully transformed drawing commands and
// renders them: into G-code, into a bounding box for the measurement
// pass, or into another unit space.
package turtle

import "github.com/benoitkugler/svg2gcode/svgpath"

// Turtle consumes absolute drawing commands. Implementations track
// the current position themselves: curve commands start from the
// target of the previous command.
type Turtle interface {
	// Begin is called once before any drawing command.
	Begin()
	// End is called once after the last drawing command.
	End()
	// Comment annotates the output where that makes sense.
	Comment(text string)
	// BetweenLayers separates two input documents.
	BetweenLayers()

	MoveTo(to svgpath.Point)
	LineTo(to svgpath.Point)
	CubicTo(ctrl1, ctrl2, to svgpath.Point)
	QuadTo(ctrl, to svgpath.Point)
	// EllipticalTo draws an elliptical arc; arc.From is the current
	// position.
	EllipticalTo(arc svgpath.SvgArc)
}

// BoundsTurtle measures the extent of the drawn geometry, using the
// exact extrema of curves rather than their flattened form.
type BoundsTurtle struct {
	bounds  svgpath.BoundingBox
	current svgpath.Point
}

func (b *BoundsTurtle) Begin()         {}
func (b *BoundsTurtle) End()           {}
func (b *BoundsTurtle) Comment(string) {}
func (b *BoundsTurtle) BetweenLayers() {}

// Bounds returns the accumulated box. It is empty until a drawing
// command was received: bare moves do not count.
func (b *BoundsTurtle) Bounds() svgpath.BoundingBox { return b.bounds }

func (b *BoundsTurtle) MoveTo(to svgpath.Point) { b.current = to }

func (b *BoundsTurtle) LineTo(to svgpath.Point) {
	b.bounds.Extend(b.current)
	b.bounds.Extend(to)
	b.current = to
}

func (b *BoundsTurtle) CubicTo(ctrl1, ctrl2, to svgpath.Point) {
	c := svgpath.CubicBezier{From: b.current, Ctrl1: ctrl1, Ctrl2: ctrl2, To: to}
	// the monotonic range boundaries are exactly the axis extrema
	for _, r := range c.MonotonicRanges() {
		b.bounds.Extend(c.Sample(r[0]))
		b.bounds.Extend(c.Sample(r[1]))
	}
	b.current = to
}

func (b *BoundsTurtle) QuadTo(ctrl, to svgpath.Point) {
	c := svgpath.QuadraticBezier{From: b.current, Ctrl: ctrl, To: to}.ToCubic()
	b.CubicTo(c.Ctrl1, c.Ctrl2, c.To)
}

func (b *BoundsTurtle) EllipticalTo(arc svgpath.SvgArc) {
	arc.From = b.current
	if arc.IsStraightLine() {
		b.bounds.Extend(arc.From)
		b.bounds.Extend(arc.To)
	} else {
		arc.ToArc().ExtendBounds(&b.bounds)
	}
	b.current = arc.To
}

// DpiTurtle converts user units to millimeters before delegating,
// using the usual 96 user units per inch unless told otherwise.
type DpiTurtle struct {
	Inner Turtle
	Dpi   float64
}

func (d *DpiTurtle) factor() float64 { return 25.4 / d.Dpi }

func (d *DpiTurtle) scale(p svgpath.Point) svgpath.Point { return p.Scale(d.factor()) }

func (d *DpiTurtle) Begin()              { d.Inner.Begin() }
func (d *DpiTurtle) End()                { d.Inner.End() }
func (d *DpiTurtle) Comment(text string) { d.Inner.Comment(text) }
func (d *DpiTurtle) BetweenLayers()      { d.Inner.BetweenLayers() }

func (d *DpiTurtle) MoveTo(to svgpath.Point) { d.Inner.MoveTo(d.scale(to)) }

func (d *DpiTurtle) LineTo(to svgpath.Point) { d.Inner.LineTo(d.scale(to)) }

func (d *DpiTurtle) CubicTo(ctrl1, ctrl2, to svgpath.Point) {
	d.Inner.CubicTo(d.scale(ctrl1), d.scale(ctrl2), d.scale(to))
}

func (d *DpiTurtle) QuadTo(ctrl, to svgpath.Point) {
	d.Inner.QuadTo(d.scale(ctrl), d.scale(to))
}

func (d *DpiTurtle) EllipticalTo(arc svgpath.SvgArc) {
	f := d.factor()
	// a uniform scale keeps circular arcs circular
	d.Inner.EllipticalTo(arc.Transformed(svgpath.Identity.Scale(f, f)))
}
