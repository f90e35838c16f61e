package svgpath

import "math"

// Segment approximates a piece of a curve with either a straight line
// or a circular arc.
type Segment struct {
	IsArc bool
	Line  LineSegment
	Arc   SvgArc // circular: Radii[0] == Radii[1]
}

const (
	// deviation is checked at t = i/flattenSamples
	flattenSamples = 20
	// bisection stops after maxFlattenDepth levels and emits the chord
	maxFlattenDepth = 16
)

// curve is a segment that can be sampled, bisected and probed for its
// endpoint tangents.
type curve interface {
	Endpoints() (Point, Point)
	Sample(t float64) Point
	StartTangent() Point
	EndTangent() Point
	Bisect() (curve, curve)
}

// FlattenCubic converts a cubic Bézier into circular arcs and line
// segments whose maximum deviation from the curve stays below
// tolerance. Nothing is emitted for a curve whose endpoints coincide.
func FlattenCubic(c CubicBezier, tolerance float64, emit func(Segment)) {
	if c.To.Sub(c.From).SquareLength() < epsilon {
		return
	}
	if c.IsLinear(tolerance) {
		emit(Segment{Line: LineSegment{c.From, c.To}})
		return
	}
	// arcs are fitted on monotonic pieces only, so the fit never has
	// to chase an inflection
	for _, r := range c.MonotonicRanges() {
		flattenCurve(cubicCurve{c.SplitRange(r[0], r[1])}, tolerance, 0, emit)
	}
}

// FlattenArc converts an elliptical arc into circular arcs and line
// segments within tolerance. An arc that is already circular is
// passed through untouched.
func FlattenArc(s SvgArc, tolerance float64, emit func(Segment)) {
	if s.IsStraightLine() {
		if s.From != s.To {
			emit(Segment{Line: LineSegment{s.From, s.To}})
		}
		return
	}
	if math.Abs(s.Radii[0]-s.Radii[1]) < epsilon {
		emit(Segment{IsArc: true, Arc: s})
		return
	}
	flattenCurve(ellipticCurve{s.ToArc()}, tolerance, 0, emit)
}

func flattenCurve(c curve, tolerance float64, depth int, emit func(Segment)) {
	from, to := c.Endpoints()
	if to.Sub(from).SquareLength() < epsilon {
		return
	}
	if arc, ok := fitCircularArc(c, tolerance); ok {
		emit(Segment{IsArc: true, Arc: arc})
		return
	}
	if depth >= maxFlattenDepth {
		emit(Segment{Line: LineSegment{from, to}})
		return
	}
	a, b := c.Bisect()
	flattenCurve(a, tolerance, depth+1, emit)
	flattenCurve(b, tolerance, depth+1, emit)
}

// fitCircularArc tries to describe the whole curve with a single
// circular arc. The candidate circle passes through both endpoints
// and the incenter of the triangle they form with the intersection of
// the endpoint tangents. The fit is accepted when the sampled curve
// stays within tolerance of that circle.
func fitCircularArc(c curve, tolerance float64) (SvgArc, bool) {
	from, to := c.Endpoints()
	inter, ok := Line{from, c.StartTangent()}.Intersection(Line{to, c.EndTangent()})
	if !ok {
		return SvgArc{}, false
	}

	// incenter: vertices weighted by the length of the opposite side
	wa := inter.Sub(to).Length()
	wb := from.Sub(to).Length()
	wc := from.Sub(inter).Length()
	sum := wa + wb + wc
	if sum < epsilon {
		return SvgArc{}, false
	}
	incenter := from.Scale(wa).Add(inter.Scale(wb)).Add(to.Scale(wc)).Scale(1 / sum)

	// the center sits on the perpendicular bisectors of both chords
	// to the incenter
	d1 := incenter.Sub(from)
	d2 := incenter.Sub(to)
	center, ok := Line{from.Lerp(incenter, 0.5), Point{-d1[1], d1[0]}}.
		Intersection(Line{to.Lerp(incenter, 0.5), Point{-d2[1], d2[0]}})
	if !ok {
		return SvgArc{}, false
	}
	radius := from.Sub(center).Length()
	if radius < epsilon {
		return SvgArc{}, false
	}

	for i := 1; i < flattenSamples; i++ {
		p := c.Sample(float64(i) / flattenSamples)
		if math.Abs(p.Sub(center).Length()-radius) >= tolerance {
			return SvgArc{}, false
		}
	}

	vf := from.Sub(center)
	vt := to.Sub(center)
	angle := math.Atan2(vf.Cross(vt), vf.Dot(vt))
	return SvgArc{
		From:     from,
		To:       to,
		Radii:    Point{radius, radius},
		LargeArc: math.Abs(angle) >= math.Pi,
		Sweep:    angle > 0,
	}, true
}

type cubicCurve struct{ CubicBezier }

func (c cubicCurve) Endpoints() (Point, Point) { return c.From, c.To }

func (c cubicCurve) StartTangent() Point {
	return tangentOr(c.Derivative(0), c.To.Sub(c.From))
}

func (c cubicCurve) EndTangent() Point {
	return tangentOr(c.Derivative(1), c.To.Sub(c.From))
}

func (c cubicCurve) Bisect() (curve, curve) {
	a, b := c.Split(0.5)
	return cubicCurve{a}, cubicCurve{b}
}

type ellipticCurve struct{ Arc }

func (c ellipticCurve) Endpoints() (Point, Point) { return c.Sample(0), c.Sample(1) }

func (c ellipticCurve) StartTangent() Point { return c.Tangent(0) }

func (c ellipticCurve) EndTangent() Point { return c.Tangent(1) }

func (c ellipticCurve) Bisect() (curve, curve) {
	a, b := c.Split(0.5)
	return ellipticCurve{a}, ellipticCurve{b}
}

// tangentOr falls back to the chord when the derivative vanishes at
// an endpoint with coincident control points.
func tangentOr(d, fallback Point) Point {
	if d.SquareLength() < epsilon {
		return fallback
	}
	return d
}

// FlattenCubicLines approximates the curve with line segments only,
// for machines without circular interpolation.
func FlattenCubicLines(c CubicBezier, tolerance float64, emit func(LineSegment)) {
	flattenCubicLines(c, tolerance, 0, emit)
}

func flattenCubicLines(c CubicBezier, tolerance float64, depth int, emit func(LineSegment)) {
	if c.IsLinear(tolerance) || depth >= maxFlattenDepth {
		if c.To.Sub(c.From).SquareLength() >= epsilon {
			emit(LineSegment{c.From, c.To})
		}
		return
	}
	a, b := c.Split(0.5)
	flattenCubicLines(a, tolerance, depth+1, emit)
	flattenCubicLines(b, tolerance, depth+1, emit)
}

// FlattenArcLines approximates an elliptical arc with line segments
// only.
func FlattenArcLines(s SvgArc, tolerance float64, emit func(LineSegment)) {
	if s.IsStraightLine() {
		if s.From != s.To {
			emit(LineSegment{s.From, s.To})
		}
		return
	}
	flattenArcLines(s.ToArc(), tolerance, 0, emit)
}

func flattenArcLines(a Arc, tolerance float64, depth int, emit func(LineSegment)) {
	from, to := a.Sample(0), a.Sample(1)
	mid := a.Sample(0.5)
	// sagitta of the chord against the curve midpoint
	chordMid := from.Lerp(to, 0.5)
	if mid.Sub(chordMid).Length() <= tolerance || depth >= maxFlattenDepth {
		if to.Sub(from).SquareLength() >= epsilon {
			emit(LineSegment{from, to})
		}
		return
	}
	l, r := a.Split(0.5)
	flattenArcLines(l, tolerance, depth+1, emit)
	flattenArcLines(r, tolerance, depth+1, emit)
}
