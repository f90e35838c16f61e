package svgpath

import "math"

// QuadraticBezier is a quadratic Bézier segment.
type QuadraticBezier struct {
	From, Ctrl, To Point
}

// ToCubic returns the exact cubic representation of the curve.
func (q QuadraticBezier) ToCubic() CubicBezier {
	return CubicBezier{
		From:  q.From,
		Ctrl1: q.From.Lerp(q.Ctrl, 2.0/3.0),
		Ctrl2: q.To.Lerp(q.Ctrl, 2.0/3.0),
		To:    q.To,
	}
}

// CubicBezier is a cubic Bézier segment.
type CubicBezier struct {
	From, Ctrl1, Ctrl2, To Point
}

// Sample evaluates the curve at parameter t in [0, 1].
func (c CubicBezier) Sample(t float64) Point {
	u := 1 - t
	return c.From.Scale(u * u * u).
		Add(c.Ctrl1.Scale(3 * u * u * t)).
		Add(c.Ctrl2.Scale(3 * u * t * t)).
		Add(c.To.Scale(t * t * t))
}

// Derivative evaluates the first derivative at t.
func (c CubicBezier) Derivative(t float64) Point {
	u := 1 - t
	return c.Ctrl1.Sub(c.From).Scale(3 * u * u).
		Add(c.Ctrl2.Sub(c.Ctrl1).Scale(6 * u * t)).
		Add(c.To.Sub(c.Ctrl2).Scale(3 * t * t))
}

// Split cuts the curve at t and returns the two halves.
func (c CubicBezier) Split(t float64) (CubicBezier, CubicBezier) {
	ab := c.From.Lerp(c.Ctrl1, t)
	bc := c.Ctrl1.Lerp(c.Ctrl2, t)
	cd := c.Ctrl2.Lerp(c.To, t)
	abc := ab.Lerp(bc, t)
	bcd := bc.Lerp(cd, t)
	mid := abc.Lerp(bcd, t)
	return CubicBezier{c.From, ab, abc, mid}, CubicBezier{mid, bcd, cd, c.To}
}

// SplitRange returns the sub-curve over [t0, t1].
func (c CubicBezier) SplitRange(t0, t1 float64) CubicBezier {
	from := c.Sample(t0)
	to := c.Sample(t1)
	dt := t1 - t0
	d1 := c.Derivative(t0).Scale(dt / 3)
	d2 := c.Derivative(t1).Scale(dt / 3)
	return CubicBezier{from, from.Add(d1), to.Sub(d2), to}
}

// IsLinear reports whether the control points lie within tolerance of
// the baseline, so that a single line segment is an adequate
// replacement for the whole curve.
func (c CubicBezier) IsLinear(tolerance float64) bool {
	base := c.To.Sub(c.From)
	l2 := base.SquareLength()
	if l2 < epsilon {
		// degenerate baseline, fall back to control point spread
		return c.Ctrl1.Sub(c.From).SquareLength() <= tolerance*tolerance &&
			c.Ctrl2.Sub(c.From).SquareLength() <= tolerance*tolerance
	}
	t2 := tolerance * tolerance * l2
	d1 := c.Ctrl1.Sub(c.From).Cross(base)
	d2 := c.Ctrl2.Sub(c.From).Cross(base)
	return d1*d1 <= t2 && d2*d2 <= t2
}

// quadraticRoots stores the real roots of a*t^2 + b*t + c in roots
// and returns how many were found.
func quadraticRoots(a, b, c float64, roots *[2]float64) int {
	if math.Abs(a) < epsilon {
		if math.Abs(b) < epsilon {
			return 0
		}
		roots[0] = -c / b
		return 1
	}
	delta := b*b - 4*a*c
	if delta < 0 {
		return 0
	}
	if delta == 0 {
		roots[0] = -b / (2 * a)
		return 1
	}
	sq := math.Sqrt(delta)
	roots[0] = (-b - sq) / (2 * a)
	roots[1] = (-b + sq) / (2 * a)
	return 2
}

// extremaOnAxis appends the parameters in (0, 1) where the derivative
// of the cubic along one axis vanishes.
func (c CubicBezier) extremaOnAxis(axis int, out []float64) []float64 {
	p0, p1, p2, p3 := c.From[axis], c.Ctrl1[axis], c.Ctrl2[axis], c.To[axis]
	// derivative coefficients of the cubic on this axis
	a := 3 * (p3 - 3*p2 + 3*p1 - p0)
	b := 6 * (p2 - 2*p1 + p0)
	cc := 3 * (p1 - p0)
	var roots [2]float64
	n := quadraticRoots(a, b, cc, &roots)
	for _, t := range roots[:n] {
		if t > epsilon && t < 1-epsilon {
			out = append(out, t)
		}
	}
	return out
}

// MonotonicRanges returns parameter ranges over which the curve is
// monotonic on both axes. Ranges are returned in order and cover
// [0, 1] exactly.
func (c CubicBezier) MonotonicRanges() [][2]float64 {
	ts := make([]float64, 0, 6)
	ts = c.extremaOnAxis(0, ts)
	ts = c.extremaOnAxis(1, ts)
	if len(ts) == 0 {
		return [][2]float64{{0, 1}}
	}
	sortFloats(ts)
	ranges := make([][2]float64, 0, len(ts)+1)
	prev := 0.0
	for _, t := range ts {
		if t-prev > epsilon {
			ranges = append(ranges, [2]float64{prev, t})
			prev = t
		}
	}
	if 1-prev > epsilon {
		ranges = append(ranges, [2]float64{prev, 1})
	}
	if len(ranges) == 0 {
		return [][2]float64{{0, 1}}
	}
	return ranges
}

func sortFloats(v []float64) {
	// insertion sort, the slices are tiny
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}
