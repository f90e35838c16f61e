package svgpath

import "math"

// DetectArcs greedily replaces runs of polyline points with circular
// arcs. A run must span at least minPoints points and keep every
// point within tolerance of the fitted circle; runs are grown as far
// as the fit holds. Points that belong to no run are emitted as the
// original line segments.
func DetectArcs(points []Point, minPoints int, tolerance float64, emit func(Segment)) {
	if minPoints < 3 {
		minPoints = 3
	}
	i := 0
	for i < len(points)-1 {
		width := 0
		var arc SvgArc
		for w := minPoints; i+w <= len(points); w++ {
			a, ok := fitWindow(points[i:i+w], tolerance)
			if !ok {
				break
			}
			width, arc = w, a
		}
		if width > 0 {
			emit(Segment{IsArc: true, Arc: arc})
			i += width - 1
		} else {
			emit(Segment{Line: LineSegment{points[i], points[i+1]}})
			i++
		}
	}
}

// fitWindow fits a circle through the first, middle and last point of
// the window and accepts it when every point stays within tolerance.
func fitWindow(window []Point, tolerance float64) (SvgArc, bool) {
	first := window[0]
	mid := window[len(window)/2]
	last := window[len(window)-1]

	center, ok := circumcenter(first, mid, last)
	if !ok {
		return SvgArc{}, false
	}
	radius := first.Sub(center).Length()
	// tiny circles are noise, not geometry
	if radius < 10*tolerance {
		return SvgArc{}, false
	}
	for _, p := range window {
		if math.Abs(p.Sub(center).Length()-radius) > tolerance {
			return SvgArc{}, false
		}
	}
	return arcFromCircle(first, last, center, radius)
}

// circumcenter returns the center of the circle through three
// points, rejecting (near-)collinear triples.
func circumcenter(a, b, c Point) (Point, bool) {
	if math.Abs(b.Sub(a).Cross(c.Sub(a))) < epsilon {
		return Point{}, false
	}
	d := 2 * (a[0]*(b[1]-c[1]) + b[0]*(c[1]-a[1]) + c[0]*(a[1]-b[1]))
	if math.Abs(d) < epsilon {
		return Point{}, false
	}
	a2 := a.SquareLength()
	b2 := b.SquareLength()
	c2 := c.SquareLength()
	return Point{
		(a2*(b[1]-c[1]) + b2*(c[1]-a[1]) + c2*(a[1]-b[1])) / d,
		(a2*(c[0]-b[0]) + b2*(a[0]-c[0]) + c2*(b[0]-a[0])) / d,
	}, true
}

// arcFromCircle builds the circular arc from from to to on the given
// circle, rejecting degenerate and numerically fragile cases.
func arcFromCircle(from, to, center Point, radius float64) (SvgArc, bool) {
	chord := to.Sub(from).Length()
	if chord < epsilon || radius < epsilon {
		return SvgArc{}, false
	}
	// both endpoints must actually sit on the circle
	if math.Abs(to.Sub(center).Length()-radius) > 0.1*radius {
		return SvgArc{}, false
	}
	vf := from.Sub(center)
	vt := to.Sub(center)
	angle := math.Atan2(vf.Cross(vt), vf.Dot(vt))
	if math.Abs(angle) < 0.01 {
		return SvgArc{}, false
	}
	// near-semicircles make the endpoint parameterization unstable
	if chord > 1.9*radius {
		return SvgArc{}, false
	}
	arc := SvgArc{
		From:     from,
		To:       to,
		Radii:    Point{radius, radius},
		LargeArc: math.Abs(angle) >= math.Pi,
		Sweep:    angle > 0,
	}
	if arc.IsStraightLine() {
		return SvgArc{}, false
	}
	return arc, true
}
