package svgpath

import "math"

// SvgArc is an elliptical arc in SVG endpoint parameterization.
type SvgArc struct {
	From, To  Point
	Radii     Point
	XRotation float64 // radians
	LargeArc  bool
	Sweep     bool
}

// Arc is an elliptical arc in center parameterization. The point at
// parameter t is
//
//	center + rotate(xRotation) * (rx*cos(a), ry*sin(a))
//
// with a = StartAngle + t*SweepAngle.
type Arc struct {
	Center     Point
	Radii      Point
	StartAngle float64
	SweepAngle float64
	XRotation  float64
}

// IsStraightLine reports whether the arc degenerates to its chord.
func (s SvgArc) IsStraightLine() bool {
	return math.Abs(s.Radii[0]) <= epsilon ||
		math.Abs(s.Radii[1]) <= epsilon ||
		s.From == s.To
}

// ToArc converts to center parameterization, correcting out-of-range
// radii as the SVG specification requires.
func (s SvgArc) ToArc() Arc {
	if s.From == s.To {
		return Arc{Center: s.From, Radii: s.Radii, XRotation: s.XRotation}
	}
	rx := math.Abs(s.Radii[0])
	ry := math.Abs(s.Radii[1])

	xr := math.Mod(s.XRotation, 2*math.Pi)
	cosPhi := math.Cos(xr)
	sinPhi := math.Sin(xr)
	hdX := (s.From[0] - s.To[0]) / 2
	hdY := (s.From[1] - s.To[1]) / 2
	hsX := (s.From[0] + s.To[0]) / 2
	hsY := (s.From[1] + s.To[1]) / 2

	// midpoint in the rotated frame
	px := cosPhi*hdX + sinPhi*hdY
	py := -sinPhi*hdX + cosPhi*hdY

	// scale radii up if the endpoints are out of reach
	rf := px*px/(rx*rx) + py*py/(ry*ry)
	if rf > 1 {
		f := math.Sqrt(rf)
		rx *= f
		ry *= f
	}

	rxry := rx * ry
	rxpy := rx * py
	rypx := ry * px
	sumSq := rxpy*rxpy + rypx*rypx

	coe := math.Sqrt(math.Abs((rxry*rxry - sumSq) / sumSq))
	if s.LargeArc == s.Sweep {
		coe = -coe
	}
	tcx := coe * rxpy / ry
	tcy := -coe * rypx / rx

	center := Point{
		cosPhi*tcx - sinPhi*tcy + hsX,
		sinPhi*tcx + cosPhi*tcy + hsY,
	}

	startAngle := math.Atan2((py-tcy)/ry, (px-tcx)/rx)
	endAngle := math.Atan2((-py-tcy)/ry, (-px-tcx)/rx)
	sweepAngle := math.Mod(endAngle-startAngle, 2*math.Pi)
	if s.Sweep && sweepAngle < 0 {
		sweepAngle += 2 * math.Pi
	} else if !s.Sweep && sweepAngle > 0 {
		sweepAngle -= 2 * math.Pi
	}

	return Arc{
		Center:     center,
		Radii:      Point{rx, ry},
		StartAngle: startAngle,
		SweepAngle: sweepAngle,
		XRotation:  s.XRotation,
	}
}

// ToSvgArc converts back to endpoint parameterization.
func (a Arc) ToSvgArc() SvgArc {
	return SvgArc{
		From:      a.Sample(0),
		To:        a.Sample(1),
		Radii:     a.Radii,
		XRotation: a.XRotation,
		LargeArc:  math.Abs(a.SweepAngle) >= math.Pi,
		Sweep:     a.SweepAngle >= 0,
	}
}

// Sample evaluates the arc at parameter t in [0, 1].
func (a Arc) Sample(t float64) Point {
	angle := a.StartAngle + t*a.SweepAngle
	x := a.Radii[0] * math.Cos(angle)
	y := a.Radii[1] * math.Sin(angle)
	cosPhi := math.Cos(a.XRotation)
	sinPhi := math.Sin(a.XRotation)
	return Point{
		a.Center[0] + x*cosPhi - y*sinPhi,
		a.Center[1] + x*sinPhi + y*cosPhi,
	}
}

// Tangent returns the (unnormalized) direction of travel at t.
func (a Arc) Tangent(t float64) Point {
	angle := a.StartAngle + t*a.SweepAngle
	dx := -a.Radii[0] * math.Sin(angle)
	dy := a.Radii[1] * math.Cos(angle)
	cosPhi := math.Cos(a.XRotation)
	sinPhi := math.Sin(a.XRotation)
	v := Point{dx*cosPhi - dy*sinPhi, dx*sinPhi + dy*cosPhi}
	if a.SweepAngle < 0 {
		v = v.Scale(-1)
	}
	return v
}

// From returns the start point of the arc.
func (a Arc) From() Point { return a.Sample(0) }

// To returns the end point of the arc.
func (a Arc) To() Point { return a.Sample(1) }

// Split cuts the arc at t and returns both pieces.
func (a Arc) Split(t float64) (Arc, Arc) {
	first := a
	first.SweepAngle = a.SweepAngle * t
	second := a
	second.StartAngle = a.StartAngle + a.SweepAngle*t
	second.SweepAngle = a.SweepAngle * (1 - t)
	return first, second
}

// ExtendBounds grows bb to cover the arc, using the exact axis
// extremes of the underlying ellipse that fall inside the sweep.
func (a Arc) ExtendBounds(bb *BoundingBox) {
	bb.Extend(a.Sample(0))
	bb.Extend(a.Sample(1))

	cosPhi := math.Cos(a.XRotation)
	sinPhi := math.Sin(a.XRotation)
	// ellipse angles where x and y are extremal
	thetaX := math.Atan2(-a.Radii[1]*sinPhi, a.Radii[0]*cosPhi)
	thetaY := math.Atan2(a.Radii[1]*cosPhi, a.Radii[0]*sinPhi)
	for _, theta := range [4]float64{thetaX, thetaX + math.Pi, thetaY, thetaY + math.Pi} {
		if t, ok := a.paramForAngle(theta); ok {
			bb.Extend(a.Sample(t))
		}
	}
}

// paramForAngle maps an ellipse angle to a parameter in (0, 1) if the
// sweep passes through it.
func (a Arc) paramForAngle(theta float64) (float64, bool) {
	if math.Abs(a.SweepAngle) < epsilon {
		return 0, false
	}
	d := math.Mod(theta-a.StartAngle, 2*math.Pi)
	if a.SweepAngle > 0 {
		if d < 0 {
			d += 2 * math.Pi
		}
	} else {
		if d > 0 {
			d -= 2 * math.Pi
		}
	}
	t := d / a.SweepAngle
	if t > epsilon && t < 1-epsilon {
		return t, true
	}
	return 0, false
}

// Transformed applies an affine transform to the arc, returning the
// endpoint form of the image ellipse. The flags follow the mirroring
// of the transform: a negative determinant inverts the sweep
// direction.
func (s SvgArc) Transformed(m Matrix2D) SvgArc {
	radii, rotation := transformEllipse(s.Radii, s.XRotation, m)
	sweep := s.Sweep
	if m.Determinant() < 0 {
		sweep = !sweep
	}
	return SvgArc{
		From:      m.Apply(s.From),
		To:        m.Apply(s.To),
		Radii:     radii,
		XRotation: rotation,
		LargeArc:  s.LargeArc,
		Sweep:     sweep,
	}
}

// transformEllipse computes the radii and axis rotation of the image
// of an ellipse under the linear part of m, by diagonalizing the
// transformed unit circle.
func transformEllipse(radii Point, xRotation float64, m Matrix2D) (Point, float64) {
	cosPhi := math.Cos(xRotation)
	sinPhi := math.Sin(xRotation)
	rx, ry := radii[0], radii[1]

	// columns of the combined (rotation * scale * m) linear map
	ma := [4]float64{
		rx * (m.A*cosPhi + m.C*sinPhi),
		rx * (m.B*cosPhi + m.D*sinPhi),
		ry * (-m.A*sinPhi + m.C*cosPhi),
		ry * (-m.B*sinPhi + m.D*cosPhi),
	}

	j := ma[0]*ma[0] + ma[2]*ma[2]
	k := ma[1]*ma[1] + ma[3]*ma[3]

	d := ((ma[0]-ma[3])*(ma[0]-ma[3]) + (ma[2]+ma[1])*(ma[2]+ma[1])) *
		((ma[0]+ma[3])*(ma[0]+ma[3]) + (ma[2]-ma[1])*(ma[2]-ma[1]))

	jk := (j + k) / 2

	// degenerate into a circle
	if d < epsilon*jk {
		r := math.Sqrt(jk)
		return Point{r, r}, 0
	}

	l := ma[0]*ma[1] + ma[2]*ma[3]

	sqrtD := math.Sqrt(d)
	// eigenvalues of the quadratic form
	l1 := jk + sqrtD/2
	l2 := jk - sqrtD/2

	var rotation float64
	if math.Abs(l) < epsilon && math.Abs(l1-k) < epsilon {
		rotation = math.Pi / 2
	} else if math.Abs(l) > math.Abs(l1-k) {
		rotation = math.Atan((l1 - j) / l)
	} else {
		rotation = math.Atan(l / (l1 - k))
	}

	return Point{math.Sqrt(l1), math.Sqrt(l2)}, rotation
}
