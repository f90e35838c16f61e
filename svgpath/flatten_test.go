package svgpath

import (
	"math"
	"testing"
)

// kappa gives the classic cubic approximation of a quarter circle
const kappa = 0.5522847498307933

func quarterCircleCubic() CubicBezier {
	return CubicBezier{
		From:  Point{1, 0},
		Ctrl1: Point{1, kappa},
		Ctrl2: Point{kappa, 1},
		To:    Point{0, 1},
	}
}

func TestFlattenCubicQuarterCircle(t *testing.T) {
	const tolerance = 1e-3
	var segments []Segment
	FlattenCubic(quarterCircleCubic(), tolerance, func(s Segment) {
		segments = append(segments, s)
	})
	if len(segments) == 0 {
		t.Fatal("no segments emitted")
	}

	// segments must chain from (1,0) to (0,1)
	cursor := Point{1, 0}
	for _, s := range segments {
		var from, to Point
		if s.IsArc {
			from, to = s.Arc.From, s.Arc.To
			if math.Abs(s.Arc.Radii[0]-s.Arc.Radii[1]) > 1e-12 {
				t.Errorf("fitted arc is not circular: %v", s.Arc.Radii)
			}
			// the source curve hugs the unit circle
			if math.Abs(s.Arc.Radii[0]-1) > 0.01 {
				t.Errorf("fitted radius %v, want about 1", s.Arc.Radii[0])
			}
		} else {
			from, to = s.Line.From, s.Line.To
		}
		if !nearPoint(from, cursor, 1e-9) {
			t.Errorf("segment starts at %v, previous ended at %v", from, cursor)
		}
		cursor = to
	}
	if !nearPoint(cursor, Point{0, 1}, 1e-9) {
		t.Errorf("flattening ends at %v, want {0 1}", cursor)
	}
}

// distanceToSegment is the distance from p to the segment [a, b].
func distanceToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	l := ab.SquareLength()
	if l == 0 {
		return p.Sub(a).Length()
	}
	u := p.Sub(a).Dot(ab) / l
	u = math.Max(0, math.Min(1, u))
	return p.Sub(a.Lerp(b, u)).Length()
}

func distanceToPolyline(p Point, samples []Point) float64 {
	best := math.Inf(1)
	for i := 1; i < len(samples); i++ {
		best = math.Min(best, distanceToSegment(p, samples[i-1], samples[i]))
	}
	return best
}

func TestFlattenCubicWithinTolerance(t *testing.T) {
	const tolerance = 1e-3
	c := CubicBezier{From: Point{0, 0}, Ctrl1: Point{2, 3}, Ctrl2: Point{5, -1}, To: Point{6, 2}}

	// a dense polyline of the source curve, far finer than tolerance
	samples := make([]Point, 0, 2049)
	for i := 0; i <= 2048; i++ {
		samples = append(samples, c.Sample(float64(i)/2048))
	}

	count := 0
	FlattenCubic(c, tolerance, func(s Segment) {
		count++
		for i := 0; i <= 32; i++ {
			u := float64(i) / 32
			var p Point
			if s.IsArc {
				p = s.Arc.ToArc().Sample(u)
			} else {
				p = s.Line.Sample(u)
			}
			// the acceptance check samples the curve, leave it a
			// small slack between its sample points
			if d := distanceToPolyline(p, samples); d > tolerance*1.05 {
				t.Fatalf("point %v deviates by %v, tolerance %v", p, d, tolerance)
			}
		}
	})
	if count == 0 {
		t.Fatal("no segments emitted")
	}
}

func TestFlattenCubicLinear(t *testing.T) {
	c := CubicBezier{
		From:  Point{0, 0},
		Ctrl1: Point{1, 0},
		Ctrl2: Point{2, 0},
		To:    Point{3, 0},
	}
	var segments []Segment
	FlattenCubic(c, 1e-4, func(s Segment) { segments = append(segments, s) })
	if len(segments) != 1 || segments[0].IsArc {
		t.Fatalf("expected a single line, got %v", segments)
	}
	if segments[0].Line != (LineSegment{Point{0, 0}, Point{3, 0}}) {
		t.Errorf("unexpected line %v", segments[0].Line)
	}
}

func TestFlattenCubicDegenerate(t *testing.T) {
	c := CubicBezier{From: Point{1, 1}, Ctrl1: Point{1, 1}, Ctrl2: Point{1, 1}, To: Point{1, 1}}
	count := 0
	FlattenCubic(c, 1e-4, func(Segment) { count++ })
	if count != 0 {
		t.Errorf("degenerate curve emitted %d segments", count)
	}
}

func TestFlattenArcCircularPassThrough(t *testing.T) {
	arc := SvgArc{
		From:  Point{0, 0},
		To:    Point{10, 10},
		Radii: Point{10, 10},
		Sweep: true,
	}
	var segments []Segment
	FlattenArc(arc, 1e-4, func(s Segment) { segments = append(segments, s) })
	if len(segments) != 1 || !segments[0].IsArc {
		t.Fatalf("circular arc should pass through untouched, got %v", segments)
	}
	if segments[0].Arc != arc {
		t.Errorf("arc was modified: %+v", segments[0].Arc)
	}
}

func TestFlattenArcElliptic(t *testing.T) {
	const tolerance = 1e-3
	arc := SvgArc{
		From:  Point{4, 0},
		To:    Point{0, 2},
		Radii: Point{4, 2},
		Sweep: true,
	}
	var segments []Segment
	FlattenArc(arc, tolerance, func(s Segment) { segments = append(segments, s) })
	if len(segments) < 2 {
		t.Fatalf("an ellipse quadrant needs several circular arcs, got %d", len(segments))
	}
	cursor := Point{4, 0}
	for _, s := range segments {
		var from, to Point
		if s.IsArc {
			from, to = s.Arc.From, s.Arc.To
		} else {
			from, to = s.Line.From, s.Line.To
		}
		if !nearPoint(from, cursor, 1e-9) {
			t.Errorf("segment starts at %v, previous ended at %v", from, cursor)
		}
		// both endpoints must lie on the source ellipse
		for _, p := range []Point{from, to} {
			v := p[0]*p[0]/16 + p[1]*p[1]/4
			if math.Abs(v-1) > 1e-6 {
				t.Errorf("endpoint %v is off the ellipse", p)
			}
		}
		cursor = to
	}
	if !nearPoint(cursor, Point{0, 2}, 1e-9) {
		t.Errorf("flattening ends at %v, want {0 2}", cursor)
	}
}

func TestFlattenCubicLines(t *testing.T) {
	const tolerance = 1e-2
	c := quarterCircleCubic()
	var lines []LineSegment
	FlattenCubicLines(c, tolerance, func(l LineSegment) { lines = append(lines, l) })
	if len(lines) < 2 {
		t.Fatalf("expected several line segments, got %d", len(lines))
	}
	cursor := Point{1, 0}
	for _, l := range lines {
		if !nearPoint(l.From, cursor, 1e-9) {
			t.Errorf("segment starts at %v, previous ended at %v", l.From, cursor)
		}
		cursor = l.To
	}
	if !nearPoint(cursor, Point{0, 1}, 1e-9) {
		t.Errorf("flattening ends at %v", cursor)
	}
}

func TestSvgArcToArcRoundTrip(t *testing.T) {
	src := SvgArc{
		From:      Point{0, 0},
		To:        Point{10, 0},
		Radii:     Point{10, 5},
		XRotation: 0.3,
		LargeArc:  false,
		Sweep:     true,
	}
	arc := src.ToArc()
	if !nearPoint(arc.Sample(0), src.From, 1e-9) {
		t.Errorf("center form start %v, want %v", arc.Sample(0), src.From)
	}
	if !nearPoint(arc.Sample(1), src.To, 1e-9) {
		t.Errorf("center form end %v, want %v", arc.Sample(1), src.To)
	}
	if arc.SweepAngle <= 0 {
		t.Errorf("sweep flag lost: %v", arc.SweepAngle)
	}
	if math.Abs(arc.SweepAngle) >= math.Pi {
		t.Errorf("small arc became large: %v", arc.SweepAngle)
	}

	back := arc.ToSvgArc()
	if !nearPoint(back.From, src.From, 1e-9) || !nearPoint(back.To, src.To, 1e-9) {
		t.Errorf("round trip moved endpoints: %+v", back)
	}
	if back.LargeArc != src.LargeArc || back.Sweep != src.Sweep {
		t.Errorf("round trip changed flags: %+v", back)
	}
}

func TestSvgArcRadiiCorrection(t *testing.T) {
	// radii too small to reach the endpoints are scaled up
	src := SvgArc{
		From:  Point{0, 0},
		To:    Point{10, 0},
		Radii: Point{1, 1},
		Sweep: true,
	}
	arc := src.ToArc()
	if arc.Radii[0] < 5 {
		t.Errorf("radii not corrected: %v", arc.Radii)
	}
	if !nearPoint(arc.Sample(1), src.To, 1e-9) {
		t.Errorf("endpoint lost after correction: %v", arc.Sample(1))
	}
}

func TestSvgArcTransformed(t *testing.T) {
	circle := SvgArc{
		From:  Point{2, 0},
		To:    Point{0, 2},
		Radii: Point{2, 2},
		Sweep: true,
	}
	got := circle.Transformed(Identity.Scale(2, 1))
	if math.Abs(got.Radii[0]-4) > 1e-9 || math.Abs(got.Radii[1]-2) > 1e-9 {
		t.Errorf("scaled radii: got %v, want {4 2}", got.Radii)
	}
	if math.Abs(got.XRotation) > 1e-9 {
		t.Errorf("axis aligned scale should not rotate: %v", got.XRotation)
	}
	if got.From != (Point{4, 0}) || got.To != (Point{0, 2}) {
		t.Errorf("endpoints: got %v %v", got.From, got.To)
	}
	if got.Sweep != circle.Sweep {
		t.Errorf("orientation preserving transform flipped the sweep")
	}

	mirrored := circle.Transformed(Identity.Scale(-1, 1))
	if mirrored.Sweep == circle.Sweep {
		t.Errorf("mirroring must invert the sweep flag")
	}
}

func TestDetectArcsOnCircle(t *testing.T) {
	const radius = 10.0
	points := make([]Point, 20)
	for i := range points {
		a := float64(i) / float64(len(points)-1) * math.Pi / 2
		points[i] = Point{radius * math.Cos(a), radius * math.Sin(a)}
	}

	var segments []Segment
	DetectArcs(points, 5, 1e-4, func(s Segment) { segments = append(segments, s) })
	if len(segments) != 1 {
		t.Fatalf("expected one arc over the whole run, got %d segments", len(segments))
	}
	arc := segments[0]
	if !arc.IsArc {
		t.Fatal("circle samples were not detected as an arc")
	}
	if math.Abs(arc.Arc.Radii[0]-radius) > 1e-6 {
		t.Errorf("detected radius %v, want %v", arc.Arc.Radii[0], radius)
	}
	if !nearPoint(arc.Arc.From, points[0], 1e-12) ||
		!nearPoint(arc.Arc.To, points[len(points)-1], 1e-12) {
		t.Errorf("arc endpoints do not match the run: %+v", arc.Arc)
	}
}

func TestDetectArcsKeepsStraightLines(t *testing.T) {
	points := make([]Point, 10)
	for i := range points {
		points[i] = Point{float64(i), 2 * float64(i)}
	}
	var segments []Segment
	DetectArcs(points, 5, 1e-4, func(s Segment) { segments = append(segments, s) })
	if len(segments) != len(points)-1 {
		t.Fatalf("collinear points must stay lines, got %d segments", len(segments))
	}
	for _, s := range segments {
		if s.IsArc {
			t.Fatalf("collinear points produced an arc: %+v", s)
		}
	}
}

func TestArcExtendBounds(t *testing.T) {
	// upper half of the unit circle
	arc := Arc{
		Center:     Point{0, 0},
		Radii:      Point{1, 1},
		StartAngle: 0,
		SweepAngle: math.Pi,
	}
	var bb BoundingBox
	arc.ExtendBounds(&bb)
	if !nearPoint(bb.Min, Point{-1, 0}, 1e-9) {
		t.Errorf("min: got %v, want {-1 0}", bb.Min)
	}
	if !nearPoint(bb.Max, Point{1, 1}, 1e-9) {
		t.Errorf("max: got %v, want {1 1}", bb.Max)
	}
}

func TestMonotonicRanges(t *testing.T) {
	// the x coordinate turns around halfway
	c := CubicBezier{
		From:  Point{0, 0},
		Ctrl1: Point{2, 0},
		Ctrl2: Point{2, 1},
		To:    Point{0, 1},
	}
	ranges := c.MonotonicRanges()
	if len(ranges) < 2 {
		t.Fatalf("expected a split at the x extremum, got %v", ranges)
	}
	if ranges[0][0] != 0 || ranges[len(ranges)-1][1] != 1 {
		t.Errorf("ranges do not cover [0,1]: %v", ranges)
	}
	for i := 1; i < len(ranges); i++ {
		if ranges[i][0] != ranges[i-1][1] {
			t.Errorf("ranges are not contiguous: %v", ranges)
		}
	}
}
