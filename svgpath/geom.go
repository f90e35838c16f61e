// Package svgpath implements the geometry underlying SVG paths:
// points, affine transforms, Bézier segments and elliptical arcs,
// along with the tolerance-bounded approximation of curves into
// circular arcs and line segments.
package svgpath

import (
	"math"

	"golang.org/x/image/math/f64"
)

// epsilon is the float64 machine epsilon, used for degeneracy checks.
const epsilon = 2.220446049250313e-16

// Point is a 2D point or vector, in user units or millimeters
// depending on the processing stage.
type Point f64.Vec2

func (p Point) Add(q Point) Point { return Point{p[0] + q[0], p[1] + q[1]} }

func (p Point) Sub(q Point) Point { return Point{p[0] - q[0], p[1] - q[1]} }

func (p Point) Scale(k float64) Point { return Point{p[0] * k, p[1] * k} }

// Dot returns the dot product p·q.
func (p Point) Dot(q Point) float64 { return p[0]*q[0] + p[1]*q[1] }

// Cross returns the 2D cross product (the z component of p×q).
func (p Point) Cross(q Point) float64 { return p[0]*q[1] - p[1]*q[0] }

func (p Point) Length() float64 { return math.Hypot(p[0], p[1]) }

func (p Point) SquareLength() float64 { return p[0]*p[0] + p[1]*p[1] }

// Normalize returns the unit vector with the direction of p.
// The zero vector is returned unchanged.
func (p Point) Normalize() Point {
	l := p.Length()
	if l == 0 {
		return p
	}
	return Point{p[0] / l, p[1] / l}
}

// Lerp linearly interpolates between p and q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p[0] + (q[0]-p[0])*t, p[1] + (q[1]-p[1])*t}
}

// Line is an infinite line given by a point and a direction vector.
type Line struct {
	Point  Point
	Vector Point
}

// Intersection returns the intersection of two lines, or false when
// they are (numerically) parallel.
func (l Line) Intersection(o Line) (Point, bool) {
	det := l.Vector.Cross(o.Vector)
	if math.Abs(det) < epsilon {
		return Point{}, false
	}
	d := o.Point.Sub(l.Point)
	t := d.Cross(o.Vector) / det
	return l.Point.Add(l.Vector.Scale(t)), true
}

// LineSegment is a straight segment between two points.
type LineSegment struct {
	From, To Point
}

// Sample returns the point at parameter t in [0, 1].
func (s LineSegment) Sample(t float64) Point { return s.From.Lerp(s.To, t) }

// BoundingBox is an axis-aligned rectangle accumulating geometry
// extents. The zero value is empty; it only grows.
type BoundingBox struct {
	Min, Max Point
	set      bool
}

// Extend grows the box to include p.
func (b *BoundingBox) Extend(p Point) {
	if !b.set {
		b.Min, b.Max = p, p
		b.set = true
		return
	}
	b.Min[0] = math.Min(b.Min[0], p[0])
	b.Min[1] = math.Min(b.Min[1], p[1])
	b.Max[0] = math.Max(b.Max[0], p[0])
	b.Max[1] = math.Max(b.Max[1], p[1])
}

// IsEmpty reports whether no point was ever added.
func (b *BoundingBox) IsEmpty() bool { return !b.set }

func (b *BoundingBox) Width() float64 { return b.Max[0] - b.Min[0] }

func (b *BoundingBox) Height() float64 { return b.Max[1] - b.Min[1] }
