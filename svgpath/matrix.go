package svgpath

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Matrix2D is an affine transform in the SVG matrix(a,b,c,d,e,f)
// convention: x' = a*x + c*y + e ; y' = b*x + d*y + f.
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Mult returns m × o: o is applied to a point first, then m.
func (m Matrix2D) Mult(o Matrix2D) Matrix2D {
	return Matrix2D{
		A: m.A*o.A + m.C*o.B,
		B: m.B*o.A + m.D*o.B,
		C: m.A*o.C + m.C*o.D,
		D: m.B*o.C + m.D*o.D,
		E: m.A*o.E + m.C*o.F + m.E,
		F: m.B*o.E + m.D*o.F + m.F,
	}
}

// Translate post-multiplies a translation, so the translation is
// applied to points before m.
func (m Matrix2D) Translate(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{1, 0, 0, 1, x, y})
}

// Scale post-multiplies a scale.
func (m Matrix2D) Scale(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{x, 0, 0, y, 0, 0})
}

// Rotate post-multiplies a rotation by a radians.
func (m Matrix2D) Rotate(a float64) Matrix2D {
	sin, cos := math.Sincos(a)
	return m.Mult(Matrix2D{cos, sin, -sin, cos, 0, 0})
}

// SkewX post-multiplies a horizontal skew by a radians.
func (m Matrix2D) SkewX(a float64) Matrix2D {
	return m.Mult(Matrix2D{1, 0, math.Tan(a), 1, 0, 0})
}

// SkewY post-multiplies a vertical skew by a radians.
func (m Matrix2D) SkewY(a float64) Matrix2D {
	return m.Mult(Matrix2D{1, math.Tan(a), 0, 1, 0, 0})
}

// Apply transforms the point p.
func (m Matrix2D) Apply(p Point) Point {
	return Point{
		m.A*p[0] + m.C*p[1] + m.E,
		m.B*p[0] + m.D*p[1] + m.F,
	}
}

// ApplyVector transforms p as a direction, ignoring translation.
func (m Matrix2D) ApplyVector(p Point) Point {
	return Point{
		m.A*p[0] + m.C*p[1],
		m.B*p[0] + m.D*p[1],
	}
}

// Determinant returns the determinant of the linear part. A negative
// value indicates a mirroring transform.
func (m Matrix2D) Determinant() float64 { return m.A*m.D - m.B*m.C }

var errParamMismatch = errors.New("transform: parameter mismatch")

func applyTransformOp(m Matrix2D, op string, pts []float64) (Matrix2D, error) {
	ln := len(pts)
	switch op {
	case "rotate":
		if ln == 1 {
			m = m.Rotate(pts[0] * math.Pi / 180)
		} else if ln == 3 {
			m = m.Translate(pts[1], pts[2]).
				Rotate(pts[0] * math.Pi / 180).
				Translate(-pts[1], -pts[2])
		} else {
			return m, errParamMismatch
		}
	case "translate":
		if ln == 1 {
			m = m.Translate(pts[0], 0)
		} else if ln == 2 {
			m = m.Translate(pts[0], pts[1])
		} else {
			return m, errParamMismatch
		}
	case "skewx":
		if ln == 1 {
			m = m.SkewX(pts[0] * math.Pi / 180)
		} else {
			return m, errParamMismatch
		}
	case "skewy":
		if ln == 1 {
			m = m.SkewY(pts[0] * math.Pi / 180)
		} else {
			return m, errParamMismatch
		}
	case "scale":
		if ln == 1 {
			m = m.Scale(pts[0], pts[0])
		} else if ln == 2 {
			m = m.Scale(pts[0], pts[1])
		} else {
			return m, errParamMismatch
		}
	case "matrix":
		if ln == 6 {
			m = m.Mult(Matrix2D{
				A: pts[0],
				B: pts[1],
				C: pts[2],
				D: pts[3],
				E: pts[4],
				F: pts[5],
			})
		} else {
			return m, errParamMismatch
		}
	default:
		return m, errParamMismatch
	}
	return m, nil
}

// ParseTransform parses an SVG transform attribute value into a
// single composed Matrix2D.
func ParseTransform(v string) (Matrix2D, error) {
	m := Identity
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimSpace(t)
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return m, errParamMismatch // badly formed transformation
		}
		pts, err := ParseNumberList(d[1])
		if err != nil {
			return m, err
		}
		m, err = applyTransformOp(m, strings.ToLower(strings.TrimSpace(d[0])), pts)
		if err != nil {
			return m, err
		}
	}
	return m, nil
}
