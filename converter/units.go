package converter

import (
	"math"

	"github.com/benoitkugler/svg2gcode/svgpath"
)

// DimensionHint selects the viewport dimension a percentage resolves
// against.
type DimensionHint uint8

const (
	HintHorizontal DimensionHint = iota
	HintVertical
	// HintOther resolves against the normalized viewport diagonal.
	HintOther
)

// viewport is a resolved (width, height) pair in user units.
type viewport struct {
	W, H float64
}

// approximate glyph size for em and ex lengths
const unitsPerEm = 16

// resolveLength converts a length to user units. Physical units are
// DPI-invariant: their size in millimeters does not depend on the
// configured dpi. Percentages need a viewport; without one the raw
// number is used as user units and a warning is logged.
func resolveLength(l svgpath.Length, hint DimensionHint, dpi float64, vp *viewport) float64 {
	n := l.Value
	switch l.Unit {
	case svgpath.Px, svgpath.None:
		return n
	case svgpath.In:
		return n * dpi
	case svgpath.Cm:
		return n / 2.54 * dpi
	case svgpath.Mm:
		return n / 25.4 * dpi
	case svgpath.Pt:
		return n / 72 * dpi
	case svgpath.Pc:
		return n / 6 * dpi
	case svgpath.Em, svgpath.Ex:
		Logger.Warn().Str("length", l.String()).
			Msg("em and ex lengths use a fixed 16 units per em approximation")
		return n * unitsPerEm
	case svgpath.Percent:
		if vp == nil {
			Logger.Warn().Str("length", l.String()).
				Msg("percentage length with no viewport, using the raw number")
			return n
		}
		switch hint {
		case HintHorizontal:
			return n / 100 * vp.W
		case HintVertical:
			return n / 100 * vp.H
		default:
			return n / 100 * math.Hypot(vp.W, vp.H) / math.Sqrt2
		}
	}
	return n
}
