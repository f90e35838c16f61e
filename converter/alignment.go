package converter

import (
	"math"

	"github.com/benoitkugler/svg2gcode/svgpath"
)

// resolveAlignment computes the transform, in millimeters, placing
// the traced bounding box into the requested frame. target holds the
// requested output dimensions in millimeters, nil where unspecified,
// and viewportMM the document viewport traced by the first pass.
//
// Trimming scales the box uniformly into the given dimensions before
// aligning it. The container the box is aligned within is the target
// dimension (or the scaled box) when trimming, and the document
// viewport otherwise.
func resolveAlignment(config *ConversionConfig, options *ConversionOptions, bounds svgpath.BoundingBox, viewportMM viewport, target [2]*float64) svgpath.Matrix2D {
	if bounds.IsEmpty() {
		return svgpath.Identity
	}
	minX, minY := bounds.Min[0], bounds.Min[1]
	bw, bh := bounds.Width(), bounds.Height()

	aligning := options.alignmentRequested()
	scale := 1.0
	if options.Trim {
		scale = fitScale(bw, bh, target)
	}
	sMinX, sMinY := minX*scale, minY*scale
	sw, sh := bw*scale, bh*scale

	var ax, ay float64
	if aligning {
		cw, ch := sw, sh
		if options.Trim {
			if target[0] != nil {
				cw = *target[0]
			}
			if target[1] != nil {
				ch = *target[1]
			}
		} else {
			if viewportMM.W > 0 {
				cw = viewportMM.W
			}
			if viewportMM.H > 0 {
				ch = viewportMM.H
			}
		}
		switch options.HAlign {
		case AlignLeft:
			ax = -sMinX
		case AlignCenterX:
			ax = (cw-sw)/2 - sMinX
		case AlignRight:
			ax = cw - sw - sMinX
		}
		// SVG y grows downwards but the machine y grows upwards,
		// hence top means the far end of the frame
		switch options.VAlign {
		case AlignTop:
			ay = ch - sh - sMinY
		case AlignCenterY:
			ay = (ch-sh)/2 - sMinY
		case AlignBottom:
			ay = -sMinY
		}
	}

	// a (0, 0) origin is the historical default and yields to an
	// explicit alignment request
	defaultOrigin := config.Origin[0] != nil && *config.Origin[0] == 0 &&
		config.Origin[1] != nil && *config.Origin[1] == 0
	var ox, oy float64
	if !aligning || !defaultOrigin {
		if p := config.Origin[0]; p != nil {
			ox = *p - minX
		}
		if p := config.Origin[1]; p != nil {
			oy = *p - minY
		}
	}

	return svgpath.Identity.Translate(ox, oy).Translate(ax, ay).Scale(scale, scale)
}

// fitScale returns the uniform scale fitting a bw by bh box into the
// given dimensions, ignoring axes with no requested dimension or a
// degenerate extent.
func fitScale(bw, bh float64, target [2]*float64) float64 {
	scale := math.Inf(1)
	if target[0] != nil && bw > epsilonExtent {
		scale = *target[0] / bw
	}
	if target[1] != nil && bh > epsilonExtent {
		scale = math.Min(scale, *target[1]/bh)
	}
	if math.IsInf(scale, 1) {
		return 1
	}
	return scale
}

const epsilonExtent = 1e-12
