package converter

import (
	"github.com/benoitkugler/svg2gcode/gcode"
	"github.com/benoitkugler/svg2gcode/machine"
	"github.com/benoitkugler/svg2gcode/svgdom"
	"github.com/benoitkugler/svg2gcode/svgpath"
	"github.com/benoitkugler/svg2gcode/turtle"
)

// Convert renders a parsed SVG document into a G-code program for
// the given machine.
//
// The document is traversed twice: a first pass traces the bounding
// box of the drawing in millimeters, a second pass emits G-code with
// the origin and alignment transform derived from that box.
func Convert(doc *svgdom.Document, config ConversionConfig, options ConversionOptions, mach *machine.Machine) ([]gcode.Token, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// SVG y grows downwards, G-code y grows upwards
	flip := svgpath.Identity.Scale(1, -1)

	bounds := turtle.BoundsTurtle{}
	tracer := visitor{
		config: &config,
		turtle: &turtle.DpiTurtle{Inner: &bounds, Dpi: config.Dpi},
	}
	if err := tracer.run(doc, flip); err != nil {
		return nil, err
	}

	var viewportMM viewport
	if vp := tracer.lastViewport; vp != nil {
		viewportMM = viewport{
			W: vp.W * config.mmPerUserUnit(),
			H: vp.H * config.mmPerUserUnit(),
		}
	}
	target := config.targetDimensions(&options, tracer.lastViewport)
	alignMM := resolveAlignment(&config, &options, bounds.Bounds(), viewportMM, target)
	// the alignment is computed in millimeters but applied before
	// the unit conversion of the output turtle
	alignUU := alignMM
	alignUU.E /= config.mmPerUserUnit()
	alignUU.F /= config.mmPerUserUnit()

	backend := turtle.GCodeTurtle{
		Machine:      mach,
		Tolerance:    config.Tolerance,
		Feedrate:     config.Feedrate,
		MinArcRadius: config.minArcRadius(),
		DetectArcs:   config.DetectPolygonArcs,
		MinArcPoints: config.MinPolygonArcPoints,
		ArcTolerance: config.polygonArcTolerance(),
	}
	emitter := visitor{
		config: &config,
		turtle: &turtle.DpiTurtle{Inner: &backend, Dpi: config.Dpi},
	}
	if err := emitter.run(doc, alignUU.Mult(flip)); err != nil {
		return nil, err
	}
	return backend.Program, nil
}

// targetDimensions resolves the requested output dimensions to
// millimeters, against the viewport established by the document root.
func (c *ConversionConfig) targetDimensions(options *ConversionOptions, root *viewport) [2]*float64 {
	var target [2]*float64
	hints := [2]DimensionHint{HintHorizontal, HintVertical}
	for i, l := range options.Dimensions {
		if l == nil {
			continue
		}
		mm := resolveLength(*l, hints[i], c.Dpi, root) * c.mmPerUserUnit()
		target[i] = &mm
	}
	return target
}
