package converter

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/benoitkugler/svg2gcode/svgdom"
	"github.com/benoitkugler/svg2gcode/svgpath"
	"github.com/benoitkugler/svg2gcode/turtle"
)

// visitor walks a document depth first and lowers every supported
// element to turtle commands. The same visitor is run twice per
// conversion, first against a BoundsTurtle and then against the
// G-code backend, so it must not keep state between runs besides
// lastViewport.
type visitor struct {
	config *ConversionConfig
	turtle turtle.Turtle

	// parallel stacks, pushed on entering an element
	transforms []svgpath.Matrix2D
	viewports  []viewport
	names      []string

	seenLayer bool

	// last pushed viewport in user units, kept after the run so the
	// caller can resolve percentage dimensions against it
	lastViewport *viewport
}

// run traverses the document. base is applied after every SVG
// transform, mapping user units to the output space.
func (v *visitor) run(doc *svgdom.Document, base svgpath.Matrix2D) error {
	v.transforms = append(v.transforms[:0], base)
	v.viewports = v.viewports[:0]
	v.names = v.names[:0]
	v.seenLayer = false

	v.turtle.Begin()
	if err := v.element(doc.Root, true); err != nil {
		return err
	}
	v.turtle.End()
	return nil
}

func (v *visitor) currentViewport() *viewport {
	if len(v.viewports) == 0 {
		return nil
	}
	return &v.viewports[len(v.viewports)-1]
}

func (v *visitor) topTransform() svgpath.Matrix2D {
	return v.transforms[len(v.transforms)-1]
}

func nodeName(el *svgdom.Element) string {
	if id := el.ID(); id != "" {
		return el.Name + "#" + id
	}
	return el.Name
}

func (v *visitor) element(el *svgdom.Element, root bool) error {
	switch el.Name {
	case "svg", "g", "path", "rect", "circle", "ellipse", "line", "polyline", "polygon":
	default:
		Logger.Warn().Str("element", el.Name).Msg("skipping unsupported element")
		return nil
	}

	top := v.topTransform()
	if raw, ok := el.Attr("transform"); ok {
		m, err := svgpath.ParseTransform(raw)
		if err != nil {
			Logger.Warn().Err(err).Str("element", nodeName(el)).Msg("invalid transform, ignoring it")
			m = svgpath.Identity
		}
		top = top.Mult(m)
	}

	pushedViewport := false
	if el.Name == "svg" {
		top, pushedViewport = v.enterViewport(el, top)
	}

	v.transforms = append(v.transforms, top)
	v.names = append(v.names, nodeName(el))
	defer func() {
		v.transforms = v.transforms[:len(v.transforms)-1]
		v.names = v.names[:len(v.names)-1]
		if pushedViewport {
			v.viewports = v.viewports[:len(v.viewports)-1]
		}
	}()

	v.turtle.Comment(strings.Join(v.names, " > "))
	if extra := v.config.ExtraAttributeName; extra != "" {
		if value, ok := el.Attr(extra); ok {
			v.turtle.Comment(extra + ": " + value)
		}
	}

	switch el.Name {
	case "svg", "g":
		for _, child := range el.Children {
			if root && child.Name == "g" {
				if v.seenLayer {
					v.turtle.BetweenLayers()
				}
				v.seenLayer = true
			}
			if err := v.element(child, false); err != nil {
				return err
			}
		}
		return nil
	case "path":
		return v.path(el)
	case "rect":
		v.rect(el)
	case "circle":
		v.ellipse(el, true)
	case "ellipse":
		v.ellipse(el, false)
	case "line":
		v.line(el)
	case "polyline":
		v.poly(el, false)
	case "polygon":
		v.poly(el, true)
	}
	return nil
}

// enterViewport resolves the width, height and viewBox attributes of
// an svg element, returning the updated transform and whether a new
// viewport was pushed.
func (v *visitor) enterViewport(el *svgdom.Element, top svgpath.Matrix2D) (svgpath.Matrix2D, bool) {
	var viewBox []float64
	if raw, ok := el.Attr("viewBox"); ok {
		nums, err := svgpath.ParseNumberList(raw)
		if err == nil && len(nums) != 4 {
			err = errors.Errorf("expected 4 numbers, got %d", len(nums))
		}
		if err != nil {
			Logger.Warn().Err(err).Msg("invalid viewBox, ignoring it")
		} else {
			viewBox = nums
		}
	}

	width := v.dimensionAttr(el, "width", HintHorizontal)
	height := v.dimensionAttr(el, "height", HintVertical)

	var vp viewport
	switch {
	case viewBox != nil:
		vbX, vbY, vbW, vbH := viewBox[0], viewBox[1], viewBox[2], viewBox[3]
		if vbW <= 0 || vbH <= 0 {
			Logger.Warn().Msg("degenerate viewBox, ignoring it")
			return top, false
		}
		// a single dimension scales both axes uniformly
		w, h := vbW, vbH
		switch {
		case width != nil && height != nil:
			w, h = *width, *height
		case width != nil:
			w, h = *width, vbH*(*width/vbW)
		case height != nil:
			w, h = vbW*(*height/vbH), *height
		}
		top = top.Scale(w/vbW, h/vbH).Translate(-vbX, -vbY)
		vp = viewport{W: w, H: h}
	case width != nil || height != nil:
		if width != nil {
			vp.W = *width
		}
		if height != nil {
			vp.H = *height
		}
	default:
		return top, false
	}

	v.viewports = append(v.viewports, vp)
	pushed := vp
	v.lastViewport = &pushed
	return top, true
}

// dimensionAttr parses an optional length attribute against the
// current viewport, returning nil when absent or malformed.
func (v *visitor) dimensionAttr(el *svgdom.Element, name string, hint DimensionHint) *float64 {
	raw, ok := el.Attr(name)
	if !ok {
		return nil
	}
	l, err := svgpath.ParseLength(raw)
	if err != nil {
		Logger.Warn().Err(err).Str("attribute", name).Str("element", nodeName(el)).Msg("invalid length, ignoring it")
		return nil
	}
	value := resolveLength(l, hint, v.config.Dpi, v.currentViewport())
	return &value
}

// lengthAttr is dimensionAttr with a default for geometry attributes.
func (v *visitor) lengthAttr(el *svgdom.Element, name string, hint DimensionHint, def float64) float64 {
	if value := v.dimensionAttr(el, name, hint); value != nil {
		return *value
	}
	return def
}

// turtleDriver feeds parsed path commands to the turtle, applying the
// current transform. Coordinates given to the driver are untransformed
// user units.
type turtleDriver struct {
	t turtle.Turtle
	m svgpath.Matrix2D

	start   svgpath.Point // subpath start
	current svgpath.Point
}

func (d *turtleDriver) MoveTo(to svgpath.Point) {
	d.start, d.current = to, to
	d.t.MoveTo(d.m.Apply(to))
}

func (d *turtleDriver) LineTo(to svgpath.Point) {
	d.current = to
	d.t.LineTo(d.m.Apply(to))
}

func (d *turtleDriver) CubicTo(ctrl1, ctrl2, to svgpath.Point) {
	d.current = to
	d.t.CubicTo(d.m.Apply(ctrl1), d.m.Apply(ctrl2), d.m.Apply(to))
}

func (d *turtleDriver) QuadTo(ctrl, to svgpath.Point) {
	d.current = to
	d.t.QuadTo(d.m.Apply(ctrl), d.m.Apply(to))
}

func (d *turtleDriver) ArcTo(radii svgpath.Point, xRotation float64, largeArc, sweep bool, to svgpath.Point) {
	arc := svgpath.SvgArc{
		From:      d.current,
		To:        to,
		Radii:     radii,
		XRotation: xRotation,
		LargeArc:  largeArc,
		Sweep:     sweep,
	}
	d.current = to
	d.t.EllipticalTo(arc.Transformed(d.m))
}

func (d *turtleDriver) ClosePath() {
	if d.current != d.start {
		d.t.LineTo(d.m.Apply(d.start))
	}
	d.current = d.start
}

func (v *visitor) path(el *svgdom.Element) error {
	data, ok := el.Attr("d")
	if !ok {
		return nil
	}
	driver := turtleDriver{t: v.turtle, m: v.topTransform()}
	if err := svgpath.ParsePath(data, &driver); err != nil {
		if errors.Is(err, svgpath.ErrNotImplemented) {
			return errors.Wrapf(err, "in element %s", nodeName(el))
		}
		Logger.Warn().Err(err).Str("element", nodeName(el)).Msg("invalid path data, truncating the path")
	}
	return nil
}

func (v *visitor) rect(el *svgdom.Element) {
	x := v.lengthAttr(el, "x", HintHorizontal, 0)
	y := v.lengthAttr(el, "y", HintVertical, 0)
	w := v.lengthAttr(el, "width", HintHorizontal, 0)
	h := v.lengthAttr(el, "height", HintVertical, 0)
	if w <= 0 || h <= 0 {
		return
	}

	rx := v.dimensionAttr(el, "rx", HintHorizontal)
	ry := v.dimensionAttr(el, "ry", HintVertical)
	// a single corner radius applies to both axes
	if rx == nil {
		rx = ry
	}
	if ry == nil {
		ry = rx
	}

	m := v.topTransform()
	if rx == nil || *rx <= 0 || *ry <= 0 {
		v.turtle.MoveTo(m.Apply(svgpath.Point{x, y}))
		v.turtle.LineTo(m.Apply(svgpath.Point{x + w, y}))
		v.turtle.LineTo(m.Apply(svgpath.Point{x + w, y + h}))
		v.turtle.LineTo(m.Apply(svgpath.Point{x, y + h}))
		v.turtle.LineTo(m.Apply(svgpath.Point{x, y}))
		return
	}

	cx := math.Min(*rx, w/2)
	cy := math.Min(*ry, h/2)
	corner := func(from, to svgpath.Point) {
		arc := svgpath.SvgArc{
			From:  from,
			To:    to,
			Radii: svgpath.Point{cx, cy},
			Sweep: true,
		}
		v.turtle.EllipticalTo(arc.Transformed(m))
	}
	v.turtle.MoveTo(m.Apply(svgpath.Point{x + cx, y}))
	v.turtle.LineTo(m.Apply(svgpath.Point{x + w - cx, y}))
	corner(svgpath.Point{x + w - cx, y}, svgpath.Point{x + w, y + cy})
	v.turtle.LineTo(m.Apply(svgpath.Point{x + w, y + h - cy}))
	corner(svgpath.Point{x + w, y + h - cy}, svgpath.Point{x + w - cx, y + h})
	v.turtle.LineTo(m.Apply(svgpath.Point{x + cx, y + h}))
	corner(svgpath.Point{x + cx, y + h}, svgpath.Point{x, y + h - cy})
	v.turtle.LineTo(m.Apply(svgpath.Point{x, y + cy}))
	corner(svgpath.Point{x, y + cy}, svgpath.Point{x + cx, y})
}

// ellipse draws circles and ellipses as two semicircular arcs, which
// keeps them exact under circular interpolation.
func (v *visitor) ellipse(el *svgdom.Element, isCircle bool) {
	cx := v.lengthAttr(el, "cx", HintHorizontal, 0)
	cy := v.lengthAttr(el, "cy", HintVertical, 0)
	var rx, ry float64
	if isCircle {
		rx = v.lengthAttr(el, "r", HintOther, 0)
		ry = rx
	} else {
		rx = v.lengthAttr(el, "rx", HintHorizontal, 0)
		ry = v.lengthAttr(el, "ry", HintVertical, 0)
	}
	if rx <= 0 || ry <= 0 {
		return
	}

	m := v.topTransform()
	east := svgpath.Point{cx + rx, cy}
	west := svgpath.Point{cx - rx, cy}
	radii := svgpath.Point{rx, ry}
	v.turtle.MoveTo(m.Apply(east))
	v.turtle.EllipticalTo(svgpath.SvgArc{From: east, To: west, Radii: radii, Sweep: true}.Transformed(m))
	v.turtle.EllipticalTo(svgpath.SvgArc{From: west, To: east, Radii: radii, Sweep: true}.Transformed(m))
}

func (v *visitor) line(el *svgdom.Element) {
	x1 := v.lengthAttr(el, "x1", HintHorizontal, 0)
	y1 := v.lengthAttr(el, "y1", HintVertical, 0)
	x2 := v.lengthAttr(el, "x2", HintHorizontal, 0)
	y2 := v.lengthAttr(el, "y2", HintVertical, 0)

	m := v.topTransform()
	v.turtle.MoveTo(m.Apply(svgpath.Point{x1, y1}))
	v.turtle.LineTo(m.Apply(svgpath.Point{x2, y2}))
}

func (v *visitor) poly(el *svgdom.Element, closed bool) {
	raw, ok := el.Attr("points")
	if !ok {
		return
	}
	nums, err := svgpath.ParseNumberList(raw)
	if err == nil && len(nums)%2 != 0 {
		err = errors.New("odd number of coordinates")
	}
	if err != nil {
		Logger.Warn().Err(err).Str("element", nodeName(el)).Msg("invalid points attribute, skipping the element")
		return
	}
	if len(nums) < 4 {
		return
	}

	m := v.topTransform()
	first := svgpath.Point{nums[0], nums[1]}
	v.turtle.MoveTo(m.Apply(first))
	for i := 2; i < len(nums); i += 2 {
		v.turtle.LineTo(m.Apply(svgpath.Point{nums[i], nums[i+1]}))
	}
	if closed {
		v.turtle.LineTo(m.Apply(first))
	}
}
