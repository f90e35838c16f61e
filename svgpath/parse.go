package svgpath

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// PathDriver receives the commands of a path as they are parsed.
// Coordinates have been made absolute, relative commands and the
// shorthand reflections are resolved by the parser.
type PathDriver interface {
	MoveTo(p Point)
	LineTo(p Point)
	CubicTo(ctrl1, ctrl2, to Point)
	QuadTo(ctrl, to Point)
	// ArcTo receives the endpoint form of an elliptical arc, with
	// xRotation in radians.
	ArcTo(radii Point, xRotation float64, largeArc, sweep bool, to Point)
	ClosePath()
}

// ErrNotImplemented tags path commands outside the supported set.
// Dropping such a command silently would emit an incomplete toolpath,
// so callers must treat it as fatal.
var ErrNotImplemented = errors.New("not implemented")

// ParsePath walks an SVG path data attribute and feeds its commands
// to the driver. An unknown command letter is a fatal error.
func ParsePath(d string, driver PathDriver) error {
	p := pathParser{data: d, driver: driver}
	for p.hasMore() {
		if err := p.readCommand(); err != nil {
			return err
		}
	}
	return nil
}

// ParseNumberList reads the numbers of a comma or space separated
// list, as found in viewBox, points and transform attributes.
func ParseNumberList(s string) ([]float64, error) {
	p := pathParser{data: s}
	var out []float64
	for p.hasMore() {
		v, err := p.readNumber()
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

type pathParser struct {
	data string
	pos  int

	driver PathDriver

	current  Point
	start    Point // start of the current subpath
	lastCtrl Point // reflected by the S and T shorthands
	lastCmd  byte
}

func (p *pathParser) skipSeparators() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r', ',':
			p.pos++
		default:
			return
		}
	}
}

func (p *pathParser) hasMore() bool {
	p.skipSeparators()
	return p.pos < len(p.data)
}

func (p *pathParser) peekIsNumber() bool {
	if !p.hasMore() {
		return false
	}
	c := p.data[p.pos]
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func (p *pathParser) readNumber() (float64, error) {
	p.skipSeparators()
	start := p.pos
	n := len(p.data)
	digits := func() {
		for p.pos < n && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
			p.pos++
		}
	}
	if p.pos < n && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
		p.pos++
	}
	digits()
	if p.pos < n && p.data[p.pos] == '.' {
		p.pos++
		digits()
	}
	if p.pos < n && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		p.pos++
		if p.pos < n && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		digits()
	}
	if p.pos == start {
		return 0, errors.Errorf("invalid number at position %d in %q", start, p.data)
	}
	return strconv.ParseFloat(p.data[start:p.pos], 64)
}

// readFlag reads an arc flag, which may be glued to the next number
// without a separator.
func (p *pathParser) readFlag() (bool, error) {
	p.skipSeparators()
	if p.pos < len(p.data) {
		switch p.data[p.pos] {
		case '0':
			p.pos++
			return false, nil
		case '1':
			p.pos++
			return true, nil
		}
	}
	return false, errors.Errorf("invalid arc flag at position %d in %q", p.pos, p.data)
}

func (p *pathParser) readPoint() (Point, error) {
	x, err := p.readNumber()
	if err != nil {
		return Point{}, err
	}
	y, err := p.readNumber()
	if err != nil {
		return Point{}, err
	}
	return Point{x, y}, nil
}

func (p *pathParser) readCommand() error {
	cmd := p.data[p.pos]
	p.pos++
	relative := cmd >= 'a'
	// one pass per argument group, commands repeat implicitly
	for first := true; first || p.peekIsNumber(); first = false {
		if err := p.readArguments(cmd, relative); err != nil {
			return err
		}
		p.lastCmd = cmd
		// an implicit repeat of a moveto is a lineto
		if cmd == 'M' {
			cmd = 'L'
		} else if cmd == 'm' {
			cmd = 'l'
		}
	}
	return nil
}

func (p *pathParser) abs(pt Point, relative bool) Point {
	if relative {
		return p.current.Add(pt)
	}
	return pt
}

func (p *pathParser) readArguments(cmd byte, relative bool) error {
	switch cmd {
	case 'M', 'm':
		to, err := p.readPoint()
		if err != nil {
			return err
		}
		p.current = p.abs(to, relative)
		p.start = p.current
		p.driver.MoveTo(p.current)
	case 'L', 'l':
		to, err := p.readPoint()
		if err != nil {
			return err
		}
		p.current = p.abs(to, relative)
		p.driver.LineTo(p.current)
	case 'H', 'h':
		x, err := p.readNumber()
		if err != nil {
			return err
		}
		if relative {
			x += p.current[0]
		}
		p.current[0] = x
		p.driver.LineTo(p.current)
	case 'V', 'v':
		y, err := p.readNumber()
		if err != nil {
			return err
		}
		if relative {
			y += p.current[1]
		}
		p.current[1] = y
		p.driver.LineTo(p.current)
	case 'C', 'c':
		ctrl1, err := p.readPoint()
		if err != nil {
			return err
		}
		ctrl2, err := p.readPoint()
		if err != nil {
			return err
		}
		to, err := p.readPoint()
		if err != nil {
			return err
		}
		ctrl1 = p.abs(ctrl1, relative)
		ctrl2 = p.abs(ctrl2, relative)
		p.current = p.abs(to, relative)
		p.lastCtrl = ctrl2
		p.driver.CubicTo(ctrl1, ctrl2, p.current)
	case 'S', 's':
		ctrl2, err := p.readPoint()
		if err != nil {
			return err
		}
		to, err := p.readPoint()
		if err != nil {
			return err
		}
		ctrl1 := p.reflection('C', 'c', 'S', 's')
		ctrl2 = p.abs(ctrl2, relative)
		p.current = p.abs(to, relative)
		p.lastCtrl = ctrl2
		p.driver.CubicTo(ctrl1, ctrl2, p.current)
	case 'Q', 'q':
		ctrl, err := p.readPoint()
		if err != nil {
			return err
		}
		to, err := p.readPoint()
		if err != nil {
			return err
		}
		ctrl = p.abs(ctrl, relative)
		p.current = p.abs(to, relative)
		p.lastCtrl = ctrl
		p.driver.QuadTo(ctrl, p.current)
	case 'T', 't':
		to, err := p.readPoint()
		if err != nil {
			return err
		}
		ctrl := p.reflection('Q', 'q', 'T', 't')
		p.current = p.abs(to, relative)
		p.lastCtrl = ctrl
		p.driver.QuadTo(ctrl, p.current)
	case 'A', 'a':
		radii, err := p.readPoint()
		if err != nil {
			return err
		}
		xRotation, err := p.readNumber()
		if err != nil {
			return err
		}
		largeArc, err := p.readFlag()
		if err != nil {
			return err
		}
		sweep, err := p.readFlag()
		if err != nil {
			return err
		}
		to, err := p.readPoint()
		if err != nil {
			return err
		}
		p.current = p.abs(to, relative)
		p.driver.ArcTo(radii, xRotation*deg2rad, largeArc, sweep, p.current)
	case 'Z', 'z':
		p.driver.ClosePath()
		p.current = p.start
		// a close command takes no arguments, a trailing number
		// would otherwise repeat it forever
		if p.peekIsNumber() {
			return errors.Errorf("unexpected number after close command at position %d in %q", p.pos, p.data)
		}
	default:
		return errors.Wrapf(ErrNotImplemented, "path command %q", string(cmd))
	}
	return nil
}

// reflection resolves the control point of the S and T shorthands:
// the mirror of the previous control point, or the current point when
// the previous command was of another kind.
func (p *pathParser) reflection(cmds ...byte) Point {
	for _, c := range cmds {
		if p.lastCmd == c {
			return p.current.Scale(2).Sub(p.lastCtrl)
		}
	}
	return p.current
}

const deg2rad = math.Pi / 180
