package svgpath

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Unit is the unit suffix of an SVG length.
type Unit uint8

const (
	None Unit = iota // bare number, a user unit
	Em
	Ex
	Px
	In
	Cm
	Mm
	Pt
	Pc
	Percent
)

var unitNames = [...]string{None: "", Em: "em", Ex: "ex", Px: "px",
	In: "in", Cm: "cm", Mm: "mm", Pt: "pt", Pc: "pc", Percent: "%"}

func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return "<invalid unit>"
}

// Length is an SVG length: a number with an optional unit.
type Length struct {
	Value float64
	Unit  Unit
}

// suffixes are ordered so that the longest match wins
var unitSuffixes = []struct {
	suffix string
	unit   Unit
}{
	{"em", Em}, {"ex", Ex}, {"px", Px}, {"in", In},
	{"cm", Cm}, {"mm", Mm}, {"pt", Pt}, {"pc", Pc}, {"%", Percent},
}

// ParseLength reads a length as found in width, height and similar
// attributes.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	unit := None
	for _, su := range unitSuffixes {
		if strings.HasSuffix(s, su.suffix) {
			unit = su.unit
			s = strings.TrimSuffix(s, su.suffix)
			break
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Length{}, errors.Wrapf(err, "invalid length %q", s)
	}
	return Length{Value: v, Unit: unit}, nil
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}
