// Package machine describes the capabilities and the custom G-code
// sequences of the target machine.
package machine

import (
	"github.com/pkg/errors"

	"github.com/benoitkugler/svg2gcode/gcode"
)

// SupportedFunctionality lists the G-code features the machine
// understands.
type SupportedFunctionality struct {
	// CircularInterpolation enables G2 and G3 moves. Machines
	// without it receive line segment approximations instead.
	CircularInterpolation bool
}

type distanceMode uint8

const (
	modeUnknown distanceMode = iota
	modeAbsolute
	modeIncremental
)

// Machine holds the user supplied sequences, parsed once at
// construction, and tracks the distance mode so that redundant G90
// and G91 words are not emitted.
type Machine struct {
	Functionality SupportedFunctionality

	toolOn, toolOff []gcode.Token
	begin, end      []gcode.Token
	betweenLayers   []gcode.Token
	mode            distanceMode
}

// Sequences bundles the raw G-code snippets of a machine.
type Sequences struct {
	ToolOn        string
	ToolOff       string
	Begin         string
	End           string
	BetweenLayers string
}

// New parses the sequences and builds the machine. A snippet that
// does not parse is a fatal setup error.
func New(f SupportedFunctionality, seqs Sequences) (*Machine, error) {
	m := &Machine{Functionality: f}
	for _, s := range []struct {
		name string
		src  string
		dst  *[]gcode.Token
	}{
		{"tool_on", seqs.ToolOn, &m.toolOn},
		{"tool_off", seqs.ToolOff, &m.toolOff},
		{"begin", seqs.Begin, &m.begin},
		{"end", seqs.End, &m.end},
		{"between_layers", seqs.BetweenLayers, &m.betweenLayers},
	} {
		if s.src == "" {
			continue
		}
		tokens, err := gcode.ParseSnippet(s.src)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s sequence", s.name)
		}
		*s.dst = tokens
	}
	return m, nil
}

// ToolOn returns the tool-on sequence.
func (m *Machine) ToolOn() []gcode.Token { return m.sequence(m.toolOn) }

// ToolOff returns the tool-off sequence.
func (m *Machine) ToolOff() []gcode.Token { return m.sequence(m.toolOff) }

// BeginSequence returns the program begin sequence.
func (m *Machine) BeginSequence() []gcode.Token { return m.sequence(m.begin) }

// EndSequence returns the program end sequence.
func (m *Machine) EndSequence() []gcode.Token { return m.sequence(m.end) }

// BetweenLayers returns the sequence inserted between input layers.
func (m *Machine) BetweenLayers() []gcode.Token { return m.sequence(m.betweenLayers) }

// Absolute returns the words switching to absolute distance mode, or
// nothing when the machine is already in it.
func (m *Machine) Absolute() []gcode.Token {
	if m.mode == modeAbsolute {
		return nil
	}
	m.mode = modeAbsolute
	return []gcode.Token{gcode.Instr(gcode.F('G', 90))}
}

// Incremental is the counterpart of Absolute for G91.
func (m *Machine) Incremental() []gcode.Token {
	if m.mode == modeIncremental {
		return nil
	}
	m.mode = modeIncremental
	return []gcode.Token{gcode.Instr(gcode.F('G', 91))}
}

// sequence returns a user sequence, keeping the tracked distance
// mode in sync with any G90 or G91 it contains.
func (m *Machine) sequence(tokens []gcode.Token) []gcode.Token {
	for _, t := range tokens {
		for _, f := range t.Fields {
			if f.Letter != 'G' {
				continue
			}
			switch f.Value {
			case 90:
				m.mode = modeAbsolute
			case 91:
				m.mode = modeIncremental
			}
		}
	}
	return tokens
}
