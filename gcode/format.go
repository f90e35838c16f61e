package gcode

import (
	"bufio"
	"io"
	"strconv"
)

// FormatOptions controls the textual rendering of a program.
type FormatOptions struct {
	// Checksums appends a RepRap XOR checksum to every instruction
	// line, implying line numbers.
	Checksums bool
	// LineNumbers prefixes instruction lines with N words.
	LineNumbers bool
	// NewlineBeforeComment places inline comments on their own line
	// instead of at the end of the preceding instruction.
	NewlineBeforeComment bool
}

// Format renders the program to w, one instruction per line.
func Format(w io.Writer, tokens []Token, opts FormatOptions) error {
	bw := bufio.NewWriter(w)
	f := formatter{w: bw, opts: opts}
	for _, t := range tokens {
		f.token(t)
	}
	f.flushLine()
	if f.err != nil {
		return f.err
	}
	return bw.Flush()
}

type formatter struct {
	w    *bufio.Writer
	opts FormatOptions

	line    []byte // pending instruction line
	lineNum int
	err     error
}

func (f *formatter) token(t Token) {
	switch {
	case t.IsInstruction():
		f.flushLine()
		if f.opts.Checksums || f.opts.LineNumbers {
			f.lineNum++
			f.line = append(f.line, 'N')
			f.line = strconv.AppendInt(f.line, int64(f.lineNum), 10)
		}
		for _, field := range t.Fields {
			if len(f.line) > 0 {
				f.line = append(f.line, ' ')
			}
			f.line = append(f.line, field.String()...)
		}
	case t.Inline:
		if len(f.line) > 0 && !f.opts.NewlineBeforeComment {
			f.line = append(f.line, " ("...)
			f.line = append(f.line, t.Comment...)
			f.line = append(f.line, ')')
		} else {
			f.flushLine()
			f.writeString("(" + t.Comment + ")\n")
		}
	default:
		f.flushLine()
		if t.Comment == "" {
			// blank separator line
			f.writeString("\n")
		} else {
			f.writeString(";" + t.Comment + "\n")
		}
	}
}

// flushLine terminates the pending instruction line, appending the
// checksum of its content when requested.
func (f *formatter) flushLine() {
	if len(f.line) == 0 {
		return
	}
	if f.opts.Checksums {
		var sum byte
		for _, c := range f.line {
			sum ^= c
		}
		f.line = append(f.line, '*')
		f.line = strconv.AppendInt(f.line, int64(sum), 10)
	}
	f.line = append(f.line, '\n')
	if f.err == nil {
		_, f.err = f.w.Write(f.line)
	}
	f.line = f.line[:0]
}

func (f *formatter) writeString(s string) {
	if f.err == nil {
		_, f.err = f.w.WriteString(s)
	}
}
