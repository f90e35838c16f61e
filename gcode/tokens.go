// Package gcode models G-code programs as token sequences and
// renders them to text, with optional RepRap-style line numbers and
// checksums.
package gcode

import "strconv"

// Field is a single G-code word: a letter followed by a number.
type Field struct {
	Letter byte
	Value  float64
}

func (f Field) String() string {
	return string(f.Letter) + strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// Token is one element of a program: an instruction line or a
// comment. A token with fields is an instruction and renders as one
// line of output. An empty non-inline comment renders as a blank
// separator line.
type Token struct {
	Fields  []Field
	Comment string
	// Inline comments are written in parentheses at the end of the
	// preceding instruction line.
	Inline bool
}

// IsInstruction reports whether the token carries fields.
func (t Token) IsInstruction() bool { return len(t.Fields) > 0 }

// Instr builds an instruction token.
func Instr(fields ...Field) Token { return Token{Fields: fields} }

// Comment builds a whole-line comment token.
func Comment(text string) Token { return Token{Comment: text} }

// InlineComment builds a parenthesized comment token.
func InlineComment(text string) Token { return Token{Comment: text, Inline: true} }

// F builds a field.
func F(letter byte, value float64) Field { return Field{Letter: letter, Value: value} }
