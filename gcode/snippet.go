package gcode

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseSnippet reads a fragment of G-code, as found in user supplied
// tool-on, tool-off and begin or end sequences. Each line of words
// becomes one instruction token; semicolon and parenthesized comments
// are kept as comment tokens.
func ParseSnippet(src string) ([]Token, error) {
	var tokens []Token
	for lineno, line := range strings.Split(src, "\n") {
		var fields []Field
		var comments []Token
		i := 0
		for i < len(line) {
			c := line[i]
			switch {
			case c == ' ' || c == '\t' || c == '\r':
				i++
			case c == ';':
				comments = append(comments, Comment(strings.TrimSpace(line[i+1:])))
				i = len(line)
			case c == '(':
				end := strings.IndexByte(line[i:], ')')
				if end < 0 {
					return nil, errors.Errorf("line %d: unclosed comment", lineno+1)
				}
				comments = append(comments, InlineComment(line[i+1:i+end]))
				i += end + 1
			case isLetter(c):
				value, next, err := scanNumber(line, i+1)
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", lineno+1)
				}
				fields = append(fields, Field{Letter: upper(c), Value: value})
				i = next
			default:
				return nil, errors.Errorf("line %d: unexpected character %q", lineno+1, string(c))
			}
		}
		if len(fields) > 0 {
			tokens = append(tokens, Token{Fields: fields})
		}
		tokens = append(tokens, comments...)
	}
	return tokens, nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func scanNumber(s string, start int) (float64, int, error) {
	i := start
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	if i == start {
		return 0, 0, errors.Errorf("missing number at column %d", start)
	}
	v, err := strconv.ParseFloat(s[start:i], 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid number at column %d", start)
	}
	return v, i, nil
}
