package gcode

import (
	"strings"
	"testing"
)

func TestFieldString(t *testing.T) {
	for _, test := range []struct {
		field Field
		want  string
	}{
		{F('G', 0), "G0"},
		{F('G', 90), "G90"},
		{F('X', 1.5), "X1.5"},
		{F('Y', -0.25), "Y-0.25"},
		{F('F', 300), "F300"},
	} {
		if got := test.field.String(); got != test.want {
			t.Errorf("%+v: got %q, want %q", test.field, got, test.want)
		}
	}
}

func TestParseSnippet(t *testing.T) {
	tokens, err := ParseSnippet("G90 ; absolute\nM3 S1000 (spindle on)\n\nG0 X0 Y0")
	if err != nil {
		t.Fatal(err)
	}
	var kinds []string
	for _, tok := range tokens {
		if tok.IsInstruction() {
			kinds = append(kinds, "instr")
		} else if tok.Inline {
			kinds = append(kinds, "inline")
		} else {
			kinds = append(kinds, "comment")
		}
	}
	want := []string{"instr", "comment", "instr", "inline", "instr"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Fatalf("token kinds: got %v, want %v", kinds, want)
	}
	first := tokens[0]
	if len(first.Fields) != 1 || first.Fields[0] != (Field{'G', 90}) {
		t.Errorf("first instruction: %+v", first)
	}
	spindle := tokens[2]
	if len(spindle.Fields) != 2 || spindle.Fields[1] != (Field{'S', 1000}) {
		t.Errorf("spindle instruction: %+v", spindle)
	}
	if tokens[1].Comment != "absolute" {
		t.Errorf("comment text: %q", tokens[1].Comment)
	}
	if tokens[3].Comment != "spindle on" {
		t.Errorf("inline comment text: %q", tokens[3].Comment)
	}
}

func TestParseSnippetLowercaseAndSigns(t *testing.T) {
	tokens, err := ParseSnippet("g1 x-1.5 y+2")
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 1 {
		t.Fatalf("got %d tokens", len(tokens))
	}
	fields := tokens[0].Fields
	if fields[0] != (Field{'G', 1}) || fields[1] != (Field{'X', -1.5}) || fields[2] != (Field{'Y', 2}) {
		t.Errorf("fields: %+v", fields)
	}
}

func TestParseSnippetErrors(t *testing.T) {
	if _, err := ParseSnippet("G1 X"); err == nil {
		t.Error("expected an error for a letter without a number")
	}
	if _, err := ParseSnippet("(unclosed"); err == nil {
		t.Error("expected an error for an unclosed comment")
	}
	if _, err := ParseSnippet("G1 #5"); err == nil {
		t.Error("expected an error for an unexpected character")
	}
}

func TestFormatPlain(t *testing.T) {
	tokens := []Token{
		Comment("header"),
		Instr(F('G', 21)),
		Instr(F('G', 0), F('X', 1.5), F('Y', 2)),
		InlineComment("rapid"),
		Comment(""),
		Instr(F('M', 2)),
	}
	var sb strings.Builder
	if err := Format(&sb, tokens, FormatOptions{}); err != nil {
		t.Fatal(err)
	}
	want := ";header\nG21\nG0 X1.5 Y2 (rapid)\n\nM2\n"
	if sb.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", sb.String(), want)
	}
}

func TestFormatNewlineBeforeComment(t *testing.T) {
	tokens := []Token{
		Instr(F('G', 0), F('X', 1)),
		InlineComment("note"),
	}
	var sb strings.Builder
	if err := Format(&sb, tokens, FormatOptions{NewlineBeforeComment: true}); err != nil {
		t.Fatal(err)
	}
	want := "G0 X1\n(note)\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestFormatLineNumbersAndChecksums(t *testing.T) {
	tokens := []Token{
		Instr(F('T', 0)),
		Instr(F('G', 92), F('E', 0)),
	}
	var sb strings.Builder
	if err := Format(&sb, tokens, FormatOptions{Checksums: true}); err != nil {
		t.Fatal(err)
	}
	// XOR of every character before the asterisk
	want := "N1 T0*59\nN2 G92 E0*69\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}
