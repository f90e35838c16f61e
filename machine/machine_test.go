package machine

import (
	"testing"

	"github.com/benoitkugler/svg2gcode/gcode"
)

func TestNewParsesSequences(t *testing.T) {
	m, err := New(SupportedFunctionality{CircularInterpolation: true}, Sequences{
		ToolOn:  "M3 S1000",
		ToolOff: "M5",
		End:     "G0 X0 Y0\nM2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.ToolOn(); len(got) != 1 || got[0].Fields[0] != (gcode.Field{Letter: 'M', Value: 3}) {
		t.Errorf("tool on sequence: %+v", got)
	}
	if got := m.EndSequence(); len(got) != 2 {
		t.Errorf("end sequence: %+v", got)
	}
	if got := m.BeginSequence(); got != nil {
		t.Errorf("empty sequence should yield nothing, got %+v", got)
	}
}

func TestNewRejectsBadSnippet(t *testing.T) {
	_, err := New(SupportedFunctionality{}, Sequences{ToolOn: "M3 X"})
	if err == nil {
		t.Fatal("expected an error for an invalid sequence")
	}
}

func TestDistanceModeDeduplication(t *testing.T) {
	m, err := New(SupportedFunctionality{}, Sequences{})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Absolute(); len(got) != 1 {
		t.Fatalf("first switch must emit G90, got %+v", got)
	}
	if got := m.Absolute(); got != nil {
		t.Errorf("second switch must be silent, got %+v", got)
	}
	if got := m.Incremental(); len(got) != 1 || got[0].Fields[0].Value != 91 {
		t.Fatalf("switch to incremental: %+v", got)
	}
	if got := m.Absolute(); len(got) != 1 {
		t.Errorf("switch back to absolute must emit G90 again, got %+v", got)
	}
}

func TestSequencesUpdateDistanceMode(t *testing.T) {
	m, err := New(SupportedFunctionality{}, Sequences{Begin: "G90"})
	if err != nil {
		t.Fatal(err)
	}
	m.BeginSequence()
	if got := m.Absolute(); got != nil {
		t.Errorf("the begin sequence already switched to absolute, got %+v", got)
	}
}
