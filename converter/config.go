// Package converter drives the SVG to G-code pipeline: configuration,
// unit resolution, document traversal and the alignment of the output
// on the machine bed.
package converter

import (
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/benoitkugler/svg2gcode/machine"
	"github.com/benoitkugler/svg2gcode/svgpath"
)

// Logger receives the warning level events of a conversion: values
// that could not be parsed and were replaced by defaults, skipped
// elements, percentages without a viewport.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

const (
	DefaultTolerance = 0.002 // mm
	DefaultFeedrate  = 300   // mm/min
	DefaultDpi       = 96    // user units per inch
)

// ConversionConfig holds the numeric knobs of a conversion.
type ConversionConfig struct {
	// Tolerance is the maximum deviation, in millimeters, between
	// the source curves and the emitted arcs and lines.
	Tolerance float64
	Feedrate  float64
	Dpi       float64
	// Origin holds optional per axis offsets, in millimeters, where
	// the minimum of the drawn geometry is placed.
	Origin [2]*float64
	// MinArcRadius floors the radius of emitted circular moves;
	// nil selects Tolerance * 0.05.
	MinArcRadius *float64
	// ExtraAttributeName is echoed into traversal comments when the
	// attribute is present on an element.
	ExtraAttributeName string

	// DetectPolygonArcs re-detects circular arcs across polyline
	// runs.
	DetectPolygonArcs   bool
	MinPolygonArcPoints int
	// PolygonArcTolerance defaults to Tolerance when nil.
	PolygonArcTolerance *float64
}

// DefaultConfig returns the documented defaults, with the origin
// pinned to (0, 0).
func DefaultConfig() ConversionConfig {
	ox, oy := 0.0, 0.0
	return ConversionConfig{
		Tolerance:           DefaultTolerance,
		Feedrate:            DefaultFeedrate,
		Dpi:                 DefaultDpi,
		Origin:              [2]*float64{&ox, &oy},
		MinPolygonArcPoints: 5,
	}
}

// Validate rejects configurations the pipeline cannot honor.
func (c *ConversionConfig) Validate() error {
	if !(c.Tolerance > 0) {
		return errors.Errorf("tolerance must be positive, got %v", c.Tolerance)
	}
	if !(c.Dpi > 0) {
		return errors.Errorf("dpi must be positive, got %v", c.Dpi)
	}
	return nil
}

func (c *ConversionConfig) minArcRadius() float64 {
	if c.MinArcRadius != nil {
		return *c.MinArcRadius
	}
	return c.Tolerance * 0.05
}

func (c *ConversionConfig) polygonArcTolerance() float64 {
	if c.PolygonArcTolerance != nil {
		return *c.PolygonArcTolerance
	}
	return c.Tolerance
}

// mmPerUserUnit is the size of one user unit in millimeters.
func (c *ConversionConfig) mmPerUserUnit() float64 { return 25.4 / c.Dpi }

// HAlign places the output horizontally inside its container.
type HAlign uint8

const (
	AlignLeft HAlign = iota
	AlignCenterX
	AlignRight
)

// VAlign places the output vertically. The zero value is Top, the
// visual top of the container after the coordinate flip.
type VAlign uint8

const (
	AlignTop VAlign = iota
	AlignCenterY
	AlignBottom
)

// ParseHAlign reads the textual form used by the flat configuration.
func ParseHAlign(s string) (HAlign, error) {
	switch strings.ToLower(s) {
	case "left":
		return AlignLeft, nil
	case "center":
		return AlignCenterX, nil
	case "right":
		return AlignRight, nil
	}
	return 0, errors.Errorf("invalid horizontal alignment %q", s)
}

// ParseVAlign is the vertical counterpart of ParseHAlign.
func ParseVAlign(s string) (VAlign, error) {
	switch strings.ToLower(s) {
	case "top":
		return AlignTop, nil
	case "center":
		return AlignCenterY, nil
	case "bottom":
		return AlignBottom, nil
	}
	return 0, errors.Errorf("invalid vertical alignment %q", s)
}

// ConversionOptions selects the output placement: optional target
// dimensions, alignment and trim (scale to fit).
type ConversionOptions struct {
	// Dimensions holds the optional target width and height.
	Dimensions [2]*svgpath.Length
	HAlign     HAlign
	VAlign     VAlign
	// Trim scales the tight content box uniformly into the target
	// dimensions.
	Trim bool
}

func (o *ConversionOptions) alignmentRequested() bool {
	return o.Trim || o.Dimensions[0] != nil || o.Dimensions[1] != nil
}

// MachineConfig is the serializable description of the target
// machine.
type MachineConfig struct {
	CircularInterpolation bool
	ToolOnSequence        string
	ToolOffSequence       string
	BeginSequence         string
	EndSequence           string
	BetweenLayersSequence string
}

// Build parses the sequences into a machine, failing on malformed
// snippets before any geometry is processed.
func (mc *MachineConfig) Build() (*machine.Machine, error) {
	return machine.New(
		machine.SupportedFunctionality{CircularInterpolation: mc.CircularInterpolation},
		machine.Sequences{
			ToolOn:        mc.ToolOnSequence,
			ToolOff:       mc.ToolOffSequence,
			Begin:         mc.BeginSequence,
			End:           mc.EndSequence,
			BetweenLayers: mc.BetweenLayersSequence,
		})
}

// PostprocessConfig maps onto gcode.FormatOptions.
type PostprocessConfig struct {
	Checksums            bool
	LineNumbers          bool
	NewlineBeforeComment bool
}

// SettingsVersion is the current settings schema version.
const SettingsVersion = 5

// Settings bundles everything a conversion needs, in the shape the
// flat configuration surface decodes into.
type Settings struct {
	Conversion  ConversionConfig
	Options     ConversionOptions
	Machine     MachineConfig
	Postprocess PostprocessConfig
	Version     int
}

// DefaultSettings returns current-version settings with default
// conversion values.
func DefaultSettings() Settings {
	return Settings{Conversion: DefaultConfig(), Version: SettingsVersion}
}

// TryUpgrade migrates settings written by older releases to the
// current schema. Settings from a newer release are rejected.
func (s *Settings) TryUpgrade() error {
	if s.Version > SettingsVersion {
		return errors.Errorf("settings version %d is newer than the supported %d",
			s.Version, SettingsVersion)
	}
	if s.Version < 1 {
		// programs used to end implicitly; the end sequence now
		// carries the M2
		s.Machine.EndSequence = strings.TrimSpace(s.Machine.EndSequence + " M2")
	}
	s.Version = SettingsVersion
	return nil
}

// flatSettings mirrors the flat key set of the external
// configuration surface. Pointer fields distinguish absent keys from
// zero values.
type flatSettings struct {
	Version               *int     `mapstructure:"version"`
	Tolerance             *float64 `mapstructure:"tolerance"`
	Feedrate              *float64 `mapstructure:"feedrate"`
	Dpi                   *float64 `mapstructure:"dpi"`
	OriginX               *float64 `mapstructure:"origin_x"`
	OriginY               *float64 `mapstructure:"origin_y"`
	MinArcRadius          *float64 `mapstructure:"min_arc_radius"`
	ExtraAttributeName    *string  `mapstructure:"extra_attribute_name"`
	CircularInterpolation *bool    `mapstructure:"circular_interpolation"`
	ToolOnSequence        *string  `mapstructure:"tool_on_sequence"`
	ToolOffSequence       *string  `mapstructure:"tool_off_sequence"`
	BeginSequence         *string  `mapstructure:"begin_sequence"`
	EndSequence           *string  `mapstructure:"end_sequence"`
	BetweenLayersSequence *string  `mapstructure:"between_layers_sequence"`
	Checksums             *bool    `mapstructure:"checksums"`
	LineNumbers           *bool    `mapstructure:"line_numbers"`
	NewlineBeforeComment  *bool    `mapstructure:"newline_before_comment"`
	OverrideWidth         *string  `mapstructure:"override_width"`
	OverrideHeight        *string  `mapstructure:"override_height"`
	HAlign                *string  `mapstructure:"h_align"`
	VAlign                *string  `mapstructure:"v_align"`
	Trim                  *bool    `mapstructure:"trim"`
}

// DecodeSettings reads the flat key set of §6 from an already
// unmarshalled map (JSON, TOML, flag values). Unparseable override
// dimensions and alignments are fatal.
func DecodeSettings(raw map[string]interface{}) (Settings, error) {
	var flat flatSettings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &flat,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Settings{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Settings{}, errors.Wrap(err, "invalid settings")
	}

	s := DefaultSettings()
	if flat.Version != nil {
		s.Version = *flat.Version
	}
	if flat.Tolerance != nil {
		s.Conversion.Tolerance = *flat.Tolerance
	}
	if flat.Feedrate != nil {
		s.Conversion.Feedrate = *flat.Feedrate
	}
	if flat.Dpi != nil {
		s.Conversion.Dpi = *flat.Dpi
	}
	if flat.OriginX != nil {
		s.Conversion.Origin[0] = flat.OriginX
	}
	if flat.OriginY != nil {
		s.Conversion.Origin[1] = flat.OriginY
	}
	if flat.MinArcRadius != nil {
		s.Conversion.MinArcRadius = flat.MinArcRadius
	}
	if flat.ExtraAttributeName != nil {
		s.Conversion.ExtraAttributeName = *flat.ExtraAttributeName
	}
	if flat.CircularInterpolation != nil {
		s.Machine.CircularInterpolation = *flat.CircularInterpolation
	}
	if flat.ToolOnSequence != nil {
		s.Machine.ToolOnSequence = *flat.ToolOnSequence
	}
	if flat.ToolOffSequence != nil {
		s.Machine.ToolOffSequence = *flat.ToolOffSequence
	}
	if flat.BeginSequence != nil {
		s.Machine.BeginSequence = *flat.BeginSequence
	}
	if flat.EndSequence != nil {
		s.Machine.EndSequence = *flat.EndSequence
	}
	if flat.BetweenLayersSequence != nil {
		s.Machine.BetweenLayersSequence = *flat.BetweenLayersSequence
	}
	if flat.Checksums != nil {
		s.Postprocess.Checksums = *flat.Checksums
	}
	if flat.LineNumbers != nil {
		s.Postprocess.LineNumbers = *flat.LineNumbers
	}
	if flat.NewlineBeforeComment != nil {
		s.Postprocess.NewlineBeforeComment = *flat.NewlineBeforeComment
	}
	if flat.OverrideWidth != nil {
		l, err := svgpath.ParseLength(*flat.OverrideWidth)
		if err != nil {
			return Settings{}, errors.Wrap(err, "override_width")
		}
		s.Options.Dimensions[0] = &l
	}
	if flat.OverrideHeight != nil {
		l, err := svgpath.ParseLength(*flat.OverrideHeight)
		if err != nil {
			return Settings{}, errors.Wrap(err, "override_height")
		}
		s.Options.Dimensions[1] = &l
	}
	if flat.HAlign != nil {
		if s.Options.HAlign, err = ParseHAlign(*flat.HAlign); err != nil {
			return Settings{}, err
		}
	}
	if flat.VAlign != nil {
		if s.Options.VAlign, err = ParseVAlign(*flat.VAlign); err != nil {
			return Settings{}, err
		}
	}
	if flat.Trim != nil {
		s.Options.Trim = *flat.Trim
	}
	return s, nil
}
