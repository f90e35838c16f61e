// Command svg2gcode converts SVG vector drawings into G-code
// programs for pen plotters, laser cutters and CNC routers.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/benoitkugler/svg2gcode/converter"
	"github.com/benoitkugler/svg2gcode/gcode"
	"github.com/benoitkugler/svg2gcode/svgdom"
)

// flagToSetting maps simple command line flags onto the flat
// settings keys. Flags not listed here need dedicated handling.
var flagToSetting = map[string]string{
	"tolerance":              "tolerance",
	"feedrate":               "feedrate",
	"dpi":                    "dpi",
	"min-arc-radius":         "min_arc_radius",
	"extra-attribute-name":   "extra_attribute_name",
	"circular-interpolation": "circular_interpolation",
	"on":                     "tool_on_sequence",
	"off":                    "tool_off_sequence",
	"begin":                  "begin_sequence",
	"end":                    "end_sequence",
	"between-layers":         "between_layers_sequence",
	"checksums":              "checksums",
	"line-numbers":           "line_numbers",
	"newline-before-comment": "newline_before_comment",
	"halign":                 "h_align",
	"valign":                 "v_align",
	"trim":                   "trim",
}

func main() {
	settingsPath := flag.String("settings", "", "JSON settings file, overridden by explicit flags")
	output := flag.String("out", "", "output file (default standard output)")
	origin := flag.String("origin", "", "origin of the drawing as X,Y in millimeters")
	dimensions := flag.String("dimensions", "", "target size as WIDTH,HEIGHT, either side optional (e.g. 100mm,50mm or 20cm,)")

	flag.Float64("tolerance", converter.DefaultTolerance, "maximum curve approximation error in millimeters")
	flag.Float64("feedrate", converter.DefaultFeedrate, "tool feedrate in millimeters per minute")
	flag.Float64("dpi", converter.DefaultDpi, "user units per inch")
	flag.Float64("min-arc-radius", 0, "smallest radius emitted as a G2/G3 move")
	flag.String("extra-attribute-name", "", "attribute echoed into comments when present")
	flag.Bool("circular-interpolation", false, "emit G2/G3 arcs instead of line approximations")
	flag.String("on", "", "G-code sequence turning the tool on")
	flag.String("off", "", "G-code sequence turning the tool off")
	flag.String("begin", "", "G-code sequence starting the program")
	flag.String("end", "", "G-code sequence ending the program")
	flag.String("between-layers", "", "G-code sequence run between top level layers")
	flag.Bool("checksums", false, "append RepRap checksums to every line")
	flag.Bool("line-numbers", false, "prefix lines with N numbers")
	flag.Bool("newline-before-comment", false, "place inline comments on their own line")
	flag.String("halign", "", "horizontal alignment: left, center or right")
	flag.String("valign", "", "vertical alignment: top, center or bottom")
	flag.Bool("trim", false, "scale the tight content box into the target dimensions")
	flag.Parse()

	converter.Logger = converter.Logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(*settingsPath, *output, *origin, *dimensions, flag.Args()); err != nil {
		converter.Logger.Error().Err(err).Msg("conversion failed")
		os.Exit(1)
	}
}

func run(settingsPath, output, origin, dimensions string, args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one input file ('-' for standard input)")
	}

	raw := map[string]interface{}{}
	if settingsPath != "" {
		content, err := os.ReadFile(settingsPath)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(content, &raw); err != nil {
			return errors.Wrap(err, "invalid settings file")
		}
	}
	flag.Visit(func(f *flag.Flag) {
		if key, ok := flagToSetting[f.Name]; ok {
			raw[key] = f.Value.String()
		}
	})
	if origin != "" {
		x, y, err := splitPair(origin, ",")
		if err != nil {
			return errors.Wrap(err, "invalid origin")
		}
		raw["origin_x"], raw["origin_y"] = x, y
	}
	if dimensions != "" {
		w, h, err := splitPair(dimensions, ",")
		if err != nil {
			return errors.Wrap(err, "invalid dimensions")
		}
		if w != "" {
			raw["override_width"] = w
		}
		if h != "" {
			raw["override_height"] = h
		}
	}

	settings, err := converter.DecodeSettings(raw)
	if err != nil {
		return err
	}
	if err := settings.TryUpgrade(); err != nil {
		return err
	}
	mach, err := settings.Machine.Build()
	if err != nil {
		return err
	}

	var doc *svgdom.Document
	if args[0] == "-" {
		doc, err = svgdom.Parse(os.Stdin)
	} else {
		doc, err = svgdom.ParseFile(args[0])
	}
	if err != nil {
		return err
	}

	program, err := converter.Convert(doc, settings.Conversion, settings.Options, mach)
	if err != nil {
		return err
	}

	out := os.Stdout
	if output != "" {
		out, err = os.Create(output)
		if err != nil {
			return err
		}
		defer out.Close()
	}
	return gcode.Format(out, program, gcode.FormatOptions{
		Checksums:            settings.Postprocess.Checksums,
		LineNumbers:          settings.Postprocess.LineNumbers,
		NewlineBeforeComment: settings.Postprocess.NewlineBeforeComment,
	})
}

// splitPair cuts "a<sep>b" allowing either side to be empty.
func splitPair(s, sep string) (string, string, error) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected two values separated by %q, got %q", sep, s)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
