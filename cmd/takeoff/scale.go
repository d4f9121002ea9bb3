package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"plan-takeoff/internal/app"
	"plan-takeoff/internal/calibrate"
	"plan-takeoff/internal/document"
	"plan-takeoff/internal/ocr"
)

var (
	scaleNotation string
	scalePPI      float64
	scalePage     int
	scaleOCR      bool
	scaleRefs     []string
)

var scaleCmd = &cobra.Command{
	Use:   "scale [file]",
	Short: "Convert a scale note to pixels per foot",
	Long: "With --notation, convert a printed scale such as 1/4\" = 1'-0\" at --ppi.\n" +
		"With a plan file, look for the scale note on --page and convert it at the sheet's resolution.\n" +
		"With --ref X1,Y1,X2,Y2=FEET (repeatable), fit the scale to segments of known length.",
	Args: cobra.MaximumNArgs(1),
	RunE: runScale,
}

func init() {
	rootCmd.AddCommand(scaleCmd)

	scaleCmd.Flags().StringVarP(&scaleNotation, "notation", "n", "", "Scale note, e.g. 1/8\" = 1'-0\" or 1:100")
	scaleCmd.Flags().Float64Var(&scalePPI, "ppi", document.PointsPerInch*document.DefaultOversample, "Sheet pixels per inch")
	scaleCmd.Flags().IntVarP(&scalePage, "page", "p", 1, "1-based page number")
	scaleCmd.Flags().BoolVar(&scaleOCR, "ocr", false, "Fall back to OCR when the page has no text layer")
	scaleCmd.Flags().StringArrayVar(&scaleRefs, "ref", nil, "Reference segment in drawing pixels, X1,Y1,X2,Y2=FEET")
}

func runScale(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 && len(scaleRefs) > 0 {
		refs := make([]calibrate.Reference, len(scaleRefs))
		for i, s := range scaleRefs {
			r, err := parseRef(s)
			if err != nil {
				return err
			}
			refs[i] = r
		}
		fit, err := calibrate.FitReferences(refs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d references = %.4f px/ft (RMS error %.2f px)\n", len(refs), fit.Scale, fit.RMS)
		return nil
	}
	if len(args) == 0 {
		if scaleNotation == "" {
			return errors.New("give a plan file or --notation")
		}
		n, err := calibrate.ParseNotation(scaleNotation)
		if err != nil {
			return err
		}
		scale := n.PixelsPerFoot(scalePPI)
		if err := calibrate.Validate(scale); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s at %.0f ppi = %.4f px/ft\n", n, scalePPI, scale)
		return nil
	}

	var reader app.ScaleReader
	if scaleOCR {
		engine, err := ocr.NewEngine()
		if err != nil {
			return fmt.Errorf("OCR unavailable: %w", err)
		}
		defer engine.Close()
		reader = engine
	}

	ws := newHeadless(document.DefaultOversample, reader)
	defer ws.Close()
	if _, err := ws.open(args[0], scalePage); err != nil {
		return err
	}

	var (
		got    app.Suggestion
		gotErr error
	)
	ws.SuggestScale(func(s app.Suggestion, err error) {
		got, gotErr = s, err
	})
	ws.settle()
	if gotErr != nil {
		return gotErr
	}

	source := "text layer"
	if got.FromOCR {
		source = "OCR"
	}
	fmt.Fprintf(out, "Found %s (%s) = %.4f px/ft\n", got.Notation, source, got.Scale)
	return nil
}

// parseRef parses X1,Y1,X2,Y2=FEET.
func parseRef(s string) (calibrate.Reference, error) {
	seg, feet, ok := strings.Cut(s, "=")
	if !ok {
		return calibrate.Reference{}, fmt.Errorf("reference %q: want X1,Y1,X2,Y2=FEET", s)
	}
	parts := strings.Split(seg, ",")
	if len(parts) != 4 {
		return calibrate.Reference{}, fmt.Errorf("reference %q: want 4 coordinates", s)
	}
	var v [5]float64
	for i, p := range append(parts, feet) {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return calibrate.Reference{}, fmt.Errorf("reference %q: %q is not a number", s, p)
		}
		v[i] = f
	}
	r := calibrate.Reference{Feet: v[4]}
	r.From.X, r.From.Y, r.To.X, r.To.Y = v[0], v[1], v[2], v[3]
	return r, nil
}
