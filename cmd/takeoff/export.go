package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"plan-takeoff/internal/estimate"
	"plan-takeoff/internal/export"
	"plan-takeoff/internal/measure"
	"plan-takeoff/internal/project"
)

var (
	exportDrawing   string
	exportOutput    string
	exportPrecision int
	exportSend      string
)

var exportCmd = &cobra.Command{
	Use:   "export [project" + project.Extension + "]",
	Short: "Export a drawing's measurements from a project file",
	Long: "Write the stored measurements of one drawing as CSV, or send them to an estimate inbox.\n" +
		"Quantities are exported as saved; they are not recomputed.",
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportDrawing, "drawing", "d", "", "Drawing name (required when the project has several)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "CSV file, \"-\" for stdout (default <drawing>-takeoff.csv)")
	exportCmd.Flags().IntVar(&exportPrecision, "precision", export.Precision, "Decimal places for quantities")
	exportCmd.Flags().StringVar(&exportSend, "send", "", "Post the measurements to the estimate inbox at this URL instead")
}

func runExport(cmd *cobra.Command, args []string) error {
	p, err := project.Load(args[0])
	if err != nil {
		return err
	}
	pd, err := findDrawing(p, exportDrawing)
	if err != nil {
		return err
	}

	ms := make([]*measure.Measurement, 0, len(pd.Items))
	for _, item := range pd.Items {
		m, err := item.Restore()
		if err != nil {
			log.Printf("Skipping %v", err)
			continue
		}
		ms = append(ms, m)
	}
	if len(ms) == 0 {
		return fmt.Errorf("%s: %w", pd.Name, export.ErrNothingToExport)
	}

	if exportSend != "" {
		payload, err := export.NewPayload(export.DrawingInfo{
			Name:  pd.Name,
			Trade: pd.Trade,
			Floor: pd.Floor,
			Page:  pd.Page,
			Scale: pd.Scale,
		}, ms)
		if err != nil {
			return err
		}
		c := estimate.NewClient(exportSend, 15*time.Second)
		if err := export.Deliver(c.Handoff, payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent %d measurements from %s to %s\n", len(ms), pd.Name, exportSend)
		return nil
	}

	if exportOutput == "-" {
		return export.WriteCSV(cmd.OutOrStdout(), ms, exportPrecision)
	}
	out := exportOutput
	if out == "" {
		out = export.Filename(pd.Name)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, ms, exportPrecision); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d measurements to %s\n", len(ms), out)
	return nil
}

// findDrawing picks a drawing by name, case-insensitively. An empty name is
// accepted when the project holds exactly one drawing.
func findDrawing(p *project.File, name string) (*project.Drawing, error) {
	if name == "" {
		if len(p.Drawings) == 1 {
			return &p.Drawings[0], nil
		}
		return nil, errors.New("project has several drawings; choose one with --drawing")
	}
	for i := range p.Drawings {
		if strings.EqualFold(p.Drawings[i].Name, name) {
			return &p.Drawings[i], nil
		}
	}
	names := make([]string, len(p.Drawings))
	for i, d := range p.Drawings {
		names[i] = d.Name
	}
	return nil, fmt.Errorf("no drawing named %q (have: %s)", name, strings.Join(names, ", "))
}
