package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"plan-takeoff/internal/document"
)

var (
	renderPage       int
	renderOversample float64
	renderOutput     string
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render one sheet of a plan to PNG",
	Long:  "Rasterize a PDF page, or decode an image plan, exactly as the takeoff canvas displays it.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().IntVarP(&renderPage, "page", "p", 1, "1-based page number")
	renderCmd.Flags().Float64Var(&renderOversample, "oversample", document.DefaultOversample, "Pixels per PDF point")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output PNG (default <name>-p<page>.png)")
}

func runRender(cmd *cobra.Command, args []string) error {
	path := args[0]
	ws := newHeadless(renderOversample, nil)
	defer ws.Close()

	d, err := ws.open(path, renderPage)
	if err != nil {
		return err
	}

	out := renderOutput
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out = fmt.Sprintf("%s-p%d.png", base, renderPage)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, d.Bitmap); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d x %d px", out, d.Width, d.Height)
	if d.PixelsPerInch > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), " at %.0f ppi", d.PixelsPerInch)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
