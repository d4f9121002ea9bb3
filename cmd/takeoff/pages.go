package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"plan-takeoff/internal/document"
	"plan-takeoff/internal/sheet"
)

var pagesCmd = &cobra.Command{
	Use:   "pages [file.pdf]",
	Short: "List the pages of a PDF plan set",
	Args:  cobra.ExactArgs(1),
	RunE:  runPages,
}

var pagesSheetSpecs []string

func init() {
	rootCmd.AddCommand(pagesCmd)

	pagesCmd.Flags().StringSliceVar(&pagesSheetSpecs, "sheet-spec", nil, "JSON file defining a custom sheet size (repeatable)")
}

func runPages(cmd *cobra.Command, args []string) error {
	for _, f := range pagesSheetSpecs {
		spec, err := sheet.LoadFromFile(f)
		if err != nil {
			return err
		}
		sheet.Register(spec)
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := document.NewPDFRasterizer(document.DefaultOversample).Open(context.Background(), filepath.Base(path), data)
	if err != nil {
		return err
	}
	defer doc.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File: %s\n", path)
	fmt.Fprintf(out, "Pages: %d\n\n", doc.PageCount())
	fmt.Fprintf(out, "%-6s %-12s %-12s %s\n", "Page", "Width (in)", "Height (in)", "Sheet")
	for i := 0; i < doc.PageCount(); i++ {
		w, h, err := doc.PageSize(i)
		if err != nil {
			fmt.Fprintf(out, "%-6d error: %v\n", i+1, err)
			continue
		}
		wi, hi := w/document.PointsPerInch, h/document.PointsPerInch
		fmt.Fprintf(out, "%-6d %-12.2f %-12.2f %s\n", i+1, wi, hi, sheet.Describe(wi, hi))
	}
	return nil
}
