// Command takeoff inspects plan files and exports takeoff data without the GUI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "takeoff",
	Short:        "Construction takeoff tools",
	Long:         "takeoff inspects PDF plans, renders sheets, converts scale notes and exports project measurements to CSV.",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
