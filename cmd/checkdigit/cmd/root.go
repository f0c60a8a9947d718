// Package cmd provides the commands of the checkdigit CLI.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags.
var Version = "dev"

var (
	outputFormat string
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "checkdigit",
	Short: "Validate card numbers and ISBNs offline",
	Long: `checkdigit validates Luhn card numbers and ISBN-10/ISBN-13 codes,
explains the arithmetic, proposes corrections for mistyped input and
measures how well the Luhn scheme catches typing errors.

Examples:
  checkdigit card 4532015112830366 --explain
  checkdigit isbn 0-306-40615-3 --strategy narrow
  checkdigit check-digit 7992739871
  checkdigit experiment --length 16 --samples 50000 --seed 42`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(cardCmd)
	rootCmd.AddCommand(isbnCmd)
	rootCmd.AddCommand(checkDigitCmd)
	rootCmd.AddCommand(experimentCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "checkdigit version %s\n", Version)
	},
}

// render writes v as indented JSON when --format json is set, otherwise
// calls text.
func render(w io.Writer, v any, text func(io.Writer)) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "text", "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
