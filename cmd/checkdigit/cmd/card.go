package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khairate89/luhn-isbn-validator/internal/correction"
	"github.com/khairate89/luhn-isbn-validator/internal/domain"
	"github.com/khairate89/luhn-isbn-validator/internal/network"
	"github.com/khairate89/luhn-isbn-validator/internal/verify"
)

var (
	explain      bool
	suggestCards bool
	cardStrategy string
)

// cardCmd represents the card command
var cardCmd = &cobra.Command{
	Use:   "card <number>",
	Short: "Validate a card number with the Luhn checksum",
	Long: `Validate a card number. Spaces, dashes and any other non-digit
characters are ignored.

Examples:
  checkdigit card 4532015112830366
  checkdigit card "4532 0151 1283 0367" --explain
  checkdigit card 4537015112830366 --suggest`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCard,
}

func init() {
	cardCmd.Flags().BoolVarP(&explain, "explain", "e", false, "show the per-digit calculation")
	cardCmd.Flags().BoolVarP(&suggestCards, "suggest", "s", false, "list valid numbers one edit away when invalid")
	cardCmd.Flags().StringVar(&cardStrategy, "strategy", "broad", "correction strategy (broad, narrow)")
}

type cardOutput struct {
	verify.CardReport
	Corrections []domain.Correction `json:"corrections,omitempty"`
}

func runCard(cmd *cobra.Command, args []string) error {
	strategy, err := correction.ParseStrategy(cardStrategy)
	if err != nil {
		return err
	}
	engine, err := network.NewBuiltinEngine()
	if err != nil {
		return fmt.Errorf("failed to load network rules: %w", err)
	}
	p := verify.NewProcessor(nil, engine, 0)

	out := cardOutput{CardReport: p.CheckCard(strings.Join(args, ""))}
	if suggestCards && !out.Valid && out.Number != "" {
		out.Corrections = p.CardCorrections(out.Number, strategy)
	}

	return render(cmd.OutOrStdout(), out, func(w io.Writer) {
		printCard(w, out)
	})
}

func printCard(w io.Writer, out cardOutput) {
	if out.Number == "" {
		fmt.Fprintln(w, out.Message)
		return
	}

	fmt.Fprintf(w, "Number:   %s\n", out.Number)
	fmt.Fprintf(w, "Result:   %s\n", out.Message)
	if out.Network != "" {
		fmt.Fprintf(w, "Network:  %s\n", out.Network)
	}
	if out.ExpectedCheckDigit != nil {
		fmt.Fprintf(w, "Expected check digit: %d\n", *out.ExpectedCheckDigit)
	}

	if explain && out.Explanation != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Pos  Digit  Doubled  Adds")
		for _, s := range out.Explanation.Steps {
			doubled := "-"
			if s.Doubled != nil {
				doubled = fmt.Sprint(*s.Doubled)
			}
			fmt.Fprintf(w, "  %3d  %5d  %7s  %4d\n", s.Position, s.Digit, doubled, s.Contribution)
		}
		fmt.Fprintf(w, "  Total %d, mod 10 = %d\n", out.Explanation.Total, out.Explanation.Mod10)
	}

	if len(out.Corrections) > 0 {
		fmt.Fprintf(w, "\nDid you mean (%d):\n", len(out.Corrections))
		for _, c := range out.Corrections {
			fmt.Fprintf(w, "  %s\n", c.Identifier)
		}
	}
}
