package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khairate89/luhn-isbn-validator/internal/checksum"
)

var kind string

// checkDigitCmd represents the check-digit command
var checkDigitCmd = &cobra.Command{
	Use:   "check-digit <base>",
	Short: "Compute the check digit that completes a base",
	Long: `Compute the check digit for a base number.

With --kind card (the default) the Luhn digit is appended. With --kind isbn
a 9-digit base yields an ISBN-10 and a 12-digit base an ISBN-13.

Examples:
  checkdigit check-digit 7992739871
  checkdigit check-digit --kind isbn 0-306-40615`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckDigit,
}

func init() {
	checkDigitCmd.Flags().StringVarP(&kind, "kind", "k", "card", "identifier kind (card, isbn)")
}

type checkDigitOutput struct {
	Base       string `json:"base"`
	CheckDigit string `json:"checkDigit"`
	Complete   string `json:"complete"`
}

func runCheckDigit(cmd *cobra.Command, args []string) error {
	var out checkDigitOutput

	switch kind {
	case "card":
		base := checksum.NormalizeCard(args[0])
		if base == "" {
			return fmt.Errorf("base %q contains no digits", args[0])
		}
		d, _ := checksum.LuhnCheckDigit(base)
		out = checkDigitOutput{Base: base, CheckDigit: fmt.Sprint(d)}
	case "isbn":
		base := checksum.NormalizeISBN(args[0])
		var (
			c  byte
			ok bool
		)
		switch len(base) {
		case 9:
			c, ok = checksum.ISBN10CheckDigit(base)
		case 12:
			c, ok = checksum.ISBN13CheckDigit(base)
		}
		if !ok {
			return fmt.Errorf("isbn base must be 9 or 12 digits, got %q", base)
		}
		out = checkDigitOutput{Base: base, CheckDigit: string(c)}
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	out.Complete = out.Base + out.CheckDigit

	return render(cmd.OutOrStdout(), out, func(w io.Writer) {
		fmt.Fprintf(w, "Check digit: %s\n", out.CheckDigit)
		fmt.Fprintf(w, "Complete:    %s\n", out.Complete)
	})
}
