package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/khairate89/luhn-isbn-validator/internal/correction"
	"github.com/khairate89/luhn-isbn-validator/internal/domain"
	"github.com/khairate89/luhn-isbn-validator/internal/lookup"
	"github.com/khairate89/luhn-isbn-validator/internal/verify"
)

var (
	isbnStrategy   string
	lookupBooks    bool
	booksURL       string
	maxSuggestions int
	lookupTimeout  time.Duration
)

// isbnCmd represents the isbn command
var isbnCmd = &cobra.Command{
	Use:   "isbn <isbn>",
	Short: "Validate an ISBN-10 or ISBN-13",
	Long: `Validate an ISBN. Hyphens and spaces are ignored. Invalid input gets a
list of valid ISBNs one edit away. With --lookup each result is looked up
on Google Books.

Examples:
  checkdigit isbn 978-0-306-40615-7
  checkdigit isbn 0306406153 --strategy narrow
  checkdigit isbn 0306406152 --lookup`,
	Args: cobra.ExactArgs(1),
	RunE: runISBN,
}

func init() {
	isbnCmd.Flags().StringVar(&isbnStrategy, "strategy", "broad", "correction strategy (broad, narrow)")
	isbnCmd.Flags().BoolVarP(&lookupBooks, "lookup", "l", false, "look books up on Google Books")
	isbnCmd.Flags().StringVar(&booksURL, "books-url", lookup.DefaultBaseURL, "Google Books API base URL")
	isbnCmd.Flags().IntVar(&maxSuggestions, "max", 5, "maximum number of suggestions to show")
	isbnCmd.Flags().DurationVar(&lookupTimeout, "timeout", 10*time.Second, "lookup timeout")
}

func runISBN(cmd *cobra.Command, args []string) error {
	strategy, err := correction.ParseStrategy(isbnStrategy)
	if err != nil {
		return err
	}

	var books lookup.Lookuper
	if lookupBooks {
		books = lookup.NewGoogleBooks(booksURL, "", lookupTimeout)
	}
	p := verify.NewProcessor(books, nil, maxSuggestions)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := p.CheckISBN(ctx, args[0], strategy)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), report, func(w io.Writer) {
		printISBN(w, report)
	})
}

func printISBN(w io.Writer, r verify.ISBNReport) {
	if r.Valid {
		fmt.Fprintf(w, "Valid ISBN: %s\n", r.ISBN)
		switch {
		case r.Book != nil:
			printBook(w, r.Book)
		case lookupBooks:
			fmt.Fprintln(w, "Valid ISBN but book not found.")
			if r.Alternative != nil {
				fmt.Fprintf(w, "\nPossible intended book (%s):\n", r.Alternative.Identifier)
				printBook(w, r.Alternative.Book)
			}
		}
		return
	}

	fmt.Fprintf(w, "Invalid ISBN: %s\n", r.ISBN)
	if len(r.Suggestions) == 0 {
		fmt.Fprintln(w, "No close valid ISBNs found.")
		return
	}

	fmt.Fprintf(w, "Found %d possible valid ISBN(s)", r.TotalSuggestions)
	if r.TotalSuggestions > len(r.Suggestions) {
		fmt.Fprintf(w, ", showing %d", len(r.Suggestions))
	}
	fmt.Fprintln(w, ":")
	for _, s := range r.Suggestions {
		if s.Book != nil {
			fmt.Fprintf(w, "\n  %s\n", s.Identifier)
			printBook(w, s.Book)
			continue
		}
		if lookupBooks {
			fmt.Fprintf(w, "  %s (valid checksum but not found)\n", s.Identifier)
		} else {
			fmt.Fprintf(w, "  %s\n", s.Identifier)
		}
	}
}

func printBook(w io.Writer, b *domain.BookRecord) {
	fmt.Fprintf(w, "  Title:      %s\n", b.Title)
	fmt.Fprintf(w, "  Author(s):  %s\n", b.Authors)
	fmt.Fprintf(w, "  Publisher:  %s\n", b.Publisher)
	fmt.Fprintf(w, "  Published:  %s\n", b.PublishedDate)
}
