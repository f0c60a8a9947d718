// Package verify combines checksum verdicts, correction search, card network
// identification and book lookups into the reports served to clients.
//
// Lookups always happen after the checksum verdict is fixed and their
// failures only ever leave a Book field empty.
package verify

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/khairate89/luhn-isbn-validator/internal/checksum"
	"github.com/khairate89/luhn-isbn-validator/internal/correction"
	"github.com/khairate89/luhn-isbn-validator/internal/domain"
	"github.com/khairate89/luhn-isbn-validator/internal/lookup"
	"github.com/khairate89/luhn-isbn-validator/internal/network"
)

// MessageNoDigits is reported for card input without a single digit.
const MessageNoDigits = "No digits found in input."

const defaultMaxSuggestions = 5

// CardReport is the outcome of checking a card number.
type CardReport struct {
	Number      string                   `json:"number"`
	Valid       bool                     `json:"valid"`
	Message     string                   `json:"message"`
	Residual    int                      `json:"residual"`
	Explanation *domain.CalculationTrace `json:"explanation,omitempty"`

	// ExpectedCheckDigit is the last digit that would make the number
	// valid. Nil when the number is already valid.
	ExpectedCheckDigit *int   `json:"expectedCheckDigit,omitempty"`
	Network            string `json:"network,omitempty"`
}

// ISBNReport is the outcome of checking an ISBN.
type ISBNReport struct {
	ISBN     string             `json:"isbn"`
	Valid    bool               `json:"valid"`
	Residual int                `json:"residual"`
	Book     *domain.BookRecord `json:"book"`

	// Suggestions holds at most MaxSuggestions corrections for an invalid
	// ISBN, each with its book record when one was found.
	// TotalSuggestions counts every valid correction before the cap.
	Suggestions      []domain.Correction `json:"suggestions,omitempty"`
	TotalSuggestions int                 `json:"totalSuggestions"`

	// Alternative is set for a valid ISBN with no record: the first nearby
	// valid ISBN that does have one.
	Alternative *domain.Correction `json:"alternative,omitempty"`
}

// Processor produces card and ISBN reports.
type Processor struct {
	books          lookup.Lookuper
	networks       *network.Engine
	maxSuggestions int
}

// NewProcessor creates a processor. books and networks may be nil, in
// which case reports carry no book records or network names.
func NewProcessor(books lookup.Lookuper, networks *network.Engine, maxSuggestions int) *Processor {
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxSuggestions
	}
	return &Processor{
		books:          books,
		networks:       networks,
		maxSuggestions: maxSuggestions,
	}
}

// CheckCard validates a card number after stripping every non-digit.
func (p *Processor) CheckCard(number string) CardReport {
	digits := checksum.NormalizeCard(number)
	if digits == "" {
		return CardReport{Valid: false, Message: MessageNoDigits}
	}

	result := checksum.Luhn(digits)
	trace := checksum.Explain(digits)

	report := CardReport{
		Number:      digits,
		Valid:       result.Valid,
		Residual:    result.Residual,
		Explanation: &trace,
	}

	if result.Valid {
		report.Message = "Luhn-valid (checksum mod 10 == 0)."
	} else {
		report.Message = fmt.Sprintf("Luhn invalid (checksum mod 10 = %d).", result.Residual)
		if d, ok := checksum.LuhnCheckDigit(digits[:len(digits)-1]); ok {
			report.ExpectedCheckDigit = &d
		}
	}

	if p.networks != nil {
		report.Network = p.networks.Identify(digits)
	}
	return report
}

// CardCorrections returns the Luhn-valid numbers one edit away from number.
func (p *Processor) CardCorrections(number string, s correction.Strategy) []domain.Correction {
	digits := checksum.NormalizeCard(number)
	if digits == "" {
		return []domain.Correction{}
	}
	return correction.FindCorrections(digits, s, correction.LuhnValidator, correction.LuhnScorer)
}

// CheckISBN validates an ISBN and attaches book records. An invalid ISBN
// gets corrections generated with s; a valid ISBN without a record gets an
// Alternative searched with the broad strategy.
func (p *Processor) CheckISBN(ctx context.Context, isbn string, s correction.Strategy) (ISBNReport, error) {
	clean := checksum.NormalizeISBN(isbn)
	result := checksum.ISBN(clean)

	report := ISBNReport{
		ISBN:     clean,
		Valid:    result.Valid,
		Residual: result.Residual,
	}

	if result.Valid {
		report.Book = lookup.Resolve(ctx, p.books, clean)
		if report.Book == nil && p.books != nil {
			alt, err := p.alternative(ctx, clean)
			if err != nil {
				return report, err
			}
			report.Alternative = alt
		}
		return report, nil
	}

	found := correction.FindCorrections(clean, s, correction.ISBNValidator, correction.ISBNScorer)
	report.TotalSuggestions = len(found)
	if len(found) > p.maxSuggestions {
		found = found[:p.maxSuggestions]
	}
	if err := p.attachBooks(ctx, found); err != nil {
		return report, err
	}
	report.Suggestions = found
	return report, nil
}

// attachBooks resolves the book for every correction concurrently.
func (p *Processor) attachBooks(ctx context.Context, found []domain.Correction) error {
	if p.books == nil {
		return nil
	}
	var g errgroup.Group
	g.SetLimit(p.maxSuggestions)
	for i := range found {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found[i].Book = lookup.Resolve(ctx, p.books, found[i].Identifier)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// alternative walks the broad corrections of a valid ISBN in order and
// returns the first with a record. At most maxSuggestions are looked up.
func (p *Processor) alternative(ctx context.Context, isbn string) (*domain.Correction, error) {
	found := correction.FindCorrections(isbn, correction.StrategyBroad, correction.ISBNValidator, correction.ISBNScorer)
	if len(found) > p.maxSuggestions {
		found = found[:p.maxSuggestions]
	}
	for _, c := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if book := lookup.Resolve(ctx, p.books, c.Identifier); book != nil {
			c.Book = book
			return &c, nil
		}
	}
	return nil, nil
}
