package correction

import (
	"github.com/khairate89/luhn-isbn-validator/internal/checksum"
	"github.com/khairate89/luhn-isbn-validator/internal/domain"
)

// Validator reports whether a candidate satisfies a checksum.
type Validator func(string) bool

// Scorer recomputes the checksum verdict of a candidate.
type Scorer func(string) domain.ChecksumResult

// Stock validators and scorers.
var (
	LuhnValidator Validator = checksum.IsLuhnValid
	ISBNValidator Validator = checksum.ValidateISBN

	LuhnScorer Scorer = checksum.Luhn
	ISBNScorer Scorer = checksum.ISBN
)

// Find returns the candidates of identifier that pass validate, in
// generation order. An empty result means no nearby valid identifier.
func Find(identifier string, s Strategy, validate Validator) []string {
	var found []string
	for _, c := range Generate(identifier, s) {
		if validate(c) {
			found = append(found, c)
		}
	}
	if found == nil {
		return []string{}
	}
	return found
}

// FindCorrections is Find with each candidate paired with its recomputed
// checksum result. Book is left nil for the caller to fill.
func FindCorrections(identifier string, s Strategy, validate Validator, score Scorer) []domain.Correction {
	found := Find(identifier, s, validate)
	out := make([]domain.Correction, 0, len(found))
	for _, c := range found {
		out = append(out, domain.Correction{
			Identifier: c,
			Result:     score(c),
		})
	}
	return out
}
