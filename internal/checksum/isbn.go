package checksum

import (
	"strings"

	"github.com/khairate89/luhn-isbn-validator/internal/domain"
)

// ValidateISBN10 reports whether code is a valid ISBN-10: nine digits
// followed by a digit or 'X', with Σ(i+1)·dᵢ ≡ 0 (mod 11).
// code must already be normalized.
func ValidateISBN10(code string) bool {
	if len(code) != 10 {
		return false
	}
	total := 0
	for i := 0; i < 9; i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return false
		}
		total += (i + 1) * int(c-'0')
	}
	switch c := code[9]; {
	case c == 'X':
		total += 10 * 10
	case c >= '0' && c <= '9':
		total += 10 * int(c-'0')
	default:
		return false
	}
	return total%11 == 0
}

// ValidateISBN13 reports whether code is a valid ISBN-13: thirteen digits
// with alternating weights 1 and 3 where (10 - Σ mod 10) mod 10 equals the
// last digit. code must already be normalized.
func ValidateISBN13(code string) bool {
	if len(code) != 13 {
		return false
	}
	check, ok := ISBN13CheckDigit(code[:12])
	return ok && code[12] == check
}

// ValidateISBN normalizes code and validates it as ISBN-10 or ISBN-13
// depending on its length. Any other length is invalid.
func ValidateISBN(code string) bool {
	code = NormalizeISBN(code)
	switch len(code) {
	case 10:
		return ValidateISBN10(code)
	case 13:
		return ValidateISBN13(code)
	default:
		return false
	}
}

// ISBN normalizes code and returns its verdict with the residual of the
// matching equation: total mod 11 for ISBN-10, weighted sum mod 10 over all
// thirteen digits for ISBN-13. Malformed input has residual 0.
func ISBN(code string) domain.ChecksumResult {
	code = NormalizeISBN(code)
	res := domain.ChecksumResult{Valid: ValidateISBN(code)}
	if !isbnShape(code) {
		return res
	}
	total := 0
	switch len(code) {
	case 10:
		for i := 0; i < 9; i++ {
			total += (i + 1) * int(code[i]-'0')
		}
		check := 10
		if code[9] != 'X' {
			check = int(code[9] - '0')
		}
		res.Residual = (total + 10*check) % 11
	case 13:
		for i := 0; i < 13; i++ {
			w := 1
			if i%2 == 1 {
				w = 3
			}
			total += w * int(code[i]-'0')
		}
		res.Residual = total % 10
	}
	return res
}

func isbnShape(code string) bool {
	switch len(code) {
	case 10:
		for i := 0; i < 9; i++ {
			if code[i] < '0' || code[i] > '9' {
				return false
			}
		}
		c := code[9]
		return c == 'X' || (c >= '0' && c <= '9')
	case 13:
		for i := 0; i < 13; i++ {
			if code[i] < '0' || code[i] > '9' {
				return false
			}
		}
		return true
	}
	return false
}

// ISBN10CheckDigit returns the check character ('0'-'9' or 'X') for a
// nine-digit ISBN-10 base.
func ISBN10CheckDigit(base string) (byte, bool) {
	if len(base) != 9 {
		return 0, false
	}
	total := 0
	for i := 0; i < 9; i++ {
		c := base[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		total += (i + 1) * int(c-'0')
	}
	// 10·check ≡ -check (mod 11), so check ≡ total (mod 11).
	check := total % 11
	if check == 10 {
		return 'X', true
	}
	return byte('0' + check), true
}

// ISBN13CheckDigit returns the check digit for a twelve-digit ISBN-13 base.
func ISBN13CheckDigit(base string) (byte, bool) {
	if len(base) != 12 {
		return 0, false
	}
	total := 0
	for i := 0; i < 12; i++ {
		c := base[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		w := 1
		if i%2 == 1 {
			w = 3
		}
		total += w * int(c-'0')
	}
	return byte('0' + (10-total%10)%10), true
}

// NormalizeISBN strips spaces and hyphens and uppercases the result.
func NormalizeISBN(code string) string {
	code = strings.ReplaceAll(code, "-", "")
	code = strings.ReplaceAll(code, " ", "")
	return strings.ToUpper(code)
}

// NormalizeCard keeps only the ASCII digits of s.
func NormalizeCard(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
