// Package checksum implements the Luhn, ISBN-10 and ISBN-13 check digit
// algorithms. Every function is total: malformed input yields an invalid
// verdict, never a panic or an error.
package checksum

import "github.com/khairate89/luhn-isbn-validator/internal/domain"

// luhnSum returns the pre-modulo Luhn sum of digits.
// ok is false when digits is empty or holds a non-digit byte.
func luhnSum(digits string) (sum int, ok bool) {
	if digits == "" {
		return 0, false
	}
	n := len(digits)
	for i := n - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		d := int(c - '0')
		if (n-1-i)%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum, true
}

// LuhnChecksum returns the Luhn residual (sum mod 10) of digits.
// Input that is empty or not all digits has residual 0; use IsLuhnValid
// for a verdict.
func LuhnChecksum(digits string) int {
	sum, _ := luhnSum(digits)
	return sum % 10
}

// IsLuhnValid reports whether digits is a non-empty digit string with a
// Luhn residual of zero.
func IsLuhnValid(digits string) bool {
	sum, ok := luhnSum(digits)
	return ok && sum%10 == 0
}

// Luhn returns the verdict and residual together.
func Luhn(digits string) domain.ChecksumResult {
	sum, ok := luhnSum(digits)
	return domain.ChecksumResult{
		Valid:    ok && sum%10 == 0,
		Residual: sum % 10,
	}
}

// LuhnCheckDigit returns the digit that makes base+digit Luhn-valid.
// ok is false when base contains a non-digit. An empty base yields 0.
func LuhnCheckDigit(base string) (int, bool) {
	for i := 0; i < len(base); i++ {
		if base[i] < '0' || base[i] > '9' {
			return 0, false
		}
	}
	for d := 0; d <= 9; d++ {
		if IsLuhnValid(base + string(rune('0'+d))) {
			return d, true
		}
	}
	// Unreachable: exactly one digit in 0..9 closes any digit base.
	return 0, false
}
