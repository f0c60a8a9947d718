package checksum_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khairate89/luhn-isbn-validator/internal/checksum"
)

func TestIsLuhnValid(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{"visa test number", "4532015112830366", true},
		{"classic example", "79927398713", true},
		{"amex test number", "378282246310005", true},
		{"last digit off by one", "4532015112830367", false},
		{"single zero", "0", true},
		{"single nonzero", "5", false},
		{"empty", "", false},
		{"hyphenated", "4532-0151-1283-0366", false},
		{"letters", "45320151128303a6", false},
		{"unicode digit", "４532015112830366", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checksum.IsLuhnValid(tt.number))
		})
	}
}

func TestLuhnResidual(t *testing.T) {
	res := checksum.Luhn("4532015112830367")
	assert.False(t, res.Valid)
	assert.Equal(t, 1, res.Residual)

	res = checksum.Luhn("4532015112830366")
	assert.True(t, res.Valid)
	assert.Equal(t, 0, res.Residual)
	assert.Equal(t, 0, checksum.LuhnChecksum("4532015112830366"))
}

func TestSingleSubstitutionAlwaysDetected(t *testing.T) {
	valid := []string{"4532015112830366", "79927398713", "378282246310005", "4111111111111111"}

	for _, v := range valid {
		require.True(t, checksum.IsLuhnValid(v), v)
		for p := 0; p < len(v); p++ {
			for d := byte('0'); d <= '9'; d++ {
				if d == v[p] {
					continue
				}
				mutated := v[:p] + string(d) + v[p+1:]
				assert.False(t, checksum.IsLuhnValid(mutated), "substitution %s -> %s", v, mutated)
			}
		}
	}
}

func TestLuhnCheckDigit(t *testing.T) {
	bases := []string{"", "7", "453201511283036", "7992739871", "000000", "99999999999"}

	for _, base := range bases {
		t.Run("base_"+base, func(t *testing.T) {
			d, ok := checksum.LuhnCheckDigit(base)
			require.True(t, ok)
			assert.True(t, checksum.IsLuhnValid(base+strconv.Itoa(d)))

			matches := 0
			for c := 0; c <= 9; c++ {
				if checksum.IsLuhnValid(base + strconv.Itoa(c)) {
					matches++
				}
			}
			assert.Equal(t, 1, matches, "exactly one check digit must close the base")
		})
	}

	_, ok := checksum.LuhnCheckDigit("12a4")
	assert.False(t, ok)
}

func TestLuhnIdempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, checksum.Luhn("79927398710"), checksum.Luhn("79927398710"))
	}
}
