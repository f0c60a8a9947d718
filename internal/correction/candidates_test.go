package correction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khairate89/luhn-isbn-validator/internal/correction"
)

func TestGenerateBroadOrder(t *testing.T) {
	got := correction.Generate("1234", correction.StrategyBroad)
	require.Len(t, got, 36+3)

	assert.Equal(t, "0234", got[0])
	assert.Equal(t, "2234", got[1])
	assert.Equal(t, "1239", got[35])
	assert.Equal(t, []string{"2134", "1324", "1243"}, got[36:])
}

func TestGenerateBroadProperties(t *testing.T) {
	src := "4532015112830366"
	got := correction.Generate(src, correction.StrategyBroad)

	// 16 positions * 9 digits, plus 15 swaps minus the two equal pairs.
	assert.Len(t, got, 144+13)

	seen := map[string]bool{}
	for _, c := range got {
		assert.Len(t, c, len(src))
		assert.NotEqual(t, src, c)
		assert.False(t, seen[c], "duplicate candidate %s", c)
		seen[c] = true
	}
}

func TestGenerateBroadSkipsCheckCharacter(t *testing.T) {
	got := correction.Generate("080442957X", correction.StrategyBroad)
	assert.Len(t, got, 81+8)
	for _, c := range got[:81] {
		assert.Equal(t, byte('X'), c[9])
	}
}

func TestGenerateNarrow(t *testing.T) {
	got := correction.Generate("1234", correction.StrategyNarrow)
	assert.Equal(t, []string{
		"1230", "1231", "1232", "1233", "1235", "1236", "1237", "1238", "1239",
		"1243",
	}, got)

	// A trailing X is replaced by every digit.
	got = correction.Generate("080442957X", correction.StrategyNarrow)
	require.Len(t, got, 11)
	assert.Equal(t, "0804429570", got[0])
	assert.Equal(t, "08044295X7", got[10])

	// Only the final swap when the body is not all digits.
	assert.Equal(t, []string{"12X4"}, correction.Generate("124X", correction.StrategyNarrow)[10:])
	assert.Equal(t, []string{"124X"}, correction.Generate("12X4", correction.StrategyNarrow))

	assert.Empty(t, correction.Generate("7", correction.StrategyNarrow))
	assert.Empty(t, correction.Generate("", correction.StrategyBroad))
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    correction.Strategy
		wantErr bool
	}{
		{"", correction.StrategyBroad, false},
		{"broad", correction.StrategyBroad, false},
		{" Narrow ", correction.StrategyNarrow, false},
		{"wide", correction.StrategyBroad, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := correction.ParseStrategy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, correction.ErrUnknownStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, name string) correction.Strategy {
	t.Helper()
	s, err := correction.ParseStrategy(name)
	require.NoError(t, err)
	return s
}
