// Package correction searches the one-edit neighborhood of an identifier for
// checksum-valid alternatives.
package correction

import (
	"errors"
	"strings"
)

// Strategy selects how wide the candidate neighborhood is.
type Strategy int

const (
	// StrategyBroad substitutes every digit position with every other digit
	// and swaps every adjacent pair.
	StrategyBroad Strategy = iota

	// StrategyNarrow substitutes only the final position and swaps only the
	// final two characters.
	StrategyNarrow
)

// ErrUnknownStrategy is returned by ParseStrategy for unrecognized names.
var ErrUnknownStrategy = errors.New("unknown correction strategy")

func (s Strategy) String() string {
	switch s {
	case StrategyBroad:
		return "broad"
	case StrategyNarrow:
		return "narrow"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a name to a Strategy. The empty string means broad.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "broad":
		return StrategyBroad, nil
	case "narrow":
		return StrategyNarrow, nil
	default:
		return StrategyBroad, ErrUnknownStrategy
	}
}

// Generate returns every distinct string one substitution or one adjacent
// transposition away from identifier, in a stable order: substitutions by
// ascending position then ascending digit, followed by transpositions by
// ascending position. The identifier itself is never included.
func Generate(identifier string, s Strategy) []string {
	g := generator{
		source: identifier,
		seen:   map[string]struct{}{identifier: {}},
	}

	switch s {
	case StrategyNarrow:
		g.narrow()
	default:
		g.broad()
	}
	return g.out
}

type generator struct {
	source string
	seen   map[string]struct{}
	out    []string
}

func (g *generator) broad() {
	for i := 0; i < len(g.source); i++ {
		if !isDigit(g.source[i]) {
			continue
		}
		g.substitute(i)
	}
	for i := 0; i+1 < len(g.source); i++ {
		g.swap(i)
	}
}

// narrow substitutes the last character only when everything before it is
// a digit, so a trailing X check character can still be replaced.
func (g *generator) narrow() {
	n := len(g.source)
	if n < 2 {
		return
	}
	if allDigits(g.source[:n-1]) {
		g.substitute(n - 1)
	}
	g.swap(n - 2)
}

func (g *generator) substitute(i int) {
	b := []byte(g.source)
	for d := byte('0'); d <= '9'; d++ {
		if d == g.source[i] {
			continue
		}
		b[i] = d
		g.add(string(b))
	}
}

func (g *generator) swap(i int) {
	b := []byte(g.source)
	b[i], b[i+1] = b[i+1], b[i]
	g.add(string(b))
}

func (g *generator) add(candidate string) {
	if _, ok := g.seen[candidate]; ok {
		return
	}
	g.seen[candidate] = struct{}{}
	g.out = append(g.out, candidate)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
