package network

import "github.com/khairate89/luhn-isbn-validator/internal/domain"

// Builtin returns the rules for the major card networks, narrow ranges first.
func Builtin() []*domain.NetworkRule {
	return []*domain.NetworkRule{
		{
			ID:         domain.NetworkAmex,
			Name:       "American Express",
			Expression: `length == 15 && (prefix2 == 34 || prefix2 == 37)`,
			Priority:   10,
			Enabled:    true,
		},
		{
			ID:         domain.NetworkDiners,
			Name:       "Diners Club",
			Expression: `length == 14 && (prefix2 == 36 || prefix2 == 38 || prefix2 == 39 || (prefix4 >= 3000 && prefix4 <= 3059))`,
			Priority:   20,
			Enabled:    true,
		},
		{
			ID:         domain.NetworkJCB,
			Name:       "JCB",
			Expression: `length >= 16 && length <= 19 && prefix4 >= 3528 && prefix4 <= 3589`,
			Priority:   30,
			Enabled:    true,
		},
		{
			ID:         domain.NetworkMaestro,
			Name:       "Maestro",
			Expression: `length >= 12 && length <= 19 && prefix4 in [5018, 5020, 5038, 5893, 6304, 6759, 6761, 6762, 6763]`,
			Priority:   40,
			Enabled:    true,
		},
		{
			ID:         domain.NetworkDiscover,
			Name:       "Discover",
			Expression: `length >= 16 && length <= 19 && (prefix4 == 6011 || prefix2 == 65 || (prefix4 >= 6440 && prefix4 <= 6499) || (prefix6 >= 622126 && prefix6 <= 622925))`,
			Priority:   50,
			Enabled:    true,
		},
		{
			ID:         domain.NetworkMastercard,
			Name:       "Mastercard",
			Expression: `length == 16 && ((prefix2 >= 51 && prefix2 <= 55) || (prefix6 >= 222100 && prefix6 <= 272099))`,
			Priority:   60,
			Enabled:    true,
		},
		{
			ID:         domain.NetworkVisa,
			Name:       "Visa",
			Expression: `number.startsWith("4") && (length == 13 || length == 16 || length == 19)`,
			Priority:   70,
			Enabled:    true,
		},
	}
}
