package domain

// NetworkRule identifies a card network with a CEL expression.
//
// The expression is evaluated with these variables:
//
//	number  string  normalized card number
//	length  int     number of digits
//	prefix2 int     first two digits (0 when shorter)
//	prefix4 int     first four digits (0 when shorter)
//	prefix6 int     first six digits (0 when shorter)
type NetworkRule struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Expression string `json:"expression" yaml:"expression"`

	// Priority orders evaluation; lower runs first.
	Priority int  `json:"priority" yaml:"priority"`
	Enabled  bool `json:"enabled" yaml:"enabled"`
}

// Well-known network identifiers.
const (
	NetworkVisa       = "visa"
	NetworkMastercard = "mastercard"
	NetworkAmex       = "amex"
	NetworkDiscover   = "discover"
	NetworkJCB        = "jcb"
	NetworkDiners     = "diners"
	NetworkMaestro    = "maestro"
)
