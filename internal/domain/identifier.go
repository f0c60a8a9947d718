package domain

// IdentifierKind distinguishes the two identifier families the service checks.
type IdentifierKind string

const (
	KindCard IdentifierKind = "card"
	KindISBN IdentifierKind = "isbn"
)

// ChecksumResult is the verdict of a checksum computation.
// Residual is the checksum value before the divisibility test and is
// always present, even when Valid is true.
type ChecksumResult struct {
	Valid    bool `json:"valid"`
	Residual int  `json:"residual"`
}

// TraceStep describes one digit's contribution to a Luhn sum.
type TraceStep struct {
	// Position is 1-indexed from the most significant digit.
	Position int `json:"pos"`
	Digit    int `json:"digit"`

	// Doubled is the raw doubled value, nil when the digit is not doubled.
	Doubled      *int `json:"doubled"`
	Contribution int  `json:"adjusted"`
}

// CalculationTrace is a left-to-right explanation of a Luhn computation.
type CalculationTrace struct {
	Steps []TraceStep `json:"steps"`
	Total int         `json:"total"`
	Mod10 int         `json:"mod10"`
}

// Correction is a checksum-valid identifier one edit away from the input.
type Correction struct {
	Identifier string         `json:"isbn"`
	Result     ChecksumResult `json:"result"`

	// Book is filled by the caller after the core has produced the
	// correction; nil means no record was found.
	Book *BookRecord `json:"book"`
}

// BookRecord is the metadata returned by the book lookup collaborator.
type BookRecord struct {
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Authors       string `json:"authors"`
	Publisher     string `json:"publisher"`
	PublishedDate string `json:"publishedDate"`
}
