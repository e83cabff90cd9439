package enum

// DocumentKind selects an independent numbering sequence within a company.
type DocumentKind string

const (
	DocumentKindInvoice  DocumentKind = "invoice"
	DocumentKindEstimate DocumentKind = "estimate"
)

// Prefix is the human-facing prefix of numbers in this sequence.
func (k DocumentKind) Prefix() string {
	switch k {
	case DocumentKindInvoice:
		return "INV"
	case DocumentKindEstimate:
		return "EST"
	}
	return ""
}

func (k DocumentKind) Valid() bool {
	return k.Prefix() != ""
}
