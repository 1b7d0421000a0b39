package diag

// Severity separates blocking findings from suggestions.
type Severity uint8

const (
	// SevError is a recoverable problem in the template.
	SevError Severity = iota
	// SevTip is a stylistic or non-blocking suggestion.
	SevTip
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "error"
	case SevTip:
		return "tip"
	}
	return "unknown"
}
