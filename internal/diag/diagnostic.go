package diag

import "tmplc/internal/source"

// Diagnostic is one recoverable finding. In plain mode Range is empty and the
// record is equivalent to its message.
type Diagnostic struct {
	Severity Severity     `json:"severity" msgpack:"sev"`
	Message  string       `json:"message" msgpack:"msg"`
	Range    source.Range `json:"-" msgpack:"rng"`
}

// HasRange reports whether any position was recorded.
func (d Diagnostic) HasRange() bool {
	return !d.Range.Empty()
}

func (d Diagnostic) String() string {
	return d.Message
}
