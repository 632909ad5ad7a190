package analysis

import (
	"fmt"
	"strings"

	"caselens/internal/policy"
)

// MinNotesLength is the shortest raw-notes text worth analyzing.
const MinNotesLength = 10

// ValidationError reports a request field that failed validation. Requests
// that fail validation never reach the reasoning engine.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// fieldRule is a single declarative validation constraint. Keeping the rules
// as data keeps them independently testable instead of burying them in
// handler conditionals.
type fieldRule struct {
	field   string
	message string
	ok      func(*Request) bool
}

var requestRules = []fieldRule{
	{
		field:   "rawNotes",
		message: fmt.Sprintf("must be at least %d characters", MinNotesLength),
		ok: func(r *Request) bool {
			return len(strings.TrimSpace(r.RawNotes)) >= MinNotesLength
		},
	},
	{
		field:   "issueType",
		message: "is required",
		ok: func(r *Request) bool {
			return strings.TrimSpace(r.IssueType) != ""
		},
	},
}

// Validate checks the request against the field rules and returns the first
// violation as a *ValidationError.
func (r *Request) Validate() error {
	for _, rule := range requestRules {
		if !rule.ok(r) {
			return &ValidationError{Field: rule.field, Message: rule.message}
		}
	}
	return nil
}

// Normalize fills absent cap overrides with the policy constants. A zero or
// negative cap counts as absent; the caps are policy constants, and zero is
// never a meaningful cap.
func (r *Request) Normalize() {
	if r.EncouragedCapPercent <= 0 {
		r.EncouragedCapPercent = policy.DefaultEncouragedCapPercent
	}
	if r.MaxCapPercent <= 0 {
		r.MaxCapPercent = policy.DefaultMaxCapPercent
	}
}
