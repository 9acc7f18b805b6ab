package rules

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a rule violation. Every engine failure maps to exactly one
// kind so callers can branch without parsing messages.
type Kind string

const (
	KindInvalidField           Kind = "invalid_field"
	KindInvalidTransition      Kind = "invalid_transition"
	KindWeightCapExceeded      Kind = "weight_cap_exceeded"
	KindNotEligible            Kind = "not_eligible"
	KindInvalidScore           Kind = "invalid_score"
	KindScoreNotAllowed        Kind = "score_not_allowed"
	KindInvalidFeedback        Kind = "invalid_feedback"
	KindInvalidSourceState     Kind = "invalid_source_state"
	KindTargetAlreadyProcessed Kind = "target_already_processed"
)

// Error is a typed rule violation. All violations are terminal: the caller
// must correct the input and resubmit, there are no retry semantics.
type Error struct {
	Kind       Kind
	Message    string
	Violations []FieldViolation
	Reason     EligibilityReason
}

func (e *Error) Error() string {
	if len(e.Violations) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the rule violation kind carried by err, or the empty kind
// when err is not a rule violation.
func KindOf(err error) Kind {
	var ruleErr *Error
	if errors.As(err, &ruleErr) {
		return ruleErr.Kind
	}
	return ""
}

// IsKind reports whether err is a rule violation of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
