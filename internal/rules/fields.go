package rules

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// Field length bounds shared by create and edit paths.
const (
	TitleMinLen = 3
	TitleMaxLen = 200

	AssignmentDescriptionMinLen = 10
	AssignmentDescriptionMaxLen = 5000
	CourseDescriptionMinLen     = 10
	CourseDescriptionMaxLen     = 2000

	ContentMinLen = 1
	ContentMaxLen = 5000

	FeedbackMinLen = 1
	FeedbackMaxLen = 2000

	// MaxDueDateLead bounds how far in the future a due date may be set.
	MaxDueDateLead = 365 * 24 * time.Hour
)

const titleForbiddenChars = "<>{}"

// FieldViolation describes a single invalid field. Validators return every
// violation at once so callers can surface them all in one round trip.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AssignmentFields is the validatable subset of an assignment.
type AssignmentFields struct {
	Title       string
	Description string
	DueDate     time.Time
	ScoreWeight float64
}

// ValidateAssignmentFields checks every field of an assignment and returns
// all violations. When allowPastDue is false the due date must lie strictly
// in the future at the reference instant.
func ValidateAssignmentFields(f AssignmentFields, now time.Time, allowPastDue bool) []FieldViolation {
	violations := validateTitle(f.Title)
	violations = append(violations, validateLength("description", f.Description, AssignmentDescriptionMinLen, AssignmentDescriptionMaxLen)...)

	if f.DueDate.IsZero() {
		violations = append(violations, FieldViolation{Field: "due_date", Message: "due date is required"})
	} else {
		if !allowPastDue && !f.DueDate.After(now) {
			violations = append(violations, FieldViolation{Field: "due_date", Message: "due date must be in the future"})
		}
		if f.DueDate.After(now.Add(MaxDueDateLead)) {
			violations = append(violations, FieldViolation{Field: "due_date", Message: "due date must be within one year"})
		}
	}

	if f.ScoreWeight < 0 || f.ScoreWeight > WeightCap {
		violations = append(violations, FieldViolation{Field: "score_weight", Message: "score weight must be between 0 and 100"})
	} else if Round2(f.ScoreWeight) != f.ScoreWeight {
		violations = append(violations, FieldViolation{Field: "score_weight", Message: "score weight allows at most two decimal places"})
	}

	return violations
}

// ValidateCourseFields checks the title and description of a course and
// returns all violations. Structurally identical to the assignment
// validator, with the tighter course description bound.
func ValidateCourseFields(title, description string) []FieldViolation {
	violations := validateTitle(title)
	return append(violations, validateLength("description", description, CourseDescriptionMinLen, CourseDescriptionMaxLen)...)
}

// ValidateSubmissionContent checks learner-provided submission fields.
func ValidateSubmissionContent(content string, linkURL *string) []FieldViolation {
	violations := validateLength("content", content, ContentMinLen, ContentMaxLen)

	if linkURL != nil && strings.TrimSpace(*linkURL) != "" {
		parsed, err := url.Parse(strings.TrimSpace(*linkURL))
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			violations = append(violations, FieldViolation{Field: "link_url", Message: "link url must be a valid absolute URL"})
		}
	}

	return violations
}

// ValidateFeedback checks grading feedback bounds.
func ValidateFeedback(feedback string) []FieldViolation {
	return validateLength("feedback", feedback, FeedbackMinLen, FeedbackMaxLen)
}

// InvalidFieldError wraps a non-empty violation list into a terminal error.
// Returns nil when the list is empty.
func InvalidFieldError(violations []FieldViolation) error {
	if len(violations) == 0 {
		return nil
	}
	return &Error{
		Kind:       KindInvalidField,
		Message:    fmt.Sprintf("%d field(s) failed validation", len(violations)),
		Violations: violations,
	}
}

// InvalidFeedbackError wraps feedback violations under their own kind.
func InvalidFeedbackError(violations []FieldViolation) error {
	if len(violations) == 0 {
		return nil
	}
	return &Error{
		Kind:       KindInvalidFeedback,
		Message:    "feedback failed validation",
		Violations: violations,
	}
}

func validateTitle(title string) []FieldViolation {
	violations := validateLength("title", title, TitleMinLen, TitleMaxLen)
	if strings.ContainsAny(title, titleForbiddenChars) {
		violations = append(violations, FieldViolation{Field: "title", Message: "title must not contain < > { or }"})
	}
	return violations
}

func validateLength(field, value string, min, max int) []FieldViolation {
	length := utf8.RuneCountInString(strings.TrimSpace(value))
	if length < min {
		return []FieldViolation{{Field: field, Message: fmt.Sprintf("%s must be at least %d characters", field, min)}}
	}
	if length > max {
		return []FieldViolation{{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, max)}}
	}
	return nil
}
