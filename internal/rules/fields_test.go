package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validAssignmentFields() AssignmentFields {
	return AssignmentFields{
		Title:       "Sorting algorithms essay",
		Description: "Compare at least three sorting algorithms and discuss their complexity.",
		DueDate:     baseTime.Add(7 * 24 * time.Hour),
		ScoreWeight: 25,
	}
}

func TestValidateAssignmentFieldsAccepted(t *testing.T) {
	require.Empty(t, ValidateAssignmentFields(validAssignmentFields(), baseTime, false))
}

func TestValidateAssignmentFieldsCollectsAllViolations(t *testing.T) {
	fields := AssignmentFields{
		Title:       "ab",
		Description: "too short",
		DueDate:     baseTime.Add(-time.Hour),
		ScoreWeight: 120,
	}

	violations := ValidateAssignmentFields(fields, baseTime, false)
	require.Len(t, violations, 4)

	got := make(map[string]bool)
	for _, v := range violations {
		got[v.Field] = true
	}
	require.True(t, got["title"])
	require.True(t, got["description"])
	require.True(t, got["due_date"])
	require.True(t, got["score_weight"])
}

func TestValidateAssignmentFieldsForbiddenTitleChars(t *testing.T) {
	fields := validAssignmentFields()
	fields.Title = "Week 3 <script>"
	violations := ValidateAssignmentFields(fields, baseTime, false)
	require.Len(t, violations, 1)
	require.Equal(t, "title", violations[0].Field)
}

func TestValidateAssignmentFieldsDueDateTooFarAhead(t *testing.T) {
	fields := validAssignmentFields()
	fields.DueDate = baseTime.Add(MaxDueDateLead + time.Hour)
	violations := ValidateAssignmentFields(fields, baseTime, false)
	require.Len(t, violations, 1)
	require.Equal(t, "due_date", violations[0].Field)
}

func TestValidateAssignmentFieldsPastDueAllowed(t *testing.T) {
	fields := validAssignmentFields()
	fields.DueDate = baseTime.Add(-time.Hour)
	require.Empty(t, ValidateAssignmentFields(fields, baseTime, true))
}

func TestValidateAssignmentFieldsWeightPrecision(t *testing.T) {
	fields := validAssignmentFields()
	fields.ScoreWeight = 12.345
	violations := ValidateAssignmentFields(fields, baseTime, false)
	require.Len(t, violations, 1)
	require.Equal(t, "score_weight", violations[0].Field)
}

func TestValidateCourseFieldsDescriptionBound(t *testing.T) {
	require.Empty(t, ValidateCourseFields("Algorithms 101", "An introductory course on algorithms."))

	long := strings.Repeat("a", CourseDescriptionMaxLen+1)
	violations := ValidateCourseFields("Algorithms 101", long)
	require.Len(t, violations, 1)
	require.Equal(t, "description", violations[0].Field)
}

func TestValidateSubmissionContent(t *testing.T) {
	require.Empty(t, ValidateSubmissionContent("my answer", nil))

	link := "https://repo.example/work"
	require.Empty(t, ValidateSubmissionContent("my answer", &link))

	bad := "not a url"
	violations := ValidateSubmissionContent("my answer", &bad)
	require.Len(t, violations, 1)
	require.Equal(t, "link_url", violations[0].Field)

	violations = ValidateSubmissionContent("", nil)
	require.Len(t, violations, 1)
	require.Equal(t, "content", violations[0].Field)
}

func TestValidateFeedbackBounds(t *testing.T) {
	require.Empty(t, ValidateFeedback("good work"))
	require.Len(t, ValidateFeedback(""), 1)
	require.Len(t, ValidateFeedback(strings.Repeat("x", FeedbackMaxLen+1)), 1)
}

func TestInvalidFieldErrorNilOnEmpty(t *testing.T) {
	require.NoError(t, InvalidFieldError(nil))

	err := InvalidFieldError([]FieldViolation{{Field: "title", Message: "too short"}})
	require.Error(t, err)
	require.True(t, IsKind(err, KindInvalidField))
	require.Contains(t, err.Error(), "title")
}
