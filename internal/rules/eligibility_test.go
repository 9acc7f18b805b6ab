package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/models"
)

func publishedAssignment() models.Assignment {
	a := draftAssignment()
	a.Status = models.AssignmentStatusPublished
	return a
}

func TestEvaluateSubmissionDraftAndClosed(t *testing.T) {
	a := draftAssignment()
	decision := EvaluateSubmission(a, nil, baseTime)
	require.False(t, decision.CanSubmit)
	require.Equal(t, ReasonNotPublished, decision.Reason)

	a.Status = models.AssignmentStatusClosed
	decision = EvaluateSubmission(a, nil, baseTime)
	require.False(t, decision.CanSubmit)
	require.Equal(t, ReasonClosed, decision.Reason)
}

func TestEvaluateSubmissionFirstAttempt(t *testing.T) {
	a := publishedAssignment()

	decision := EvaluateSubmission(a, nil, baseTime)
	require.True(t, decision.CanSubmit)
	require.False(t, decision.Late)

	// past due without a late policy
	overdue := a.DueDate.Add(time.Hour)
	decision = EvaluateSubmission(a, nil, overdue)
	require.False(t, decision.CanSubmit)
	require.Equal(t, ReasonPastDueLateNotAllowed, decision.Reason)

	// past due with a late policy: accepted but flagged
	a.AllowLateSubmission = true
	decision = EvaluateSubmission(a, nil, overdue)
	require.True(t, decision.CanSubmit)
	require.True(t, decision.Late)
}

func TestEvaluateSubmissionGradedIsTerminal(t *testing.T) {
	a := publishedAssignment()
	a.AllowResubmission = true
	existing := &models.Submission{Status: models.SubmissionStatusGraded}

	decision := EvaluateSubmission(a, existing, baseTime)
	require.False(t, decision.CanSubmit)
	require.Equal(t, ReasonAlreadyGraded, decision.Reason)
}

func TestEvaluateSubmissionResubmissionRequiredAlwaysHonorable(t *testing.T) {
	a := publishedAssignment()
	a.AllowResubmission = false
	existing := &models.Submission{Status: models.SubmissionStatusResubmissionRequired}

	decision := EvaluateSubmission(a, existing, baseTime)
	require.True(t, decision.CanSubmit)

	// still subject to the deadline policy
	decision = EvaluateSubmission(a, existing, a.DueDate.Add(time.Hour))
	require.False(t, decision.CanSubmit)
	require.Equal(t, ReasonPastDueLateNotAllowed, decision.Reason)
}

func TestEvaluateSubmissionResubmitNeedsPolicy(t *testing.T) {
	a := publishedAssignment()
	existing := &models.Submission{Status: models.SubmissionStatusSubmitted}

	decision := EvaluateSubmission(a, existing, baseTime)
	require.False(t, decision.CanSubmit)
	require.Equal(t, ReasonResubmissionNotAllowed, decision.Reason)

	a.AllowResubmission = true
	decision = EvaluateSubmission(a, existing, baseTime)
	require.True(t, decision.CanSubmit)
}

func TestNotEligibleErrorCarriesReason(t *testing.T) {
	err := NotEligibleError(Eligibility{Reason: ReasonClosed})
	require.True(t, IsKind(err, KindNotEligible))
	require.Equal(t, ReasonClosed, err.Reason)
	require.Contains(t, err.Error(), "closed")
}
