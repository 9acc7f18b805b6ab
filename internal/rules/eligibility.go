package rules

import (
	"time"

	"github.com/edustack/edustack-api/internal/models"
)

// EligibilityReason is the human-facing reason code attached to a submission
// eligibility decision.
type EligibilityReason string

const (
	ReasonNotPublished           EligibilityReason = "not_published"
	ReasonClosed                 EligibilityReason = "closed"
	ReasonPastDueLateNotAllowed  EligibilityReason = "past_due_late_not_allowed"
	ReasonAlreadyGraded          EligibilityReason = "already_graded"
	ReasonResubmissionNotAllowed EligibilityReason = "resubmission_not_allowed"
)

// Eligibility is the decision whether a learner may submit now. Late marks
// an accepted submission that will be recorded as late, so callers can
// surface a warning instead of a plain success.
type Eligibility struct {
	CanSubmit bool              `json:"can_submit"`
	Late      bool              `json:"late"`
	Reason    EligibilityReason `json:"reason,omitempty"`
}

// EvaluateSubmission decides whether a new submission or resubmission may be
// accepted for the assignment at the reference instant. existing is nil for
// a learner's first submission.
func EvaluateSubmission(assignment models.Assignment, existing *models.Submission, now time.Time) Eligibility {
	switch assignment.Status {
	case models.AssignmentStatusDraft:
		return Eligibility{Reason: ReasonNotPublished}
	case models.AssignmentStatusClosed:
		return Eligibility{Reason: ReasonClosed}
	case models.AssignmentStatusPublished:
		// fall through to the submission-level checks
	default:
		return Eligibility{Reason: ReasonNotPublished}
	}

	if existing != nil {
		switch existing.Status {
		case models.SubmissionStatusGraded:
			// Graded is terminal for the learner path; only moderation may
			// move it further.
			return Eligibility{Reason: ReasonAlreadyGraded}
		case models.SubmissionStatusResubmissionRequired:
			// A requested resubmission is always honorable, subject only to
			// the deadline policy below.
		case models.SubmissionStatusSubmitted:
			if !assignment.AllowResubmission {
				return Eligibility{Reason: ReasonResubmissionNotAllowed}
			}
		}
	}

	if IsOverdue(assignment.DueDate, now) {
		if !assignment.AllowLateSubmission {
			return Eligibility{Reason: ReasonPastDueLateNotAllowed}
		}
		return Eligibility{CanSubmit: true, Late: true}
	}

	return Eligibility{CanSubmit: true}
}

// NotEligibleError turns a negative eligibility decision into the terminal
// typed error handed back to callers.
func NotEligibleError(e Eligibility) *Error {
	err := newError(KindNotEligible, "submission not accepted: %s", e.Reason)
	err.Reason = e.Reason
	return err
}
