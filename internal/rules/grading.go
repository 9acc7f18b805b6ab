package rules

import (
	"time"

	"github.com/edustack/edustack-api/internal/models"
)

// GradeAction is the instructor's grading decision.
type GradeAction string

const (
	// GradeActionGrade records a final score with feedback.
	GradeActionGrade GradeAction = "grade"
	// GradeActionRequestResubmission sends the submission back to the learner.
	GradeActionRequestResubmission GradeAction = "request_resubmission"
)

// Valid reports whether the action is one of the known grading decisions.
func (a GradeAction) Valid() bool {
	return a == GradeActionGrade || a == GradeActionRequestResubmission
}

// Authority identifies which workflow a grading mutation originates from.
// Moderation authority alone may override the submitted-only sequencing
// rule, so the exception is visible at the type level rather than hidden in
// a separate code path.
type Authority string

const (
	AuthorityInstructor Authority = "instructor"
	AuthorityModeration Authority = "moderation"
)

// MaxScore bounds an individual grading score.
const MaxScore = 100.0

// GradingCommand is a validated-and-applied grading decision.
type GradingCommand struct {
	Action    GradeAction
	Score     *float64
	Feedback  string
	Authority Authority
}

// ApplyGrading validates the command against the submission's current state
// and, on success, mutates the submission in place. Each successful call
// fully overwrites prior grading state, so repeating a call is safe.
// The submission is untouched when an error is returned.
func ApplyGrading(s *models.Submission, cmd GradingCommand, now time.Time, graderID uint) error {
	if !cmd.Action.Valid() {
		return newError(KindInvalidScore, "unknown grading action %q", cmd.Action)
	}

	if err := InvalidFeedbackError(ValidateFeedback(cmd.Feedback)); err != nil {
		return err
	}

	switch cmd.Action {
	case GradeActionGrade:
		if cmd.Score == nil {
			return newError(KindInvalidScore, "score is required when grading")
		}
		if *cmd.Score < 0 || *cmd.Score > MaxScore {
			return newError(KindInvalidScore, "score must be between 0 and %.0f", MaxScore)
		}
	case GradeActionRequestResubmission:
		if cmd.Score != nil {
			return newError(KindScoreNotAllowed, "score must not be supplied when requesting resubmission")
		}
	}

	// A submission awaiting resubmission must first receive a fresh learner
	// attempt before it can be scored again; graded submissions may be
	// re-graded (each call overwrites the prior decision). Moderation
	// authority supersedes this sequencing.
	if cmd.Authority != AuthorityModeration &&
		cmd.Action == GradeActionGrade &&
		s.Status == models.SubmissionStatusResubmissionRequired {
		return newError(KindInvalidSourceState, "cannot grade a submission awaiting resubmission")
	}

	gradedAt := now
	grader := graderID
	s.Feedback = cmd.Feedback
	s.GradedAt = &gradedAt
	s.GradedBy = &grader

	switch cmd.Action {
	case GradeActionGrade:
		score := Round2(*cmd.Score)
		s.Score = &score
		s.Status = models.SubmissionStatusGraded
	case GradeActionRequestResubmission:
		s.Score = nil
		s.Status = models.SubmissionStatusResubmissionRequired
	}

	return nil
}
