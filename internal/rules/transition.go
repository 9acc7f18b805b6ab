package rules

import (
	"time"

	"github.com/edustack/edustack-api/internal/models"
)

// TransitionInput carries the context the transition guards evaluate
// against. OtherWeights holds the score weights of the course's other
// assignments for the publish-time cap check.
type TransitionInput struct {
	Now             time.Time
	OtherWeights    []float64
	SubmissionCount int
}

// TransitionResult reports a successful transition decision. Warning, when
// set, must be surfaced to the caller alongside the success.
type TransitionResult struct {
	Warning string
}

type transitionGuard func(a models.Assignment, in TransitionInput) (TransitionResult, error)

// transitionTable holds an entry for every allowed (from, to) pair. Any
// pair absent from the table is rejected.
var transitionTable = map[models.AssignmentStatus]map[models.AssignmentStatus]transitionGuard{
	models.AssignmentStatusDraft: {
		models.AssignmentStatusPublished: guardPublishFromDraft,
	},
	models.AssignmentStatusPublished: {
		models.AssignmentStatusClosed: guardClose,
	},
	models.AssignmentStatusClosed: {
		models.AssignmentStatusPublished: guardReopen,
	},
}

// CheckTransition validates the requested lifecycle transition and its
// guards. It performs no mutation; the caller applies the new status only
// on success.
func CheckTransition(a models.Assignment, to models.AssignmentStatus, in TransitionInput) (TransitionResult, error) {
	if a.Status == to {
		return TransitionResult{}, newError(KindInvalidTransition, "assignment is already %s", to)
	}

	guards, ok := transitionTable[a.Status]
	if !ok {
		return TransitionResult{}, newError(KindInvalidTransition, "unknown assignment status %q", a.Status)
	}
	guard, ok := guards[to]
	if !ok {
		return TransitionResult{}, newError(KindInvalidTransition, "cannot transition assignment from %s to %s", a.Status, to)
	}

	return guard(a, in)
}

// ShouldAutoClose reports whether an external scheduler may close the
// assignment: published and past its due date.
func ShouldAutoClose(a models.Assignment, now time.Time) bool {
	return a.Status == models.AssignmentStatusPublished && IsOverdue(a.DueDate, now)
}

func guardPublishFromDraft(a models.Assignment, in TransitionInput) (TransitionResult, error) {
	fields := AssignmentFields{
		Title:       a.Title,
		Description: a.Description,
		DueDate:     a.DueDate,
		ScoreWeight: a.ScoreWeight,
	}
	if err := InvalidFieldError(ValidateAssignmentFields(fields, in.Now, false)); err != nil {
		return TransitionResult{}, err
	}

	check := CheckWeightTotal(a.ScoreWeight, in.OtherWeights, WeightCap)
	if !check.Valid {
		return TransitionResult{}, WeightCapError(check, WeightCap)
	}

	if !a.DueDate.After(in.Now) {
		return TransitionResult{}, newError(KindInvalidTransition, "cannot publish: due date must be in the future")
	}

	return TransitionResult{}, nil
}

func guardClose(_ models.Assignment, in TransitionInput) (TransitionResult, error) {
	if in.SubmissionCount > 0 {
		return TransitionResult{Warning: "closing stops submission intake; existing submissions remain gradable"}, nil
	}
	return TransitionResult{}, nil
}

func guardReopen(a models.Assignment, in TransitionInput) (TransitionResult, error) {
	// A dead deadline cannot be reopened; the assignment needs a new due
	// date first, which only exists on the draft edit path.
	if !a.DueDate.After(in.Now) {
		return TransitionResult{}, newError(KindInvalidTransition, "cannot reopen: due date has already passed")
	}
	return TransitionResult{}, nil
}
