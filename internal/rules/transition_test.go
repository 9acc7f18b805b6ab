package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/models"
)

func draftAssignment() models.Assignment {
	return models.Assignment{
		ID:          1,
		CourseID:    7,
		Title:       "Graph traversal lab",
		Description: "Implement BFS and DFS over the provided adjacency lists.",
		DueDate:     baseTime.Add(7 * 24 * time.Hour),
		ScoreWeight: 30,
		Status:      models.AssignmentStatusDraft,
	}
}

func TestCheckTransitionPublishFromDraft(t *testing.T) {
	result, err := CheckTransition(draftAssignment(), models.AssignmentStatusPublished, TransitionInput{Now: baseTime, OtherWeights: []float64{40}})
	require.NoError(t, err)
	require.Empty(t, result.Warning)
}

func TestCheckTransitionPublishRejectsInvalidFields(t *testing.T) {
	a := draftAssignment()
	a.Title = "x"
	_, err := CheckTransition(a, models.AssignmentStatusPublished, TransitionInput{Now: baseTime})
	require.True(t, IsKind(err, KindInvalidField))
}

func TestCheckTransitionPublishRejectsWeightCap(t *testing.T) {
	a := draftAssignment()
	a.ScoreWeight = 50
	_, err := CheckTransition(a, models.AssignmentStatusPublished, TransitionInput{Now: baseTime, OtherWeights: []float64{60}})
	require.True(t, IsKind(err, KindWeightCapExceeded))
}

func TestCheckTransitionCloseWarnsWithSubmissions(t *testing.T) {
	a := draftAssignment()
	a.Status = models.AssignmentStatusPublished

	result, err := CheckTransition(a, models.AssignmentStatusClosed, TransitionInput{Now: baseTime})
	require.NoError(t, err)
	require.Empty(t, result.Warning)

	result, err = CheckTransition(a, models.AssignmentStatusClosed, TransitionInput{Now: baseTime, SubmissionCount: 3})
	require.NoError(t, err)
	require.NotEmpty(t, result.Warning)
}

func TestCheckTransitionReopenRequiresFutureDueDate(t *testing.T) {
	a := draftAssignment()
	a.Status = models.AssignmentStatusClosed

	_, err := CheckTransition(a, models.AssignmentStatusPublished, TransitionInput{Now: baseTime})
	require.NoError(t, err)

	a.DueDate = baseTime.Add(-24 * time.Hour)
	_, err = CheckTransition(a, models.AssignmentStatusPublished, TransitionInput{Now: baseTime})
	require.True(t, IsKind(err, KindInvalidTransition))
	require.Contains(t, err.Error(), "due date has already passed")

	// the dead-deadline rejection reads differently from a wrong-state one
	_, wrongState := CheckTransition(a, models.AssignmentStatusDraft, TransitionInput{Now: baseTime})
	require.NotEqual(t, err.Error(), wrongState.Error())
}

func TestCheckTransitionRejectsSameState(t *testing.T) {
	for _, status := range []models.AssignmentStatus{
		models.AssignmentStatusDraft,
		models.AssignmentStatusPublished,
		models.AssignmentStatusClosed,
	} {
		a := draftAssignment()
		a.Status = status
		_, err := CheckTransition(a, status, TransitionInput{Now: baseTime})
		require.True(t, IsKind(err, KindInvalidTransition), "status %s", status)
		require.Contains(t, err.Error(), "already")
	}
}

func TestCheckTransitionClosureOverAllPairs(t *testing.T) {
	statuses := []models.AssignmentStatus{
		models.AssignmentStatusDraft,
		models.AssignmentStatusPublished,
		models.AssignmentStatusClosed,
	}
	allowed := map[[2]models.AssignmentStatus]bool{
		{models.AssignmentStatusDraft, models.AssignmentStatusPublished}:  true,
		{models.AssignmentStatusPublished, models.AssignmentStatusClosed}: true,
		{models.AssignmentStatusClosed, models.AssignmentStatusPublished}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			a := draftAssignment()
			a.Status = from
			_, err := CheckTransition(a, to, TransitionInput{Now: baseTime, OtherWeights: nil})
			if allowed[[2]models.AssignmentStatus{from, to}] {
				require.NoError(t, err, "%s -> %s", from, to)
			} else {
				require.True(t, IsKind(err, KindInvalidTransition), "%s -> %s", from, to)
			}
		}
	}
}

func TestShouldAutoClose(t *testing.T) {
	a := draftAssignment()
	a.Status = models.AssignmentStatusPublished
	require.False(t, ShouldAutoClose(a, baseTime))
	require.True(t, ShouldAutoClose(a, a.DueDate.Add(time.Minute)))

	a.Status = models.AssignmentStatusDraft
	require.False(t, ShouldAutoClose(a, a.DueDate.Add(time.Minute)))
}
