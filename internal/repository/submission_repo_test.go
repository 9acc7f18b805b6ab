package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

func setupSubmissionTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Course{}, &models.Assignment{}, &models.Submission{}))
	return db
}

func seedSubmission(t *testing.T, db *gorm.DB) models.Submission {
	t.Helper()

	assignment := models.Assignment{
		CourseID:    1,
		Title:       "Heaps worksheet",
		Description: "Implement a binary heap and trace its operations.",
		DueDate:     time.Now().Add(48 * time.Hour),
		ScoreWeight: 20,
		Status:      models.AssignmentStatusPublished,
	}
	require.NoError(t, db.Create(&assignment).Error)

	submission := models.Submission{
		AssignmentID: assignment.ID,
		LearnerID:    3,
		Content:      "heap answers",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
		Version:      1,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}

func TestSubmissionRepositoryUpdateGuarded(t *testing.T) {
	db := setupSubmissionTestDB(t)
	repo := NewSubmissionRepository(db)
	seeded := seedSubmission(t, db)

	loaded, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	score := 88.0
	now := time.Now()
	loaded.Status = models.SubmissionStatusGraded
	loaded.Score = &score
	loaded.Feedback = "solid"
	loaded.GradedAt = &now

	require.NoError(t, repo.UpdateGuarded(context.Background(), &loaded, 1, models.SubmissionStatusSubmitted))

	stored, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, stored.Status)
	require.Equal(t, 2, stored.Version)
	require.NotNil(t, stored.Score)
	require.Equal(t, 88.0, *stored.Score)
}

func TestSubmissionRepositoryUpdateGuardedStaleVersion(t *testing.T) {
	db := setupSubmissionTestDB(t)
	repo := NewSubmissionRepository(db)
	seeded := seedSubmission(t, db)

	first, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	first.Feedback = "first writer"
	require.NoError(t, repo.UpdateGuarded(context.Background(), &first, 1, models.SubmissionStatusSubmitted))

	// the second writer read version 1, which no longer exists
	second.Feedback = "second writer"
	err = repo.UpdateGuarded(context.Background(), &second, 1, models.SubmissionStatusSubmitted)
	require.ErrorIs(t, err, ErrVersionConflict)

	stored, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Equal(t, "first writer", stored.Feedback)
}

func TestSubmissionRepositoryUpdateGuardedStatusPrecondition(t *testing.T) {
	db := setupSubmissionTestDB(t)
	repo := NewSubmissionRepository(db)
	seeded := seedSubmission(t, db)

	loaded, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	// caller believes the submission is still graded, but it is submitted
	loaded.Feedback = "stale decision"
	err = repo.UpdateGuarded(context.Background(), &loaded, 1, models.SubmissionStatusGraded)
	require.ErrorIs(t, err, ErrVersionConflict)
}

func TestSubmissionRepositoryGetByAssignmentAndLearner(t *testing.T) {
	db := setupSubmissionTestDB(t)
	repo := NewSubmissionRepository(db)
	seeded := seedSubmission(t, db)

	found, err := repo.GetByAssignmentAndLearner(context.Background(), seeded.AssignmentID, seeded.LearnerID)
	require.NoError(t, err)
	require.Equal(t, seeded.ID, found.ID)

	_, err = repo.GetByAssignmentAndLearner(context.Background(), seeded.AssignmentID, 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
