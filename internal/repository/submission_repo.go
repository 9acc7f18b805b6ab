package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

// SubmissionFilter narrows submission queries.
type SubmissionFilter struct {
	AssignmentID *uint
	LearnerID    *uint
	Status       *models.SubmissionStatus
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByAssignmentAndLearner(ctx context.Context, assignmentID, learnerID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	// UpdateGuarded writes the submission only when both its version and its
	// prior status still match what the caller read. Last-writer-wins is not
	// acceptable for submissions: a stale resubmission must not overwrite a
	// grading decision, and racing grade/moderation writes must resolve
	// deterministically. Returns ErrVersionConflict on a precondition miss.
	UpdateGuarded(ctx context.Context, submission *models.Submission, expectedVersion int, expectedStatus models.SubmissionStatus) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}

	if filter.LearnerID != nil {
		query = query.Where("learner_id = ?", *filter.LearnerID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndLearner(ctx context.Context, assignmentID, learnerID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("learner_id = ?", learnerID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) UpdateGuarded(ctx context.Context, submission *models.Submission, expectedVersion int, expectedStatus models.SubmissionStatus) error {
	submission.Version = expectedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND version = ? AND status = ?", submission.ID, expectedVersion, expectedStatus).
		Select("*").
		Omit("id", "created_at", "Assignment").
		Updates(submission)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	return nil
}
