package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

// AssignmentFilter narrows assignment queries.
type AssignmentFilter struct {
	CourseID *uint
	Status   *models.AssignmentStatus
}

// AssignmentRepository defines data operations for assignments.
type AssignmentRepository interface {
	List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	// Update writes the assignment guarded by its expected version and
	// bumps the version on success. Returns ErrVersionConflict when the
	// stored version no longer matches.
	Update(ctx context.Context, assignment *models.Assignment, expectedVersion int) error
	Delete(ctx context.Context, id uint) error
	// ListOtherWeights returns the score weights of every other assignment
	// in the course, for the weight-cap check.
	ListOtherWeights(ctx context.Context, courseID, excludingID uint) ([]float64, error)
	// ListPublishedDueBetween returns published assignments whose due date
	// falls inside (from, to], ordered soonest first.
	ListPublishedDueBetween(ctx context.Context, from, to time.Time) ([]models.Assignment, error)
	CountSubmissions(ctx context.Context, assignmentID uint) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{})

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var assignments []models.Assignment
	if err := query.Order("due_date ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment, expectedVersion int) error {
	assignment.Version = expectedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND version = ?", assignment.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(assignment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	return nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *assignmentRepository) ListOtherWeights(ctx context.Context, courseID, excludingID uint) ([]float64, error) {
	var weights []float64
	query := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("course_id = ?", courseID)
	if excludingID != 0 {
		query = query.Where("id <> ?", excludingID)
	}
	if err := query.Pluck("score_weight", &weights).Error; err != nil {
		return nil, err
	}

	return weights, nil
}

func (r *assignmentRepository) ListPublishedDueBetween(ctx context.Context, from, to time.Time) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("status = ?", models.AssignmentStatusPublished).
		Where("due_date > ? AND due_date <= ?", from, to).
		Order("due_date ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) CountSubmissions(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
