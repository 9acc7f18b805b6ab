package dto

import (
	"time"

	"github.com/edustack/edustack-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
// New assignments always start in draft.
type AssignmentCreateRequest struct {
	CourseID            uint    `json:"course_id" validate:"required"`
	Title               string  `json:"title" validate:"required"`
	Description         string  `json:"description" validate:"required"`
	DueDate             string  `json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	ScoreWeight         float64 `json:"score_weight" validate:"min=0,max=100"`
	AllowLateSubmission bool    `json:"allow_late_submission"`
	AllowResubmission   bool    `json:"allow_resubmission"`
}

// AssignmentUpdateRequest describes the payload for editing a draft
// assignment. Published and closed assignments reject field edits.
type AssignmentUpdateRequest struct {
	Title               *string  `json:"title"`
	Description         *string  `json:"description"`
	DueDate             *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ScoreWeight         *float64 `json:"score_weight" validate:"omitempty,min=0,max=100"`
	AllowLateSubmission *bool    `json:"allow_late_submission"`
	AllowResubmission   *bool    `json:"allow_resubmission"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID                  uint      `json:"id"`
	CourseID            uint      `json:"course_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	DueDate             time.Time `json:"due_date"`
	ScoreWeight         float64   `json:"score_weight"`
	AllowLateSubmission bool      `json:"allow_late_submission"`
	AllowResubmission   bool      `json:"allow_resubmission"`
	Status              string    `json:"status"`
	DaysUntilDue        int       `json:"days_until_due"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	// Warning carries advisory context such as "closing stops intake".
	Warning string `json:"warning,omitempty"`
}

// NewAssignmentResponse converts a model into a DTO. daysUntilDue is
// computed by the service against its injected clock.
func NewAssignmentResponse(model models.Assignment, daysUntilDue int) AssignmentResponse {
	return AssignmentResponse{
		ID:                  model.ID,
		CourseID:            model.CourseID,
		Title:               model.Title,
		Description:         model.Description,
		DueDate:             model.DueDate,
		ScoreWeight:         model.ScoreWeight,
		AllowLateSubmission: model.AllowLateSubmission,
		AllowResubmission:   model.AllowResubmission,
		Status:              string(model.Status),
		DaysUntilDue:        daysUntilDue,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}
