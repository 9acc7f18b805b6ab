package dto

import (
	"time"

	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/rules"
)

// SubmissionCreateRequest describes the payload for submitting work. The
// same payload serves both first submissions and resubmissions.
type SubmissionCreateRequest struct {
	AssignmentID uint    `json:"assignment_id" validate:"required"`
	LearnerID    uint    `json:"learner_id" validate:"required"`
	Content      string  `json:"content" validate:"required"`
	LinkURL      *string `json:"link_url"`
}

// SubmissionFilter narrows submission list queries.
type SubmissionFilter struct {
	AssignmentID *uint
	LearnerID    *uint
	Status       *string
}

// SubmissionResponse is the serialized representation returned to API clients.
type SubmissionResponse struct {
	ID           uint       `json:"id"`
	AssignmentID uint       `json:"assignment_id"`
	LearnerID    uint       `json:"learner_id"`
	Content      string     `json:"content"`
	LinkURL      *string    `json:"link_url,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	IsLate       bool       `json:"is_late"`
	Status       string     `json:"status"`
	Score        *float64   `json:"score,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
	// Warning surfaces a late-acceptance notice alongside the success.
	Warning string `json:"warning,omitempty"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		LearnerID:    model.LearnerID,
		Content:      model.Content,
		LinkURL:      model.LinkURL,
		SubmittedAt:  model.SubmittedAt,
		IsLate:       model.IsLate,
		Status:       string(model.Status),
		Score:        model.Score,
		Feedback:     model.Feedback,
		GradedAt:     model.GradedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

// EligibilityResponse reports whether a learner may submit right now.
type EligibilityResponse struct {
	CanSubmit bool   `json:"can_submit"`
	Late      bool   `json:"late"`
	Reason    string `json:"reason,omitempty"`
}

// NewEligibilityResponse converts an engine decision into a DTO.
func NewEligibilityResponse(decision rules.Eligibility) EligibilityResponse {
	return EligibilityResponse{
		CanSubmit: decision.CanSubmit,
		Late:      decision.Late,
		Reason:    string(decision.Reason),
	}
}
