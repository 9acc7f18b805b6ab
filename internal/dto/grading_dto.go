package dto

// GradeSubmissionRequest describes an instructor grading decision. Score is
// required when action is "grade" and forbidden when action is
// "request_resubmission"; the engine enforces that coupling.
type GradeSubmissionRequest struct {
	Action   string   `json:"action" validate:"required,oneof=grade request_resubmission"`
	Score    *float64 `json:"score" validate:"omitempty,min=0,max=100"`
	Feedback string   `json:"feedback" validate:"required"`
}
