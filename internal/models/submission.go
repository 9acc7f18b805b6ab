package models

import "time"

// SubmissionStatus enumerates the lifecycle states of a submission.
type SubmissionStatus string

const (
	// SubmissionStatusSubmitted indicates the submission awaits grading.
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded SubmissionStatus = "graded"
	// SubmissionStatusResubmissionRequired indicates the learner must submit again.
	SubmissionStatusResubmissionRequired SubmissionStatus = "resubmission_required"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusSubmitted, SubmissionStatusGraded, SubmissionStatusResubmissionRequired:
		return true
	}
	return false
}

// Submission is a learner's attempt at an assignment. At most one active
// record exists per (assignment, learner) pair; resubmissions overwrite it.
type Submission struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	AssignmentID uint             `gorm:"not null;uniqueIndex:idx_submission_assignment_learner" json:"assignment_id"`
	LearnerID    uint             `gorm:"not null;uniqueIndex:idx_submission_assignment_learner" json:"learner_id"`
	Content      string           `gorm:"type:text;not null" json:"content"`
	LinkURL      *string          `gorm:"size:512" json:"link_url"`
	SubmittedAt  time.Time        `gorm:"not null" json:"submitted_at"`
	IsLate       bool             `gorm:"not null;default:false" json:"is_late"`
	Status       SubmissionStatus `gorm:"size:32;not null;default:submitted" json:"status"`
	Score        *float64         `json:"score"`
	Feedback     string           `gorm:"type:text" json:"feedback"`
	GradedAt     *time.Time       `json:"graded_at"`
	GradedBy     *uint            `json:"graded_by"`
	Version      int              `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Assignment   Assignment       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
}

// IsGraded reports whether the submission carries a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
