package models

import "time"

// AssignmentStatus enumerates the lifecycle states of an assignment.
type AssignmentStatus string

const (
	// AssignmentStatusDraft means the assignment is not yet visible to learners.
	AssignmentStatusDraft AssignmentStatus = "draft"
	// AssignmentStatusPublished means the assignment accepts submissions.
	AssignmentStatusPublished AssignmentStatus = "published"
	// AssignmentStatusClosed means the assignment no longer accepts submissions.
	AssignmentStatusClosed AssignmentStatus = "closed"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusDraft, AssignmentStatusPublished, AssignmentStatusClosed:
		return true
	}
	return false
}

// Assignment is a gradable unit of work belonging to a course.
type Assignment struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	CourseID            uint             `gorm:"not null;index" json:"course_id"`
	Title               string           `gorm:"size:200;not null" json:"title"`
	Description         string           `gorm:"type:text" json:"description"`
	DueDate             time.Time        `gorm:"not null" json:"due_date"`
	ScoreWeight         float64          `gorm:"not null" json:"score_weight"`
	AllowLateSubmission bool             `gorm:"not null;default:false" json:"allow_late_submission"`
	AllowResubmission   bool             `gorm:"not null;default:false" json:"allow_resubmission"`
	Status              AssignmentStatus `gorm:"size:16;not null;default:draft" json:"status"`
	Version             int              `gorm:"not null;default:1" json:"version"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	Course              Course           `json:"course"`
	Submissions         []Submission
}

// IsPastDue returns true when the deadline has already passed at reference time.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
