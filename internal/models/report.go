package models

import "time"

// ReportStatus enumerates the handling states of an abuse report.
type ReportStatus string

const (
	// ReportStatusReceived indicates the report awaits triage.
	ReportStatusReceived ReportStatus = "received"
	// ReportStatusInvestigating indicates an operator is looking into it.
	ReportStatusInvestigating ReportStatus = "investigating"
	// ReportStatusResolved is terminal; no further action may be taken.
	ReportStatusResolved ReportStatus = "resolved"
)

// ReportTargetType identifies the kind of entity a report is filed against.
type ReportTargetType string

const (
	ReportTargetCourse     ReportTargetType = "course"
	ReportTargetAssignment ReportTargetType = "assignment"
	ReportTargetSubmission ReportTargetType = "submission"
	ReportTargetUser       ReportTargetType = "user"
)

// Valid reports whether the target type is one of the known kinds.
func (t ReportTargetType) Valid() bool {
	switch t {
	case ReportTargetCourse, ReportTargetAssignment, ReportTargetSubmission, ReportTargetUser:
		return true
	}
	return false
}

// Report is an abuse report filed against a platform entity.
type Report struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	ReportedType ReportTargetType `gorm:"size:32;not null" json:"reported_type"`
	ReportedID   uint             `gorm:"not null;index" json:"reported_id"`
	ReporterID   uint             `gorm:"not null" json:"reporter_id"`
	Reason       string           `gorm:"type:text;not null" json:"reason"`
	Status       ReportStatus     `gorm:"size:16;not null;default:received" json:"status"`
	ResolvedAt   *time.Time       `json:"resolved_at"`
	Version      int              `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// IsResolved reports whether the report reached its terminal state.
func (r Report) IsResolved() bool {
	return r.Status == ReportStatusResolved
}
