package models

import (
	"time"

	"gorm.io/datatypes"
)

// ModerationActionType enumerates the actions an operator may take on a report.
type ModerationActionType string

const (
	// ModerationActionInvalidateSubmission forces the reported submission
	// back into resubmission_required.
	ModerationActionInvalidateSubmission ModerationActionType = "invalidate_submission"
	// ModerationActionWarn records a warning against the reported party.
	ModerationActionWarn ModerationActionType = "warn"
	// ModerationActionRestrictAccount records an account restriction request.
	ModerationActionRestrictAccount ModerationActionType = "restrict_account"
	// ModerationActionDismiss closes the report without any business effect.
	ModerationActionDismiss ModerationActionType = "dismiss"
)

// Valid reports whether the action type is one of the known kinds.
func (t ModerationActionType) Valid() bool {
	switch t {
	case ModerationActionInvalidateSubmission, ModerationActionWarn,
		ModerationActionRestrictAccount, ModerationActionDismiss:
		return true
	}
	return false
}

// ModerationAction is an append-only record of an operator action on a
// report. Rows are never updated or deleted.
type ModerationAction struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	ReportID    uint                 `gorm:"not null;index" json:"report_id"`
	ActionType  ModerationActionType `gorm:"size:32;not null" json:"action_type"`
	Reason      string               `gorm:"type:text;not null" json:"reason"`
	OperatorID  uint                 `gorm:"not null" json:"operator_id"`
	PerformedAt time.Time            `gorm:"not null" json:"performed_at"`
	Metadata    datatypes.JSONMap    `json:"metadata"`
	CreatedAt   time.Time            `json:"created_at"`
}
