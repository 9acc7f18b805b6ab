package dto

import (
	"time"

	"github.com/edustack/edustack-api/internal/models"
)

// ReportCreateRequest describes the payload for filing an abuse report.
type ReportCreateRequest struct {
	ReportedType string `json:"reported_type" validate:"required,oneof=course assignment submission user"`
	ReportedID   uint   `json:"reported_id" validate:"required"`
	ReporterID   uint   `json:"reporter_id" validate:"required"`
	Reason       string `json:"reason" validate:"required"`
}

// ModerationActionRequest describes the operator action taken on a report.
type ModerationActionRequest struct {
	ActionType string `json:"action_type" validate:"required,oneof=invalidate_submission warn restrict_account dismiss"`
	Reason     string `json:"reason" validate:"required"`
}

// ReportResponse is the serialized representation returned to API clients.
type ReportResponse struct {
	ID           uint       `json:"id"`
	ReportedType string     `json:"reported_type"`
	ReportedID   uint       `json:"reported_id"`
	ReporterID   uint       `json:"reporter_id"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewReportResponse converts a model into a DTO.
func NewReportResponse(model models.Report) ReportResponse {
	return ReportResponse{
		ID:           model.ID,
		ReportedType: string(model.ReportedType),
		ReportedID:   model.ReportedID,
		ReporterID:   model.ReporterID,
		Reason:       model.Reason,
		Status:       string(model.Status),
		ResolvedAt:   model.ResolvedAt,
		CreatedAt:    model.CreatedAt,
	}
}

// NewReportResponseSlice converts a slice of models into DTOs.
func NewReportResponseSlice(reports []models.Report) []ReportResponse {
	responses := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		responses = append(responses, NewReportResponse(report))
	}

	return responses
}

// ModerationActionResponse serializes one action-log entry.
type ModerationActionResponse struct {
	ID          uint      `json:"id"`
	ReportID    uint      `json:"report_id"`
	ActionType  string    `json:"action_type"`
	Reason      string    `json:"reason"`
	OperatorID  uint      `json:"operator_id"`
	PerformedAt time.Time `json:"performed_at"`
}

// NewModerationActionResponse converts a model into a DTO.
func NewModerationActionResponse(model models.ModerationAction) ModerationActionResponse {
	return ModerationActionResponse{
		ID:          model.ID,
		ReportID:    model.ReportID,
		ActionType:  string(model.ActionType),
		Reason:      model.Reason,
		OperatorID:  model.OperatorID,
		PerformedAt: model.PerformedAt,
	}
}

// NewModerationActionResponseSlice converts a slice of models into DTOs.
func NewModerationActionResponseSlice(actions []models.ModerationAction) []ModerationActionResponse {
	responses := make([]ModerationActionResponse, 0, len(actions))
	for _, action := range actions {
		responses = append(responses, NewModerationActionResponse(action))
	}

	return responses
}
