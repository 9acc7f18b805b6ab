package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/observability"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/rules"
)

// ErrReportNotFound indicates the report could not be found.
var ErrReportNotFound = errors.New("report not found")

// ModerationService handles abuse reports and the operator actions taken on
// them. Actions are append-only; resolving a report is terminal.
type ModerationService interface {
	CreateReport(ctx context.Context, payload dto.ReportCreateRequest, actor ActivityActor) (dto.ReportResponse, error)
	GetReport(ctx context.Context, id uint) (dto.ReportResponse, error)
	ListReports(ctx context.Context, status *models.ReportStatus, reportedType *models.ReportTargetType) ([]dto.ReportResponse, error)
	HandleAction(ctx context.Context, reportID uint, payload dto.ModerationActionRequest, actor ActivityActor) (dto.ReportResponse, error)
	ListActions(ctx context.Context, reportID uint) ([]dto.ModerationActionResponse, error)
}

type moderationService struct {
	reports     repository.ReportRepository
	actions     repository.ActionLogRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      EventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewModerationService constructs the moderation service.
func NewModerationService(
	reports repository.ReportRepository,
	actions repository.ActionLogRepository,
	submissions repository.SubmissionRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	events EventPublisher,
	logger zerolog.Logger,
) ModerationService {
	return &moderationService{
		reports:     reports,
		actions:     actions,
		submissions: submissions,
		validator:   validate,
		activity:    activity,
		events:      events,
		logger:      logger.With().Str("component", "moderation_service").Logger(),
		now:         time.Now,
	}
}

func (s *moderationService) CreateReport(ctx context.Context, payload dto.ReportCreateRequest, actor ActivityActor) (dto.ReportResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReportResponse{}, err
	}

	report := models.Report{
		ReportedType: models.ReportTargetType(payload.ReportedType),
		ReportedID:   payload.ReportedID,
		ReporterID:   payload.ReporterID,
		Reason:       strings.TrimSpace(payload.Reason),
		Status:       models.ReportStatusReceived,
		Version:      1,
	}

	if err := s.reports.Create(ctx, &report); err != nil {
		return dto.ReportResponse{}, err
	}

	s.recordActivity(ctx, actor, "report.created", report.ID, map[string]interface{}{
		"reported_type": string(report.ReportedType),
		"reported_id":   report.ReportedID,
	})

	return dto.NewReportResponse(report), nil
}

func (s *moderationService) GetReport(ctx context.Context, id uint) (dto.ReportResponse, error) {
	report, err := s.getReport(ctx, id)
	if err != nil {
		return dto.ReportResponse{}, err
	}
	return dto.NewReportResponse(report), nil
}

func (s *moderationService) ListReports(ctx context.Context, status *models.ReportStatus, reportedType *models.ReportTargetType) ([]dto.ReportResponse, error) {
	reports, err := s.reports.List(ctx, repository.ReportFilter{Status: status, ReportedType: reportedType})
	if err != nil {
		return nil, err
	}
	return dto.NewReportResponseSlice(reports), nil
}

func (s *moderationService) HandleAction(ctx context.Context, reportID uint, payload dto.ModerationActionRequest, actor ActivityActor) (dto.ReportResponse, error) {
	tracer := otel.Tracer("github.com/edustack/edustack-api/internal/service/moderation")
	ctx, span := tracer.Start(ctx, "moderation.apply")
	span.SetAttributes(
		attribute.Int64("moderation.report_id", int64(reportID)),
		attribute.Int64("moderation.actor_id", int64(actor.ID)),
		attribute.String("moderation.action", payload.ActionType),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ReportResponse{}, err
	}

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "report_lookup_failed")
		return dto.ReportResponse{}, err
	}

	// Resolved is terminal. A second operator racing on the same report gets
	// a deterministic rejection here, or a version conflict below if both
	// read the unresolved row.
	if report.IsResolved() {
		err := &rules.Error{
			Kind:    rules.KindTargetAlreadyProcessed,
			Message: fmt.Sprintf("report %d is already resolved", report.ID),
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "report_already_resolved")
		return dto.ReportResponse{}, err
	}

	actionType := models.ModerationActionType(payload.ActionType)
	reason := strings.TrimSpace(payload.Reason)
	now := s.now()

	if actionType == models.ModerationActionInvalidateSubmission && report.ReportedType != models.ReportTargetSubmission {
		err := &rules.Error{
			Kind:    rules.KindInvalidField,
			Message: fmt.Sprintf("cannot invalidate a %s report target", report.ReportedType),
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid_report_target")
		return dto.ReportResponse{}, err
	}

	// The action log entry is written before any business mutation so the
	// trail survives even when the mutation half fails partway.
	action := models.ModerationAction{
		ReportID:    report.ID,
		ActionType:  actionType,
		Reason:      reason,
		OperatorID:  actor.ID,
		PerformedAt: now,
		Metadata: datatypes.JSONMap{
			"reported_type": string(report.ReportedType),
			"reported_id":   report.ReportedID,
		},
	}
	if err := s.actions.Append(ctx, &action); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "action_log_append_failed")
		return dto.ReportResponse{}, err
	}

	if actionType == models.ModerationActionInvalidateSubmission {
		if err := s.invalidateSubmission(ctx, report, reason, actor); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "submission_invalidation_failed")
			return dto.ReportResponse{}, err
		}
	}

	report.Status = models.ReportStatusResolved
	report.ResolvedAt = &now
	if err := s.reports.Update(ctx, &report, report.Version); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "report_update_failed")
		return dto.ReportResponse{}, err
	}

	observability.ModerationActions().WithLabelValues(string(actionType)).Inc()

	s.recordActivity(ctx, actor, "report.resolved", report.ID, map[string]interface{}{
		"action_type":   string(actionType),
		"reported_type": string(report.ReportedType),
		"reported_id":   report.ReportedID,
	})

	if s.events != nil {
		_ = s.events.Publish(ctx, DomainEvent{
			Type:       EventModerationApplied,
			EntityType: "report",
			EntityID:   report.ID,
			ActorID:    actor.ID,
			Payload: map[string]interface{}{
				"action_type":   string(actionType),
				"reported_type": string(report.ReportedType),
				"reported_id":   report.ReportedID,
			},
		})
	}

	s.logger.Info().
		Uint("report_id", report.ID).
		Str("action_type", string(actionType)).
		Msg("moderation action applied")

	return dto.NewReportResponse(report), nil
}

func (s *moderationService) ListActions(ctx context.Context, reportID uint) ([]dto.ModerationActionResponse, error) {
	if _, err := s.getReport(ctx, reportID); err != nil {
		return nil, err
	}
	actions, err := s.actions.ListByReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return dto.NewModerationActionResponseSlice(actions), nil
}

// invalidateSubmission forces the reported submission back into
// resubmission_required through the same grading path instructors use, with
// moderation authority so the submitted-only sequencing rule does not apply.
func (s *moderationService) invalidateSubmission(ctx context.Context, report models.Report, reason string, actor ActivityActor) error {
	submission, err := s.submissions.GetByID(ctx, report.ReportedID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	priorStatus := submission.Status
	priorVersion := submission.Version

	cmd := rules.GradingCommand{
		Action:    rules.GradeActionRequestResubmission,
		Feedback:  "invalidated by moderation: " + reason,
		Authority: rules.AuthorityModeration,
	}
	if err := rules.ApplyGrading(&submission, cmd, s.now(), actor.ID); err != nil {
		return err
	}

	return s.submissions.UpdateGuarded(ctx, &submission, priorVersion, priorStatus)
}

func (s *moderationService) getReport(ctx context.Context, id uint) (models.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Report{}, ErrReportNotFound
		}
		return models.Report{}, err
	}
	return report, nil
}

func (s *moderationService) recordActivity(ctx context.Context, actor ActivityActor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "report",
		EntityID:   &id,
		Metadata:   metadata,
	})
}
