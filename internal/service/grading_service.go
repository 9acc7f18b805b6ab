package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/observability"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/rules"
)

// GradingService evaluates submitted work. Grading and requesting a
// resubmission share one entry point; the action field selects between them.
type GradingService interface {
	Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor ActivityActor) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      EventPublisher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(
	submissions repository.SubmissionRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	events EventPublisher,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		submissions: submissions,
		validator:   validate,
		activity:    activity,
		events:      events,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/edustack/edustack-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.apply")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
		attribute.String("grading.action", payload.Action),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	priorStatus := submission.Status
	priorVersion := submission.Version

	cmd := rules.GradingCommand{
		Action:    rules.GradeAction(payload.Action),
		Score:     payload.Score,
		Feedback:  strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback)),
		Authority: rules.AuthorityInstructor,
	}
	if err := rules.ApplyGrading(&submission, cmd, s.now(), actor.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grading_rejected")
		return dto.SubmissionResponse{}, err
	}

	// The status precondition pins the decision to the attempt the grader
	// actually read: a resubmission landing in between bumps the version
	// and flips the write into a conflict instead of silently grading the
	// newer attempt.
	if err := s.submissions.UpdateGuarded(ctx, &submission, priorVersion, priorStatus); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.Gradings().WithLabelValues(payload.Action, string(rules.AuthorityInstructor)).Inc()

	if s.activity != nil {
		metadata := map[string]interface{}{
			"assignment_id": submission.AssignmentID,
			"learner_id":    submission.LearnerID,
			"action":        payload.Action,
		}
		if submission.Score != nil {
			metadata["score"] = *submission.Score
		}
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "submission." + payload.Action,
			EntityType: "submission",
			EntityID:   &submission.ID,
			Metadata:   metadata,
		})
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, DomainEvent{
			Type:       EventSubmissionGraded,
			EntityType: "submission",
			EntityID:   submission.ID,
			ActorID:    actor.ID,
			Payload: map[string]interface{}{
				"assignment_id": submission.AssignmentID,
				"learner_id":    submission.LearnerID,
				"action":        payload.Action,
				"status":        string(submission.Status),
			},
		})
	}

	span.SetAttributes(attribute.String("grading.status", string(submission.Status)))

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Str("action", payload.Action).
		Str("status", string(submission.Status)).
		Msg("grading decision applied")

	return dto.NewSubmissionResponse(submission), nil
}
