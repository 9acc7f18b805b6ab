package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/observability"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/rules"
)

// ErrSubmissionNotFound indicates the submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// lateAcceptanceWarning is attached to a successful submission that arrived
// after the due date under a permissive late policy.
const lateAcceptanceWarning = "submission accepted after the due date and marked late"

// SubmissionService accepts learner work. The same entry point serves first
// submissions and resubmissions; which one applies is decided by the stored
// state, not by the caller.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmissionCreateRequest, actor ActivityActor) (dto.SubmissionResponse, error)
	Eligibility(ctx context.Context, assignmentID, learnerID uint) (dto.EligibilityResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      EventPublisher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	events EventPublisher,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		activity:    activity,
		events:      events,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, payload dto.SubmissionCreateRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	existing, err := s.existingSubmission(ctx, payload.AssignmentID, payload.LearnerID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	now := s.now()
	decision := rules.EvaluateSubmission(assignment, existing, now)
	if !decision.CanSubmit {
		return dto.SubmissionResponse{}, rules.NotEligibleError(decision)
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	linkURL := payload.LinkURL
	if linkURL != nil {
		trimmed := strings.TrimSpace(*linkURL)
		if trimmed == "" {
			linkURL = nil
		} else {
			linkURL = &trimmed
		}
	}
	if err := rules.InvalidFieldError(rules.ValidateSubmissionContent(content, linkURL)); err != nil {
		return dto.SubmissionResponse{}, err
	}

	kind := "initial"
	var submission models.Submission

	if existing == nil {
		submission = models.Submission{
			AssignmentID: payload.AssignmentID,
			LearnerID:    payload.LearnerID,
			Content:      content,
			LinkURL:      linkURL,
			SubmittedAt:  now,
			IsLate:       decision.Late,
			Status:       models.SubmissionStatusSubmitted,
			Version:      1,
		}
		if err := s.submissions.Create(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}
	} else {
		kind = "resubmission"
		submission = *existing
		submission.Content = content
		submission.LinkURL = linkURL
		submission.SubmittedAt = now
		// Lateness is re-evaluated against the clock at resubmission time,
		// never inherited from the earlier attempt.
		submission.IsLate = decision.Late
		submission.Status = models.SubmissionStatusSubmitted
		submission.Score = nil
		submission.Feedback = ""
		submission.GradedAt = nil
		submission.GradedBy = nil
		if err := s.submissions.UpdateGuarded(ctx, &submission, existing.Version, existing.Status); err != nil {
			return dto.SubmissionResponse{}, err
		}
	}

	observability.Submissions().WithLabelValues(strconv.FormatBool(decision.Late), kind).Inc()

	s.recordActivity(ctx, actor, "submission."+kind, submission.ID, map[string]interface{}{
		"assignment_id": submission.AssignmentID,
		"is_late":       submission.IsLate,
	})

	if s.events != nil {
		_ = s.events.Publish(ctx, DomainEvent{
			Type:       EventSubmissionAccepted,
			EntityType: "submission",
			EntityID:   submission.ID,
			ActorID:    actor.ID,
			Payload: map[string]interface{}{
				"assignment_id": submission.AssignmentID,
				"learner_id":    submission.LearnerID,
				"is_late":       submission.IsLate,
				"kind":          kind,
			},
		})
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", submission.AssignmentID).
		Bool("is_late", submission.IsLate).
		Str("kind", kind).
		Msg("submission accepted")

	response := dto.NewSubmissionResponse(submission)
	if submission.IsLate {
		response.Warning = lateAcceptanceWarning
	}
	return response, nil
}

func (s *submissionService) Eligibility(ctx context.Context, assignmentID, learnerID uint) (dto.EligibilityResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EligibilityResponse{}, ErrAssignmentNotFound
		}
		return dto.EligibilityResponse{}, err
	}

	existing, err := s.existingSubmission(ctx, assignmentID, learnerID)
	if err != nil {
		return dto.EligibilityResponse{}, err
	}

	return dto.NewEligibilityResponse(rules.EvaluateSubmission(assignment, existing, s.now())), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		LearnerID:    filter.LearnerID,
	}
	if filter.Status != nil {
		status := models.SubmissionStatus(*filter.Status)
		repoFilter.Status = &status
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) existingSubmission(ctx context.Context, assignmentID, learnerID uint) (*models.Submission, error) {
	submission, err := s.submissions.GetByAssignmentAndLearner(ctx, assignmentID, learnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

func (s *submissionService) recordActivity(ctx context.Context, actor ActivityActor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "submission",
		EntityID:   &id,
		Metadata:   metadata,
	})
}
