package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/observability"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/rules"
)

// ErrAssignmentNotFound indicates the assignment could not be found.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrCourseNotFound indicates the parent course could not be found.
var ErrCourseNotFound = errors.New("course not found")

// AssignmentService manages the assignment lifecycle: draft CRUD, the
// publish/close/reopen transitions and the due-soon digest.
type AssignmentService interface {
	Create(ctx context.Context, payload dto.AssignmentCreateRequest, actor ActivityActor) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, actor ActivityActor) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	List(ctx context.Context, courseID *uint, status *models.AssignmentStatus) ([]dto.AssignmentResponse, error)
	Publish(ctx context.Context, id uint, actor ActivityActor) (dto.AssignmentResponse, error)
	Close(ctx context.Context, id uint, actor ActivityActor) (dto.AssignmentResponse, error)
	Reopen(ctx context.Context, id uint, actor ActivityActor) (dto.AssignmentResponse, error)
	DueSoon(ctx context.Context) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	courses     repository.CourseRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      EventPublisher
	cache       *redis.Client
	cacheTTL    time.Duration
	horizon     time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	courses repository.CourseRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	events EventPublisher,
	cache *redis.Client,
	cacheTTL time.Duration,
	horizon time.Duration,
	logger zerolog.Logger,
) AssignmentService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if horizon <= 0 {
		horizon = rules.DefaultDueSoonHorizon
	}
	return &assignmentService{
		assignments: assignments,
		courses:     courses,
		validator:   validate,
		activity:    activity,
		events:      events,
		cache:       cache,
		cacheTTL:    cacheTTL,
		horizon:     horizon,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrCourseNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	now := s.now()
	fields := rules.AssignmentFields{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		DueDate:     dueDate,
		ScoreWeight: payload.ScoreWeight,
	}
	if err := rules.InvalidFieldError(rules.ValidateAssignmentFields(fields, now, false)); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.checkWeightCap(ctx, payload.CourseID, 0, payload.ScoreWeight); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		CourseID:            payload.CourseID,
		Title:               fields.Title,
		Description:         fields.Description,
		DueDate:             dueDate,
		ScoreWeight:         rules.Round2(payload.ScoreWeight),
		AllowLateSubmission: payload.AllowLateSubmission,
		AllowResubmission:   payload.AllowResubmission,
		Status:              models.AssignmentStatusDraft,
		Version:             1,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.recordActivity(ctx, actor, "assignment.created", assignment.ID, map[string]interface{}{
		"course_id":    assignment.CourseID,
		"score_weight": assignment.ScoreWeight,
		"due_date":     assignment.DueDate,
	})

	return s.toResponse(assignment, ""), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	// Drafts are freely editable. A published assignment rejects all field
	// edits, so a stored isLate flag can never become retroactively wrong
	// while intake is open. A closed assignment may only receive a new due
	// date and submission policy, which is the route to reopening an
	// expired deadline.
	switch assignment.Status {
	case models.AssignmentStatusDraft:
	case models.AssignmentStatusClosed:
		if payload.Title != nil || payload.Description != nil || payload.ScoreWeight != nil {
			return dto.AssignmentResponse{}, &rules.Error{
				Kind:    rules.KindInvalidTransition,
				Message: "only the due date and submission policy of a closed assignment can be changed",
			}
		}
	default:
		return dto.AssignmentResponse{}, &rules.Error{
			Kind:    rules.KindInvalidTransition,
			Message: fmt.Sprintf("cannot edit a %s assignment", assignment.Status),
		}
	}

	changedFields := make([]string, 0)

	if payload.Title != nil {
		assignment.Title = strings.TrimSpace(*payload.Title)
		changedFields = append(changedFields, "title")
	}
	if payload.Description != nil {
		assignment.Description = strings.TrimSpace(*payload.Description)
		changedFields = append(changedFields, "description")
	}
	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = dueDate
		changedFields = append(changedFields, "due_date")
	}
	if payload.ScoreWeight != nil {
		assignment.ScoreWeight = rules.Round2(*payload.ScoreWeight)
		changedFields = append(changedFields, "score_weight")
	}
	if payload.AllowLateSubmission != nil {
		assignment.AllowLateSubmission = *payload.AllowLateSubmission
		changedFields = append(changedFields, "allow_late_submission")
	}
	if payload.AllowResubmission != nil {
		assignment.AllowResubmission = *payload.AllowResubmission
		changedFields = append(changedFields, "allow_resubmission")
	}

	now := s.now()
	fields := rules.AssignmentFields{
		Title:       assignment.Title,
		Description: assignment.Description,
		DueDate:     assignment.DueDate,
		ScoreWeight: assignment.ScoreWeight,
	}
	// A closed assignment keeping its old deadline stays valid even though
	// that deadline has passed; a newly supplied one must be future again.
	allowPastDue := assignment.Status == models.AssignmentStatusClosed && payload.DueDate == nil
	if err := rules.InvalidFieldError(rules.ValidateAssignmentFields(fields, now, allowPastDue)); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.checkWeightCap(ctx, assignment.CourseID, assignment.ID, assignment.ScoreWeight); err != nil {
		return dto.AssignmentResponse{}, err
	}

	expectedVersion := assignment.Version
	if err := s.assignments.Update(ctx, &assignment, expectedVersion); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if len(changedFields) > 0 {
		s.recordActivity(ctx, actor, "assignment.updated", assignment.ID, map[string]interface{}{
			"fields": changedFields,
		})
	}

	return s.toResponse(assignment, ""), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return err
	}

	// Published work has learner-visible history; only drafts may go.
	if assignment.Status != models.AssignmentStatusDraft {
		return &rules.Error{
			Kind:    rules.KindInvalidTransition,
			Message: fmt.Sprintf("cannot delete a %s assignment", assignment.Status),
		}
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.recordActivity(ctx, actor, "assignment.deleted", id, nil)
	return nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	return s.toResponse(assignment, ""), nil
}

func (s *assignmentService) List(ctx context.Context, courseID *uint, status *models.AssignmentStatus) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{CourseID: courseID, Status: status})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, s.toResponse(assignment, ""))
	}
	return responses, nil
}

func (s *assignmentService) Publish(ctx context.Context, id uint, actor ActivityActor) (dto.AssignmentResponse, error) {
	return s.transition(ctx, id, models.AssignmentStatusPublished, "assignment.published", EventAssignmentPublished, actor)
}

func (s *assignmentService) Close(ctx context.Context, id uint, actor ActivityActor) (dto.AssignmentResponse, error) {
	return s.transition(ctx, id, models.AssignmentStatusClosed, "assignment.closed", EventAssignmentClosed, actor)
}

func (s *assignmentService) Reopen(ctx context.Context, id uint, actor ActivityActor) (dto.AssignmentResponse, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if assignment.Status != models.AssignmentStatusClosed {
		return dto.AssignmentResponse{}, &rules.Error{
			Kind:    rules.KindInvalidTransition,
			Message: fmt.Sprintf("cannot reopen a %s assignment", assignment.Status),
		}
	}
	return s.transition(ctx, id, models.AssignmentStatusPublished, "assignment.reopened", EventAssignmentReopened, actor)
}

func (s *assignmentService) transition(ctx context.Context, id uint, to models.AssignmentStatus, action, eventType string, actor ActivityActor) (dto.AssignmentResponse, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	input := rules.TransitionInput{Now: s.now()}

	if to == models.AssignmentStatusPublished && assignment.Status == models.AssignmentStatusDraft {
		weights, err := s.assignments.ListOtherWeights(ctx, assignment.CourseID, assignment.ID)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		input.OtherWeights = weights
	}

	if to == models.AssignmentStatusClosed {
		count, err := s.assignments.CountSubmissions(ctx, assignment.ID)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		input.SubmissionCount = int(count)
	}

	from := assignment.Status
	result, err := rules.CheckTransition(assignment, to, input)
	if err != nil {
		observability.AssignmentTransitions().WithLabelValues(string(from), string(to), "rejected").Inc()
		return dto.AssignmentResponse{}, err
	}

	assignment.Status = to
	expectedVersion := assignment.Version
	if err := s.assignments.Update(ctx, &assignment, expectedVersion); err != nil {
		return dto.AssignmentResponse{}, err
	}

	observability.AssignmentTransitions().WithLabelValues(string(from), string(to), "applied").Inc()
	s.invalidateDueSoonCache(ctx)

	s.recordActivity(ctx, actor, action, assignment.ID, map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	})

	if s.events != nil {
		_ = s.events.Publish(ctx, DomainEvent{
			Type:       eventType,
			EntityType: "assignment",
			EntityID:   assignment.ID,
			ActorID:    actor.ID,
			Payload: map[string]interface{}{
				"course_id": assignment.CourseID,
				"due_date":  assignment.DueDate,
			},
		})
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("assignment transition applied")

	return s.toResponse(assignment, result.Warning), nil
}

func (s *assignmentService) DueSoon(ctx context.Context) ([]dto.AssignmentResponse, error) {
	now := s.now()

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.dueSoonCacheKey()).Result(); err == nil && cached != "" {
			var responses []dto.AssignmentResponse
			if err := json.Unmarshal([]byte(cached), &responses); err == nil {
				observability.DueSoonRequests().WithLabelValues("hit").Inc()
				return responses, nil
			}
		}
	}

	assignments, err := s.assignments.ListPublishedDueBetween(ctx, now, now.Add(s.horizon))
	if err != nil {
		observability.DueSoonRequests().WithLabelValues("error").Inc()
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		if rules.IsDueSoon(assignment.DueDate, now, s.horizon) {
			responses = append(responses, s.toResponse(assignment, ""))
		}
	}

	observability.DueSoonRequests().WithLabelValues("miss").Inc()

	if s.cache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, s.dueSoonCacheKey(), payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache due-soon digest")
			}
		}
	}

	return responses, nil
}

func (s *assignmentService) dueSoonCacheKey() string {
	return "assignments:due_soon"
}

func (s *assignmentService) invalidateDueSoonCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.dueSoonCacheKey()).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate due-soon cache")
	}
}

func (s *assignmentService) checkWeightCap(ctx context.Context, courseID, excludingID uint, candidate float64) error {
	weights, err := s.assignments.ListOtherWeights(ctx, courseID, excludingID)
	if err != nil {
		return err
	}
	check := rules.CheckWeightTotal(candidate, weights, rules.WeightCap)
	if !check.Valid {
		return rules.WeightCapError(check, rules.WeightCap)
	}
	return nil
}

func (s *assignmentService) getAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *assignmentService) recordActivity(ctx context.Context, actor ActivityActor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "assignment",
		EntityID:   &id,
		Metadata:   metadata,
	})
}

func (s *assignmentService) toResponse(assignment models.Assignment, warning string) dto.AssignmentResponse {
	response := dto.NewAssignmentResponse(assignment, rules.DaysUntil(assignment.DueDate, s.now()))
	response.Warning = warning
	return response
}
