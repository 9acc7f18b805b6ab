package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/rules"
)

// CourseService manages the course catalog assignments hang off of.
type CourseService interface {
	Create(ctx context.Context, payload dto.CourseCreateRequest, actor ActivityActor) (dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	List(ctx context.Context) ([]dto.CourseResponse, error)
}

type courseService struct {
	repo      repository.CourseRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo repository.CourseRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest, actor ActivityActor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	title := strings.TrimSpace(payload.Title)
	description := strings.TrimSpace(payload.Description)
	if err := rules.InvalidFieldError(rules.ValidateCourseFields(title, description)); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:        title,
		Description:  description,
		InstructorID: actor.ID,
	}
	if err := s.repo.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	if s.activity != nil {
		id := course.ID
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "course.created",
			EntityType: "course",
			EntityID:   &id,
		})
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}
