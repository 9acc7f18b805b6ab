package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/service"
	"github.com/edustack/edustack-api/internal/utils"
)

// CourseHandler wires course catalog endpoints.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list courses")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list courses")
	}
	return utils.SendSuccess(c, "courses", courses)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	course, err := h.service.Create(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isRuleError(err), isValidationError(err):
			return sendRuleError(c, err)
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create course")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create course")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	course, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("course_id", id).Msg("failed to fetch course")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch course")
	}

	return utils.SendSuccess(c, "course", course)
}
