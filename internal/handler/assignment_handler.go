package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/service"
	"github.com/edustack/edustack-api/internal/utils"
)

// AssignmentHandler wires assignment lifecycle endpoints.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group. The due-soon
// digest is registered before the id routes so it does not match as ":id".
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/due-soon", h.dueSoon)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/publish", h.publish)
	router.Post("/:id/close", h.close)
	router.Post("/:id/reopen", h.reopen)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	var status *models.AssignmentStatus
	if raw := c.Query("status"); raw != "" {
		parsed := models.AssignmentStatus(raw)
		if !parsed.Valid() {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid status filter")
		}
		status = &parsed
	}

	assignments, err := h.service.List(c.Context(), courseID, status)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list assignments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list assignments")
	}

	return utils.SendSuccess(c, "assignments", assignments)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.service.Create(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		case isRuleError(err), isValidationError(err):
			return sendRuleError(c, err)
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create assignment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create assignment")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	assignment, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("assignment_id", id).Msg("failed to fetch assignment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch assignment")
	}

	return utils.SendSuccess(c, "assignment", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.service.Update(c.Context(), id, payload, activityActorFromContext(c))
	if err != nil {
		return h.mutationError(c, id, err, "failed to update assignment")
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), id, activityActorFromContext(c)); err != nil {
		return h.mutationError(c, id, err, "failed to delete assignment")
	}

	return utils.SendSuccess(c, "assignment deleted", nil)
}

func (h *AssignmentHandler) publish(c *fiber.Ctx) error {
	return h.transition(c, h.service.Publish, "assignment published", "failed to publish assignment")
}

func (h *AssignmentHandler) close(c *fiber.Ctx) error {
	return h.transition(c, h.service.Close, "assignment closed", "failed to close assignment")
}

func (h *AssignmentHandler) reopen(c *fiber.Ctx) error {
	return h.transition(c, h.service.Reopen, "assignment reopened", "failed to reopen assignment")
}

func (h *AssignmentHandler) transition(
	c *fiber.Ctx,
	apply func(ctx context.Context, id uint, actor service.ActivityActor) (dto.AssignmentResponse, error),
	message, failure string,
) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	assignment, err := apply(c.Context(), id, activityActorFromContext(c))
	if err != nil {
		return h.mutationError(c, id, err, failure)
	}

	return utils.SendSuccess(c, message, assignment)
}

func (h *AssignmentHandler) dueSoon(c *fiber.Ctx) error {
	assignments, err := h.service.DueSoon(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build due-soon digest")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build due-soon digest")
	}
	return utils.SendSuccess(c, "assignments due soon", assignments)
}

func (h *AssignmentHandler) mutationError(c *fiber.Ctx, id uint, err error, failure string) error {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case isVersionConflict(err):
		return utils.SendError(c, fiber.StatusConflict, "assignment was modified concurrently, retry with fresh state")
	case isRuleError(err), isValidationError(err):
		return sendRuleError(c, err)
	default:
		requestLogger(h.logger, c).Error().Err(err).Uint("assignment_id", id).Msg(failure)
		return utils.SendError(c, fiber.StatusInternalServerError, failure)
	}
}
