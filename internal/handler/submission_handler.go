package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/service"
	"github.com/edustack/edustack-api/internal/utils"
)

// SubmissionHandler wires submission intake and grading endpoints.
type SubmissionHandler struct {
	submissions service.SubmissionService
	grading     service.GradingService
	logger      zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(submissions service.SubmissionService, grading service.GradingService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		grading:     grading,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.submit)
	router.Get("/eligibility", h.eligibility)
	router.Get("/:id", h.get)
	router.Patch("/:id/grade", h.grade)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.LearnerID == 0 {
		payload.LearnerID = userIDFromContext(c)
	}

	submission, err := h.submissions.Submit(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case isVersionConflict(err):
			return utils.SendError(c, fiber.StatusConflict, "submission was modified concurrently, retry with fresh state")
		case isRuleError(err), isValidationError(err):
			return sendRuleError(c, err)
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to accept submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to accept submission")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission accepted", submission)
}

func (h *SubmissionHandler) eligibility(c *fiber.Ctx) error {
	assignmentID, err := parseQueryUint(c, "assignment_id")
	if err != nil || assignmentID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "assignment_id is required")
	}

	learnerID, err := parseQueryUint(c, "learner_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid learner id")
	}
	learner := userIDFromContext(c)
	if learnerID != nil {
		learner = *learnerID
	}

	decision, err := h.submissions.Eligibility(c.Context(), *assignmentID, learner)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to evaluate eligibility")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to evaluate eligibility")
	}

	return utils.SendSuccess(c, "submission eligibility", decision)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	assignmentID, err := parseQueryUint(c, "assignment_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}
	learnerID, err := parseQueryUint(c, "learner_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid learner id")
	}

	filter := dto.SubmissionFilter{AssignmentID: assignmentID, LearnerID: learnerID}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}

	submissions, err := h.submissions.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list submissions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list submissions")
	}

	return utils.SendSuccess(c, "submissions", submissions)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	submission, err := h.submissions.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("submission_id", id).Msg("failed to fetch submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch submission")
	}

	return utils.SendSuccess(c, "submission", submission)
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.GradeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.grading.Grade(c.Context(), id, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case isVersionConflict(err):
			return utils.SendError(c, fiber.StatusConflict, "submission was modified concurrently, retry with fresh state")
		case isRuleError(err), isValidationError(err):
			return sendRuleError(c, err)
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("submission_id", id).Msg("failed to grade submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to grade submission")
		}
	}

	return utils.SendSuccess(c, "grading decision applied", submission)
}
