package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/service"
	"github.com/edustack/edustack-api/internal/utils"
)

// ModerationHandler wires abuse report and moderation action endpoints.
type ModerationHandler struct {
	service service.ModerationService
	logger  zerolog.Logger
}

// NewModerationHandler constructs the handler.
func NewModerationHandler(service service.ModerationService, logger zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		service: service,
		logger:  logger.With().Str("component", "moderation_handler").Logger(),
	}
}

// Register attaches report endpoints to the router group. Filing a report is
// open to any authenticated user; the action endpoints are mounted behind an
// operator role guard by the router.
func (h *ModerationHandler) Register(router fiber.Router) {
	router.Post("", h.createReport)
}

// RegisterOperator attaches the operator-only report endpoints.
func (h *ModerationHandler) RegisterOperator(router fiber.Router) {
	router.Get("", h.listReports)
	router.Get("/:id", h.getReport)
	router.Post("/:id/actions", h.handleAction)
	router.Get("/:id/actions", h.listActions)
}

func (h *ModerationHandler) createReport(c *fiber.Ctx) error {
	var payload dto.ReportCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.ReporterID == 0 {
		payload.ReporterID = userIDFromContext(c)
	}

	report, err := h.service.CreateReport(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isRuleError(err), isValidationError(err):
			return sendRuleError(c, err)
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create report")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create report")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "report received", report)
}

func (h *ModerationHandler) listReports(c *fiber.Ctx) error {
	var status *models.ReportStatus
	if raw := c.Query("status"); raw != "" {
		parsed := models.ReportStatus(raw)
		status = &parsed
	}
	var reportedType *models.ReportTargetType
	if raw := c.Query("reported_type"); raw != "" {
		parsed := models.ReportTargetType(raw)
		if !parsed.Valid() {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid reported type")
		}
		reportedType = &parsed
	}

	reports, err := h.service.ListReports(c.Context(), status, reportedType)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list reports")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list reports")
	}

	return utils.SendSuccess(c, "reports", reports)
}

func (h *ModerationHandler) getReport(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	report, err := h.service.GetReport(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "report not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("report_id", id).Msg("failed to fetch report")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch report")
	}

	return utils.SendSuccess(c, "report", report)
}

func (h *ModerationHandler) handleAction(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.ModerationActionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	report, err := h.service.HandleAction(c.Context(), id, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReportNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "report not found")
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "reported submission not found")
		case isVersionConflict(err):
			return utils.SendError(c, fiber.StatusConflict, "report was modified concurrently, retry with fresh state")
		case isRuleError(err), isValidationError(err):
			return sendRuleError(c, err)
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("report_id", id).Msg("failed to apply moderation action")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to apply moderation action")
		}
	}

	return utils.SendSuccess(c, "moderation action applied", report)
}

func (h *ModerationHandler) listActions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	actions, err := h.service.ListActions(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "report not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("report_id", id).Msg("failed to list moderation actions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list moderation actions")
	}

	return utils.SendSuccess(c, "moderation actions", actions)
}
