package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/rules"
	"github.com/edustack/edustack-api/internal/service"
	"github.com/edustack/edustack-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value, err := parseQueryInt(c, key)
	if err != nil || value < 0 {
		return nil, err
	}
	if value == 0 {
		return nil, nil
	}
	parsed := uint(value)
	return &parsed, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	return service.ActivityActor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendRuleError maps a typed engine violation onto its HTTP status. Input
// problems are 400s; state problems, which a retry with the same payload can
// never fix from the caller's side alone, are 409s.
func sendRuleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	switch rules.KindOf(err) {
	case rules.KindInvalidTransition,
		rules.KindWeightCapExceeded,
		rules.KindNotEligible,
		rules.KindInvalidSourceState,
		rules.KindTargetAlreadyProcessed:
		status = fiber.StatusConflict
	}
	return utils.SendError(c, status, err.Error())
}

// isRuleError reports whether a typed engine violation is carried by err.
func isRuleError(err error) bool {
	return rules.KindOf(err) != ""
}

func isVersionConflict(err error) bool {
	return errors.Is(err, repository.ErrVersionConflict)
}
