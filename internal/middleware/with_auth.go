package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/edustack/edustack-api/internal/utils"
)

// Auth role constants used by the WithAuth helper.
const (
	AuthRoleAny        = "any"
	AuthRoleInstructor = "instructor"
	AuthRoleLearner    = "learner"
	AuthRoleOperator   = "operator"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth wraps a handler with basic authentication/authorization guards.
// A role other than AuthRoleAny implies RequireUser. Operators pass the
// instructor guard; the learner guard admits learners only.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	requireUser := opts.RequireUser
	if !requireUser && role != AuthRoleAny {
		requireUser = true
	}

	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id")
		if requireUser && userID == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if role == AuthRoleAny {
			return handler(c)
		}

		currentRole := normalizeRoleValue(c.Locals("user_role"))
		switch role {
		case AuthRoleLearner:
			if currentRole != AuthRoleLearner {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		case AuthRoleInstructor:
			if currentRole != AuthRoleInstructor && currentRole != AuthRoleOperator {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		default:
			if currentRole != role {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		}

		return handler(c)
	}
}
