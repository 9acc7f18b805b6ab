package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edustack/edustack-api/internal/config"
	"github.com/edustack/edustack-api/internal/handler"
	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	ModerationHandler *handler.ModerationHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.ModerationHandler != nil {
		// Filing a report is open to any authenticated user; triage and
		// actions stay behind the operator role.
		reports := api.Group("/reports", jwtMiddleware)
		deps.ModerationHandler.Register(reports)
		deps.ModerationHandler.RegisterOperator(reports.Group("", middleware.RequireRole(middleware.AuthRoleOperator)))
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware, middleware.RequireRole(middleware.AuthRoleOperator, middleware.AuthRoleInstructor))
		deps.ActivityHandler.Register(activity)
	}
}
