package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"docintake/internal/service"
)

// Pinger reports whether the extraction backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes attaches the operator console routes to app.
func RegisterRoutes(app *fiber.App, backend Pinger, svc service.IntakeService) {
	app.Get("/health", HealthCheck(backend))
	app.Get("/healthz", LivenessProbe())

	app.Get("/candidates", ListCandidates(svc))
	app.Post("/candidates/resume", UploadResume(svc))
	app.Get("/candidates/:id", GetCandidate(svc))
	app.Post("/candidates/:id/documents", UploadDocument(svc))
	app.Get("/candidates/:id/documents", ListDocuments(svc))
	app.Delete("/candidates/:id/documents/:docId", DeleteDocument(svc))
	app.Get("/candidates/:id/documents/:docId/download", DownloadDocument(svc))
	app.Post("/candidates/:id/request-documents", RequestDocuments(svc))

	app.Get("/sessions/:slot", GetSession(svc))
}

// HealthCheck pings the extraction backend.
//
// @Summary Backend health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(backend Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if backend == nil || backend.Ping(ctx) != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
