package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/melih/lighthouse-deck/internal/core/ports"
	"github.com/melih/lighthouse-deck/internal/logger"
	"github.com/rs/xid"
)

const shutdownTimeout = 5 * time.Second

// NewApp wires the container routes onto a fiber app.
func NewApp(service ports.SyncService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "lighthouse-deck",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(RequestLogger())

	handler := NewContainerHandler(service)

	app.Get("/healthz", handler.Health)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	containers := v1.Group("/containers")
	containers.Get("/", handler.ListContainers)
	containers.Post("/refresh", handler.RefreshContainers)
	containers.Post("/:id/start", handler.StartContainer)
	containers.Post("/:id/stop", handler.StopContainer)

	return app
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := xid.New().String()
		c.Locals("request_id", reqID)
		c.Set(fiber.HeaderXRequestID, reqID)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		entry := logger.WithFields(logger.Fields{
			"request_id": reqID,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry = entry.WithError(err)
		}

		switch {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request error")
		default:
			entry.Debug("Request completed")
		}
		return err
	}
}
