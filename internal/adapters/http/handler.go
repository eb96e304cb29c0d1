package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/melih/lighthouse-deck/internal/core/domain"
	"github.com/melih/lighthouse-deck/internal/core/ports"
)

const healthTimeout = 2 * time.Second

type ContainerHandler struct {
	service ports.SyncService
}

func NewContainerHandler(service ports.SyncService) *ContainerHandler {
	return &ContainerHandler{service: service}
}

type containerView struct {
	domain.Container
	Command domain.CommandState `json:"command"`
}

type snapshotView struct {
	Generation  uint64          `json:"generation"`
	RefreshedAt time.Time       `json:"refreshed_at"`
	Containers  []containerView `json:"containers"`
	Error       string          `json:"error,omitempty"`
}

// ListContainers returns the last published snapshot. It never calls the
// engine; stale data is served while the engine is unreachable.
func (h *ContainerHandler) ListContainers(c *fiber.Ctx) error {
	snap := h.service.Snapshot()

	view := snapshotView{
		Generation:  snap.Generation,
		RefreshedAt: snap.RefreshedAt,
		Containers:  make([]containerView, 0, len(snap.Containers)),
	}
	for _, ctr := range snap.Containers {
		view.Containers = append(view.Containers, containerView{
			Container: ctr,
			Command:   h.service.CommandState(ctr.ID),
		})
	}
	if err := h.service.LastRefreshError(); err != nil {
		view.Error = err.Error()
	}
	return c.JSON(view)
}

func (h *ContainerHandler) RefreshContainers(c *fiber.Ctx) error {
	h.service.TriggerRefresh()
	return c.SendStatus(fiber.StatusAccepted)
}

func (h *ContainerHandler) StartContainer(c *fiber.Ctx) error {
	return h.dispatch(c, domain.CommandStart)
}

func (h *ContainerHandler) StopContainer(c *fiber.Ctx) error {
	return h.dispatch(c, domain.CommandStop)
}

// dispatch hands the command to a worker and answers 202 straight away.
// The outcome only shows up in a later snapshot.
func (h *ContainerHandler) dispatch(c *fiber.Ctx, kind domain.CommandKind) error {
	// Params are backed by the request buffer and the worker outlives it.
	id := utils.CopyString(c.Params("id"))
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	if kind == domain.CommandStart {
		h.service.DispatchStart(id)
	} else {
		h.service.DispatchStop(id)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":      id,
		"command": kind,
	})
}

func (h *ContainerHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
