package estimate

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"plan-takeoff/internal/export"
)

// Handler serves the inbox API.
type Handler struct {
	store *Store
}

// NewHandler creates a handler backed by store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// AppConfig holds server settings for NewApp.
type AppConfig = fiber.Config

// NewApp builds the inbox service with middleware and routes.
func NewApp(h *Handler, cfg AppConfig) *fiber.App {
	if cfg.AppName == "" {
		cfg.AppName = "Estimate Inbox"
	}
	app := fiber.New(cfg)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	h.Register(app)
	return app
}

// Register mounts the inbox routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health/live", h.Live)
	app.Get("/health/ready", h.Ready)

	app.Post("/handoffs", h.Receive)
	app.Get("/handoffs", h.List)
	app.Get("/handoffs/:id", h.Get)
}

// Live reports that the process is running.
func (h *Handler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// Ready reports whether the database answers.
func (h *Handler) Ready(c fiber.Ctx) error {
	if err := h.store.Ping(c.Context()); err != nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// Receive stores a posted payload.
func (h *Handler) Receive(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	var p export.Payload
	if err := json.Unmarshal(c.Body(), &p); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	id, err := h.store.Receive(c.Context(), p)
	if errors.Is(err, ErrInvalidPayload) {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		log.Printf("Inbox: receive failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "storage error"})
	}

	log.Printf("Inbox: received %d measurements for %s as %s", len(p.Measurements), p.Drawing.Name, id)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": id})
}

// List returns all handoffs, newest first.
func (h *Handler) List(c fiber.Ctx) error {
	list, err := h.store.List(c.Context())
	if err != nil {
		log.Printf("Inbox: list failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "storage error"})
	}
	return c.JSON(list)
}

// Get returns one handoff with per-unit totals.
func (h *Handler) Get(c fiber.Ctx) error {
	ho, err := h.store.Get(c.Context(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	if err != nil {
		log.Printf("Inbox: get failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "storage error"})
	}
	return c.JSON(fiber.Map{
		"handoff": ho,
		"totals":  ho.Totals(),
	})
}
