package api

import (
	"errors"
	"net/http"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/workmate-ai/workmate/pkg/xlog"
)

func init() {
	_ = godotenv.Load()
}

type (
	App struct {
		config *Config
		*fiber.App
	}
)

func NewApp(opts ...Option) *App {
	config := NewConfig(opts...)

	webapp := fiber.New(fiber.Config{
		AppName: config.AppName,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code == fiber.StatusInternalServerError {
				xlog.Error("Unhandled request error", "method", c.Method(), "path", c.Path(), "error", err.Error())
				return c.Status(code).JSON(fiber.Map{"error": "Internal server error"})
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	a := &App{
		config: config,
		App:    webapp,
	}

	a.registerRoutes(webapp)

	return a
}

func errorJSONMessage(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusInternalServerError).JSON(struct {
		Error string `json:"error"`
	}{Error: message})
}

func (a *App) Health() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		dbOK := false
		if a.config.DB != nil {
			if sqlDB, err := a.config.DB.DB(); err == nil && sqlDB.Ping() == nil {
				dbOK = true
			}
		}

		status := "healthy"
		if !dbOK {
			status = "degraded"
		}

		return c.JSON(fiber.Map{
			"status":        status,
			"database":      dbOK,
			"agents_active": a.config.Manager != nil && a.config.Manager.AgentCount() > 0,
			"rag_active":    a.config.Manager != nil && a.config.Manager.RAGActive(),
			"timestamp":     time.Now().UTC().Format(time.RFC3339),
		})
	}
}
