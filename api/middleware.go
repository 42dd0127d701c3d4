package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	models "github.com/workmate-ai/workmate/dbmodels"
	"github.com/workmate-ai/workmate/pkg/auth"
	"github.com/workmate-ai/workmate/pkg/xlog"
)

// requestTimer tags every response with a request id and the seconds spent
// serving it.
func (a *App) requestTimer() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()
		c.Locals("request_id", requestID)

		err := c.Next()

		elapsed := time.Since(start)
		c.Set("X-Request-ID", requestID)
		c.Set("X-Process-Time", strconv.FormatFloat(elapsed.Seconds(), 'f', 6, 64))
		xlog.Debug("Request served",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"elapsed_ms", elapsed.Milliseconds())
		return err
	}
}

// RequireUser validates the Bearer token and loads the account behind it into
// the request locals.
func (a *App) RequireUser() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization header is required"})
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization header format must be Bearer {token}"})
		}

		claims, err := auth.ValidateToken(a.config.JWTSecret, parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		var user models.User
		if err := a.config.DB.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
			}
			return errorJSONMessage(c, "Could not load user")
		}
		if !user.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User account is disabled"})
		}

		c.Locals("user", &user)
		return c.Next()
	}
}

// RequireManager must run after RequireUser.
func (a *App) RequireManager() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
		}
		if !user.IsManager() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Manager role required"})
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
