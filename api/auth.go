package api

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	fiber "github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	models "github.com/workmate-ai/workmate/dbmodels"
	"github.com/workmate-ai/workmate/pkg/auth"
	"github.com/workmate-ai/workmate/pkg/xlog"
)

const minPasswordLength = 8

type registerRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errors.New("password must contain an uppercase letter, a lowercase letter and a digit")
	}
	return nil
}

func (a *App) Register() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		payload := registerRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
		payload.Username = strings.TrimSpace(payload.Username)
		payload.FullName = strings.TrimSpace(payload.FullName)
		if payload.Email == "" || payload.Username == "" || payload.FullName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email, username and full name are required"})
		}
		if err := validatePassword(payload.Password); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		var count int64
		if err := a.config.DB.Model(&models.User{}).
			Where("email = ? OR username = ?", payload.Email, payload.Username).
			Count(&count).Error; err != nil {
			return errorJSONMessage(c, "Could not check existing users")
		}
		if count > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email or username already registered"})
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return errorJSONMessage(c, "Could not hash password")
		}

		user := models.User{
			Email:          payload.Email,
			Username:       payload.Username,
			FullName:       payload.FullName,
			HashedPassword: string(hash),
			Role:           models.RoleEmployee,
			Department:     strings.TrimSpace(payload.Department),
			IsActive:       true,
		}
		if err := a.config.DB.Create(&user).Error; err != nil {
			return errorJSONMessage(c, "Could not create user")
		}

		xlog.Info("User registered", "user_id", user.ID, "email", user.Email)
		return c.JSON(fiber.Map{"message": "User registered successfully", "user_id": user.ID})
	}
}

func (a *App) Login() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		payload := loginRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		var user models.User
		err := a.config.DB.
			Where("email = ?", strings.ToLower(strings.TrimSpace(payload.Email))).
			First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
			}
			return errorJSONMessage(c, "Could not load user")
		}

		if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(payload.Password)) != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		if !user.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User account is disabled"})
		}

		token, err := auth.GenerateToken(a.config.JWTSecret, user.ID, user.Email, user.Role, a.config.TokenTTL)
		if err != nil {
			return errorJSONMessage(c, "Could not generate token")
		}

		return c.JSON(fiber.Map{
			"access_token": token,
			"token_type":   "bearer",
			"expires_in":   int64(a.config.TokenTTL.Seconds()),
			"user":         user,
		})
	}
}

func (a *App) Me() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return c.JSON(currentUser(c))
	}
}

func (a *App) RefreshToken() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		token, err := auth.GenerateToken(a.config.JWTSecret, user.ID, user.Email, user.Role, a.config.TokenTTL)
		if err != nil {
			return errorJSONMessage(c, "Could not generate token")
		}
		return c.JSON(fiber.Map{
			"access_token": token,
			"token_type":   "bearer",
			"expires_in":   int64(a.config.TokenTTL.Seconds()),
		})
	}
}
