package api

import (
	"errors"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	models "github.com/workmate-ai/workmate/dbmodels"
)

const dateLayout = "2006-01-02"

type employeeUpdateRequest struct {
	FullName   *string `json:"full_name"`
	Department *string `json:"department"`
	Role       *string `json:"role"`
	IsActive   *bool   `json:"is_active"`
}

func validRole(role string) bool {
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleEmployee:
		return true
	}
	return false
}

func (a *App) ListEmployees() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		query := a.config.DB.Model(&models.User{})

		if c.QueryBool("active_only", true) {
			query = query.Where("is_active = ?", true)
		}
		if department := c.Query("department"); department != "" {
			query = query.Where("department = ?", department)
		}
		if role := c.Query("role"); role != "" {
			query = query.Where("role = ?", role)
		}

		var employees []models.User
		if err := query.Find(&employees).Error; err != nil {
			return errorJSONMessage(c, "Could not load employees")
		}

		rows := make([]fiber.Map, 0, len(employees))
		for _, emp := range employees {
			rows = append(rows, fiber.Map{
				"id":         emp.ID,
				"email":      emp.Email,
				"full_name":  emp.FullName,
				"department": emp.Department,
				"role":       emp.Role,
				"is_active":  emp.IsActive,
			})
		}
		return c.JSON(rows)
	}
}

func (a *App) GetEmployee() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		employeeID, err := c.ParamsInt("id")
		if err != nil || employeeID < 1 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Employee not found"})
		}

		var employee models.User
		if err := a.config.DB.First(&employee, employeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Employee not found"})
			}
			return errorJSONMessage(c, "Could not load employee")
		}

		user := currentUser(c)
		if !user.IsManager() && user.ID != employee.ID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to view this employee"})
		}

		return c.JSON(fiber.Map{
			"id":         employee.ID,
			"email":      employee.Email,
			"username":   employee.Username,
			"full_name":  employee.FullName,
			"department": employee.Department,
			"role":       employee.Role,
			"is_active":  employee.IsActive,
			"created_at": employee.CreatedAt,
		})
	}
}

func (a *App) UpdateEmployee() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		employeeID, err := c.ParamsInt("id")
		if err != nil || employeeID < 1 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Employee not found"})
		}

		payload := employeeUpdateRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		var employee models.User
		if err := a.config.DB.First(&employee, employeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Employee not found"})
			}
			return errorJSONMessage(c, "Could not load employee")
		}

		updates := map[string]interface{}{}
		if payload.FullName != nil {
			updates["full_name"] = *payload.FullName
		}
		if payload.Department != nil {
			updates["department"] = *payload.Department
		}
		if payload.Role != nil {
			if !validRole(*payload.Role) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role"})
			}
			updates["role"] = *payload.Role
		}
		if payload.IsActive != nil {
			updates["is_active"] = *payload.IsActive
		}

		if len(updates) > 0 {
			if err := a.config.DB.Model(&employee).Updates(updates).Error; err != nil {
				return errorJSONMessage(c, "Could not update employee")
			}
		}

		return c.JSON(fiber.Map{"message": "Employee updated successfully", "employee_id": employee.ID})
	}
}

func (a *App) EmployeeAttendance() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		employeeID, err := c.ParamsInt("id")
		if err != nil || employeeID < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid employee id"})
		}

		user := currentUser(c)
		if !user.IsManager() && user.ID != uint(employeeID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to view this attendance"})
		}

		query := a.config.DB.Where("user_id = ?", employeeID)
		if startDate := c.Query("start_date"); startDate != "" {
			start, err := time.Parse(dateLayout, startDate)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
			}
			query = query.Where("clock_in >= ?", start)
		}
		if endDate := c.Query("end_date"); endDate != "" {
			end, err := time.Parse(dateLayout, endDate)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
			}
			query = query.Where("clock_in < ?", end.AddDate(0, 0, 1))
		}

		var records []models.ClockRecord
		if err := query.Order("clock_in DESC").Find(&records).Error; err != nil {
			return errorJSONMessage(c, "Could not load attendance records")
		}

		rows := make([]fiber.Map, 0, len(records))
		for _, record := range records {
			rows = append(rows, fiber.Map{
				"id":          record.ID,
				"clock_in":    record.ClockIn,
				"clock_out":   record.ClockOut,
				"total_hours": record.TotalHours,
				"status":      record.Status,
				"location":    record.Location,
				"notes":       nullableString(record.Notes),
			})
		}
		return c.JSON(rows)
	}
}
