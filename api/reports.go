package api

import (
	"errors"
	"sort"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/manager"
	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
	"github.com/workmate-ai/workmate/services"
)

// reportActions maps the requested report type onto the report agent action
// that produces it.
var reportActions = map[string]string{
	models.ReportTypeAttendance: services.ActionAttendanceReport,
	models.ReportTypeTask:       services.ActionTaskReport,
	models.ReportTypeWeekly:     services.ActionWeeklySummary,
}

type reportGenerateRequest struct {
	ReportType string                 `json:"report_type"`
	StartDate  string                 `json:"start_date"`
	EndDate    string                 `json:"end_date"`
	Filters    map[string]interface{} `json:"filters"`
}

// GenerateReport dispatches a report request through the report agent and, on
// success, points the caller at the row the report tool persisted.
func (a *App) GenerateReport() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		payload := reportGenerateRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		action, ok := reportActions[payload.ReportType]
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report type"})
		}

		user := currentUser(c)
		params := types.NewOrderedParams().
			Set("start_date", payload.StartDate).
			Set("end_date", payload.EndDate)

		filterKeys := make([]string, 0, len(payload.Filters))
		for k := range payload.Filters {
			filterKeys = append(filterKeys, k)
		}
		sort.Strings(filterKeys)
		for _, k := range filterKeys {
			params.Set(k, payload.Filters[k])
		}

		if payload.ReportType == models.ReportTypeWeekly {
			if _, ok := params.Get("user_id"); !ok {
				params.Set("user_id", user.ID)
			}
		}

		requestedAt := time.Now().UTC()
		result := a.config.Manager.ExecuteAction(c.Context(), manager.AgentReport, action, params,
			map[string]interface{}{"user_id": user.ID}, &user.ID)
		if !result.Success {
			message := result.Error
			if message == "" {
				message = "Report generation failed"
			}
			return errorJSONMessage(c, message)
		}

		// The report row is written by the tool, not the handler, so find it
		// by type and request time instead of guessing "latest by this user".
		var reportID interface{}
		var report models.Report
		err := a.config.DB.
			Where("type = ? AND created_at >= ?", payload.ReportType, requestedAt).
			Order("created_at DESC").
			First(&report).Error
		if err == nil {
			reportID = report.ID
		}

		return c.JSON(fiber.Map{
			"message":   "Report generated successfully",
			"report_id": reportID,
			"content":   result.Output,
		})
	}
}

func (a *App) ListReports() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		query := a.config.DB.Model(&models.Report{})
		if reportType := c.Query("report_type"); reportType != "" {
			query = query.Where("type = ?", reportType)
		}

		user := currentUser(c)
		if !user.IsManager() {
			query = query.Where("generated_by_id = ?", user.ID)
		}

		var reports []models.Report
		if err := query.
			Order("created_at DESC").
			Offset(c.QueryInt("offset", 0)).
			Limit(c.QueryInt("limit", 50)).
			Find(&reports).Error; err != nil {
			return errorJSONMessage(c, "Could not load reports")
		}
		return c.JSON(reports)
	}
}

func (a *App) GetReport() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		reportID, err := c.ParamsInt("id")
		if err != nil || reportID < 1 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
		}

		var report models.Report
		if err := a.config.DB.First(&report, reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
			}
			return errorJSONMessage(c, "Could not load report")
		}

		user := currentUser(c)
		if !user.IsManager() && (report.GeneratedByID == nil || *report.GeneratedByID != user.ID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to view this report"})
		}
		return c.JSON(report)
	}
}
