package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
)

func NewAttendanceReport(db *gorm.DB) *AttendanceReportAction {
	return &AttendanceReportAction{db: db}
}

// AttendanceReportAction summarizes clock records over a date range and
// persists the report.
type AttendanceReportAction struct {
	db *gorm.DB
}

type attendanceSummary struct {
	Name         string  `json:"name"`
	Department   string  `json:"department"`
	DaysWorked   int     `json:"days_worked"`
	TotalHours   float64 `json:"total_hours"`
	LateArrivals int     `json:"late_arrivals"`
}

func (a *AttendanceReportAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		StartDate  string `json:"start_date"`
		EndDate    string `json:"end_date"`
		UserID     *uint  `json:"user_id"`
		Department string `json:"department"`
	}{}
	if err := params.Unmarshal(&request); err != nil {
		return types.ActionResult{}, err
	}

	start, err := time.Parse(dateLayout, request.StartDate)
	if err != nil {
		return errorResult("Error generating attendance report: %v", err), nil
	}
	end, err := time.Parse(dateLayout, request.EndDate)
	if err != nil {
		return errorResult("Error generating attendance report: %v", err), nil
	}

	var result types.ActionResult

	txErr := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Preload("User").
			Where("clock_in >= ? AND clock_in <= ?", start, end.AddDate(0, 0, 1))
		if request.UserID != nil {
			query = query.Where("clock_records.user_id = ?", *request.UserID)
		}
		if request.Department != "" {
			query = query.Joins("JOIN users ON users.id = clock_records.user_id").
				Where("users.department = ?", request.Department)
		}

		var records []models.ClockRecord
		if err := query.Find(&records).Error; err != nil {
			return err
		}

		if len(records) == 0 {
			result = types.ActionResult{Result: "No attendance records found for the specified period"}
			return nil
		}

		var order []uint
		perUser := map[uint]*attendanceSummary{}
		totalHours := 0.0

		for _, record := range records {
			summary, ok := perUser[record.UserID]
			if !ok {
				summary = &attendanceSummary{
					Name:       record.User.FullName,
					Department: record.User.Department,
				}
				perUser[record.UserID] = summary
				order = append(order, record.UserID)
			}

			summary.DaysWorked++
			if record.TotalHours != nil {
				summary.TotalHours += *record.TotalHours
				totalHours += *record.TotalHours
			}
			if record.ClockIn.Hour() > 9 || (record.ClockIn.Hour() == 9 && record.ClockIn.Minute() > 15) {
				summary.LateArrivals++
			}
		}

		var b strings.Builder
		b.WriteString("# Attendance Report\n")
		fmt.Fprintf(&b, "Period: %s to %s\n", request.StartDate, request.EndDate)
		fmt.Fprintf(&b, "Total Employees: %d\n", len(perUser))
		fmt.Fprintf(&b, "Total Hours Worked: %.2f\n\n", round2(totalHours))

		for _, id := range order {
			summary := perUser[id]
			avg := 0.0
			if summary.DaysWorked > 0 {
				avg = round2(summary.TotalHours / float64(summary.DaysWorked))
			}
			fmt.Fprintf(&b, "## %s (%s)\n", summary.Name, summary.Department)
			fmt.Fprintf(&b, "- Days Worked: %d\n", summary.DaysWorked)
			fmt.Fprintf(&b, "- Total Hours: %.2f\n", round2(summary.TotalHours))
			fmt.Fprintf(&b, "- Average Hours/Day: %.2f\n", avg)
			fmt.Fprintf(&b, "- Late Arrivals: %d\n\n", summary.LateArrivals)
		}

		content, err := json.Marshal(map[string]interface{}{
			"summary":        perUser,
			"total_hours":    totalHours,
			"employee_count": len(perUser),
		})
		if err != nil {
			return err
		}

		report := models.Report{
			Title:    fmt.Sprintf("Attendance Report %s to %s", request.StartDate, request.EndDate),
			Type:     models.ReportTypeAttendance,
			Content:  datatypes.JSON(content),
			DateFrom: start,
			DateTo:   end,
		}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		result = types.ActionResult{Result: b.String()}
		return nil
	})
	if txErr != nil {
		return types.ActionResult{}, txErr
	}

	return result, nil
}

func (a *AttendanceReportAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "generate_attendance_report",
		Description: "Generate an attendance report for a date range, with per-employee days, hours and late arrivals.",
		Properties: map[string]jsonschema.Definition{
			"start_date": {
				Type:        jsonschema.String,
				Description: "Start date (YYYY-MM-DD)",
			},
			"end_date": {
				Type:        jsonschema.String,
				Description: "End date (YYYY-MM-DD)",
			},
			"user_id": {
				Type:        jsonschema.Integer,
				Description: "Optional specific user ID",
			},
			"department": {
				Type:        jsonschema.String,
				Description: "Optional department filter",
			},
		},
		Required: []string{"start_date", "end_date"},
	}
}
