package e2e_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
	workmate "github.com/workmate-ai/workmate/pkg/client"
)

func apiError(err error) *workmate.APIError {
	var apiErr *workmate.APIError
	ExpectWithOffset(1, errors.As(err, &apiErr)).To(BeTrue(), "expected an APIError, got %v", err)
	return apiErr
}

var _ = Describe("WorkMate service", Ordered, func() {
	var (
		ctx      context.Context
		employee *workmate.Client
		admin    *workmate.Client

		employeeID    uint
		clockActionID uint
		adminActionID uint
	)

	BeforeAll(func() {
		ctx = context.Background()
		employee = workmate.NewClient(baseURL, "", 30*time.Second)
		admin = workmate.NewClient(baseURL, "", 30*time.Second)
	})

	It("reports a healthy stack", func() {
		Expect(employee.Health(ctx)).To(Succeed())
	})

	It("registers an employee and logs in", func() {
		id, err := employee.Register(ctx, workmate.RegisterRequest{
			Email:      "casey@company.com",
			Username:   "casey",
			FullName:   "Casey Morgan",
			Password:   "Sunrise42x",
			Department: "Engineering",
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(id).ToNot(BeZero())
		employeeID = id

		login, err := employee.Login(ctx, "casey@company.com", "Sunrise42x")
		Expect(err).ToNot(HaveOccurred())
		Expect(login.AccessToken).ToNot(BeEmpty())
		Expect(login.User.Role).To(Equal("employee"))
		Expect(login.User.FullName).To(Equal("Casey Morgan"))

		me, err := employee.Me(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(me.ID).To(Equal(employeeID))
	})

	It("rejects weak passwords at registration", func() {
		_, err := employee.Register(ctx, workmate.RegisterRequest{
			Email:    "weak@company.com",
			Username: "weak",
			FullName: "Weak Password",
			Password: "short",
		})
		Expect(apiError(err).StatusCode).To(Equal(400))
	})

	It("rejects bad credentials", func() {
		guest := workmate.NewClient(baseURL, "", 30*time.Second)
		_, err := guest.Login(ctx, "casey@company.com", "WrongPass1")
		Expect(apiError(err).StatusCode).To(Equal(401))
	})

	It("requires a token on protected endpoints", func() {
		guest := workmate.NewClient(baseURL, "", 30*time.Second)
		_, err := guest.History(ctx, workmate.HistoryOptions{})
		Expect(apiError(err).StatusCode).To(Equal(401))
	})

	It("logs in the seeded admin", func() {
		login, err := admin.Login(ctx, adminEmail, adminPassword)
		Expect(err).ToNot(HaveOccurred())
		Expect(login.User.Role).To(Equal("admin"))
	})

	It("lists the three agents", func() {
		info, err := employee.AgentInfo(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(info).To(HaveLen(3))
		Expect(info).To(HaveKey("clock"))
		Expect(info).To(HaveKey("task"))
		Expect(info).To(HaveKey("report"))
		Expect(info["clock"].Name).To(Equal("Clock Management Agent"))
		Expect(info["clock"].Available).To(BeTrue())
	})

	It("clocks the employee in through the clock agent", func() {
		script(
			toolRequest("call-1", "clock_in", fmt.Sprintf(`{"user_id": %d}`, employeeID)),
			answer("You're clocked in. Have a good shift."),
		)

		result, err := employee.Execute(ctx, workmate.ExecuteRequest{
			AgentType:  "clock",
			Action:     "process_natural_language",
			Parameters: types.NewOrderedParams().Set("query", "clock me in"),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Success).To(BeTrue())
		Expect(result.Output).To(Equal("You're clocked in. Have a good shift."))
		Expect(result.Agent).To(Equal("Clock Management Agent"))
		Expect(result.Steps).To(HaveLen(1))
		Expect(result.Steps[0].Tool).To(Equal("clock_in"))
		Expect(result.Steps[0].Result).To(ContainSubstring("Successfully clocked in Casey Morgan"))
		Expect(result.ActionID).ToNot(BeNil())
		clockActionID = *result.ActionID
	})

	It("relays a second clock-in as a domain refusal", func() {
		script(
			toolRequest("call-2", "clock_in", fmt.Sprintf(`{"user_id": %d}`, employeeID)),
			answer("You are already clocked in."),
		)

		result, err := employee.Execute(ctx, workmate.ExecuteRequest{
			AgentType:  "clock",
			Action:     "process_natural_language",
			Parameters: types.NewOrderedParams().Set("query", "clock me in again"),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Success).To(BeTrue())
		Expect(result.Steps).To(HaveLen(1))
		Expect(result.Steps[0].Failed).To(BeTrue())
		Expect(result.Steps[0].Result).To(ContainSubstring("already clocked in"))
	})

	It("shows the caller's runs in history, newest first", func() {
		history, err := employee.History(ctx, workmate.HistoryOptions{})
		Expect(err).ToNot(HaveOccurred())
		Expect(history.Total).To(Equal(int64(2)))
		Expect(history.Actions).To(HaveLen(2))
		Expect(history.Actions[0].ID).To(BeNumerically(">", history.Actions[1].ID))
		for _, action := range history.Actions {
			Expect(action.UserID).ToNot(BeNil())
			Expect(*action.UserID).To(Equal(employeeID))
		}
	})

	It("keeps the audit trail scoped by role", func() {
		script(answer("Nothing urgent on the board."))
		result, err := admin.Execute(ctx, workmate.ExecuteRequest{
			AgentType:  "task",
			Action:     "process_natural_language",
			Parameters: types.NewOrderedParams().Set("query", "anything urgent?"),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Success).To(BeTrue())
		Expect(result.ActionID).ToNot(BeNil())
		adminActionID = *result.ActionID

		// Managers see everything, employees only their own rows.
		adminHistory, err := admin.History(ctx, workmate.HistoryOptions{})
		Expect(err).ToNot(HaveOccurred())
		Expect(adminHistory.Total).To(Equal(int64(3)))

		employeeHistory, err := employee.History(ctx, workmate.HistoryOptions{})
		Expect(err).ToNot(HaveOccurred())
		Expect(employeeHistory.Total).To(Equal(int64(2)))
	})

	It("returns the full audit detail to its owner", func() {
		detail, err := employee.Action(ctx, clockActionID)
		Expect(err).ToNot(HaveOccurred())
		Expect(detail.AgentName).To(Equal("Clock Management Agent"))
		Expect(detail.ActionType).To(Equal("execute"))
		Expect(detail.Success).To(BeTrue())
		Expect(string(detail.InputData)).To(ContainSubstring("clock me in"))
		Expect(string(detail.OutputData)).To(ContainSubstring("clock_in"))
		Expect(detail.User).ToNot(BeNil())
		Expect(detail.User.Name).To(Equal("Casey Morgan"))
		Expect(detail.Overridden).To(BeFalse())
	})

	It("hides other users' actions from employees", func() {
		_, err := employee.Action(ctx, adminActionID)
		Expect(apiError(err).StatusCode).To(Equal(403))
	})

	It("rejects an unknown agent type without recording it", func() {
		result, err := employee.Execute(ctx, workmate.ExecuteRequest{
			AgentType:  "ghost",
			Action:     "process_natural_language",
			Parameters: types.NewOrderedParams().Set("query", "boo"),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Success).To(BeFalse())
		Expect(result.Error).To(Equal("Unknown agent type: ghost"))
		Expect(result.ActionID).To(BeNil())

		history, err := employee.History(ctx, workmate.HistoryOptions{})
		Expect(err).ToNot(HaveOccurred())
		Expect(history.Total).To(Equal(int64(2)))
	})

	It("refuses override from an employee", func() {
		err := employee.OverrideAction(ctx, clockActionID, "not my call", nil)
		Expect(apiError(err).StatusCode).To(Equal(403))
	})

	It("requires a reason to override", func() {
		err := admin.OverrideAction(ctx, clockActionID, "  ", nil)
		Expect(apiError(err).StatusCode).To(Equal(400))
	})

	It("lets a manager override an action exactly once", func() {
		Expect(admin.OverrideAction(ctx, clockActionID, "Badge reader was offline, entry is manual",
			map[string]interface{}{"action": "adjust_clock_in", "time": "09:00"})).To(Succeed())

		detail, err := admin.Action(ctx, clockActionID)
		Expect(err).ToNot(HaveOccurred())
		Expect(detail.Overridden).To(BeTrue())
		Expect(detail.OverrideReason).ToNot(BeNil())
		Expect(*detail.OverrideReason).To(ContainSubstring("Badge reader"))
		Expect(detail.OverriddenBy).ToNot(BeNil())
		Expect(detail.OverriddenBy.Name).To(Equal("System Administrator"))

		err = admin.OverrideAction(ctx, clockActionID, "second thoughts", nil)
		apiErr := apiError(err)
		Expect(apiErr.StatusCode).To(Equal(400))
		Expect(apiErr.Message).To(ContainSubstring("already overridden"))
	})

	It("404s an override of a missing action", func() {
		err := admin.OverrideAction(ctx, 99999, "no such row", nil)
		Expect(apiError(err).StatusCode).To(Equal(404))
	})

	It("generates an attendance report bounded by the requested dates", func() {
		// Closed intervals inside a window safely in the past; the open
		// record from the clock-in spec sits outside it and must not count.
		for _, fixture := range []struct {
			in, out time.Time
			hours   float64
		}{
			{time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC), 8.0},
			{time.Date(2024, 3, 6, 9, 30, 0, 0, time.UTC), time.Date(2024, 3, 6, 17, 0, 0, 0, time.UTC), 7.5},
		} {
			out, hours := fixture.out, fixture.hours
			record := models.ClockRecord{
				UserID:     employeeID,
				ClockIn:    fixture.in,
				ClockOut:   &out,
				Status:     models.AttendanceClockedOut,
				TotalHours: &hours,
			}
			Expect(conn.Create(&record).Error).ToNot(HaveOccurred())
		}

		script(
			toolRequest("call-3", "generate_attendance_report", `{"start_date": "2024-03-04", "end_date": "2024-03-10"}`),
			answer("Attendance report is ready."),
		)

		response, err := admin.GenerateReport(ctx, workmate.GenerateReportRequest{
			ReportType: "attendance",
			StartDate:  "2024-03-04",
			EndDate:    "2024-03-10",
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(response.ReportID).ToNot(BeNil())
		Expect(response.Content).To(Equal("Attendance report is ready."))

		report, err := admin.GetReport(ctx, *response.ReportID)
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Type).To(Equal("attendance"))
		Expect(report.DateFrom.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))).To(BeTrue())
		Expect(report.DateTo.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))).To(BeTrue())

		var content struct {
			TotalHours    float64 `json:"total_hours"`
			EmployeeCount int     `json:"employee_count"`
		}
		Expect(json.Unmarshal(report.Content, &content)).To(Succeed())
		Expect(content.TotalHours).To(BeNumerically("~", 15.5, 0.001))
		Expect(content.EmployeeCount).To(Equal(1))
	})

	It("creates and assigns a task, warning about workload", func() {
		task, err := admin.CreateTask(ctx, workmate.CreateTaskRequest{
			Title:       "Rotate the API keys",
			Description: "Quarterly rotation for the payment gateway credentials.",
			Priority:    "high",
			Tags:        []string{" security ", "ops", "security"},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(task.Status).To(Equal("todo"))

		var tags []string
		Expect(json.Unmarshal(task.Tags, &tags)).To(Succeed())
		Expect(tags).To(Equal([]string{"security", "ops"}))

		// Pre-load the assignee so the assignment crosses the workload bar.
		for i := 0; i < 10; i++ {
			assignee := employeeID
			filler := models.Task{
				Title:       fmt.Sprintf("Backlog item %d", i),
				Description: "Filler",
				Status:      models.TaskStatusInProgress,
				Priority:    models.TaskPriorityMedium,
				AssigneeID:  &assignee,
				CreatedByID: 1,
			}
			Expect(conn.Create(&filler).Error).ToNot(HaveOccurred())
		}

		response, err := admin.AssignTask(ctx, task.ID, employeeID)
		Expect(err).ToNot(HaveOccurred())
		Expect(response.Message).To(ContainSubstring("Casey Morgan"))
		Expect(response.Warning).To(ContainSubstring("active tasks"))

		assigned, err := employee.GetTask(ctx, task.ID)
		Expect(err).ToNot(HaveOccurred())
		Expect(assigned.Status).To(Equal("in_progress"))
		Expect(assigned.AssigneeID).ToNot(BeNil())
		Expect(*assigned.AssigneeID).To(Equal(employeeID))
	})
})
