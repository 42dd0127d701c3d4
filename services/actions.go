package services

import (
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/types"
	"github.com/workmate-ai/workmate/pkg/mailer"
	"github.com/workmate-ai/workmate/services/actions"
)

// Tool names as the model selects them.
const (
	ActionClockIn          = "clock_in"
	ActionClockOut         = "clock_out"
	ActionAttendanceStatus = "get_attendance_status"
	ActionWeeklyHours      = "get_weekly_hours"
	ActionCreateTask       = "create_task"
	ActionAssignTask       = "assign_task"
	ActionUpdateTaskStatus = "update_task_status"
	ActionGetUserTasks     = "get_user_tasks"
	ActionSearchTasks      = "search_tasks"
	ActionAttendanceReport = "generate_attendance_report"
	ActionTaskReport       = "generate_task_report"
	ActionWeeklySummary    = "generate_weekly_summary"
	ActionSendReportEmail  = "send_report_email"
)

var AvailableActions = []string{
	ActionClockIn,
	ActionClockOut,
	ActionAttendanceStatus,
	ActionWeeklyHours,
	ActionCreateTask,
	ActionAssignTask,
	ActionUpdateTaskStatus,
	ActionGetUserTasks,
	ActionSearchTasks,
	ActionAttendanceReport,
	ActionTaskReport,
	ActionWeeklySummary,
	ActionSendReportEmail,
}

// Deps is what tool constructors need.
type Deps struct {
	DB     *gorm.DB
	Mailer *mailer.Mailer
}

// Action builds the named tool, or nil for an unknown name.
func Action(name string, deps Deps) types.Action {
	switch name {
	case ActionClockIn:
		return actions.NewClockIn(deps.DB)
	case ActionClockOut:
		return actions.NewClockOut(deps.DB)
	case ActionAttendanceStatus:
		return actions.NewAttendanceStatus(deps.DB)
	case ActionWeeklyHours:
		return actions.NewWeeklyHours(deps.DB)
	case ActionCreateTask:
		return actions.NewCreateTask(deps.DB)
	case ActionAssignTask:
		return actions.NewAssignTask(deps.DB)
	case ActionUpdateTaskStatus:
		return actions.NewUpdateTaskStatus(deps.DB)
	case ActionGetUserTasks:
		return actions.NewGetUserTasks(deps.DB)
	case ActionSearchTasks:
		return actions.NewSearchTasks(deps.DB)
	case ActionAttendanceReport:
		return actions.NewAttendanceReport(deps.DB)
	case ActionTaskReport:
		return actions.NewTaskReport(deps.DB)
	case ActionWeeklySummary:
		return actions.NewWeeklySummary(deps.DB)
	case ActionSendReportEmail:
		return actions.NewSendReportEmail(deps.Mailer)
	}
	return nil
}

func buildActions(deps Deps, names ...string) types.Actions {
	built := types.Actions{}
	for _, name := range names {
		if action := Action(name, deps); action != nil {
			built = append(built, action)
		}
	}
	return built
}

// ClockActions is the attendance agent's tool set.
func ClockActions(deps Deps) types.Actions {
	return buildActions(deps,
		ActionClockIn,
		ActionClockOut,
		ActionAttendanceStatus,
		ActionWeeklyHours,
	)
}

// TaskActions is the task agent's tool set.
func TaskActions(deps Deps) types.Actions {
	return buildActions(deps,
		ActionCreateTask,
		ActionAssignTask,
		ActionUpdateTaskStatus,
		ActionGetUserTasks,
		ActionSearchTasks,
	)
}

// ReportActions is the report agent's tool set.
func ReportActions(deps Deps) types.Actions {
	return buildActions(deps,
		ActionAttendanceReport,
		ActionTaskReport,
		ActionWeeklySummary,
		ActionSendReportEmail,
	)
}
