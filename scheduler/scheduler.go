package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/workmate-ai/workmate/core/manager"
	"github.com/workmate-ai/workmate/core/types"
	"github.com/workmate-ai/workmate/pkg/xlog"
	"github.com/workmate-ai/workmate/services"
)

// DefaultWeeklyReportSpec runs the attendance report every Monday at 07:00.
const DefaultWeeklyReportSpec = "0 7 * * MON"

const dateLayout = "2006-01-02"

// Scheduler drives the recurring report jobs. Actions dispatched from here
// have no acting user, so their audit rows carry a null user id.
type Scheduler struct {
	cron    *cron.Cron
	manager *manager.Manager
}

func New(m *manager.Manager) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		manager: m,
	}
}

// ScheduleWeeklyReport registers the weekly attendance report job. spec is a
// five-field cron expression; empty means the default Monday morning run.
func (s *Scheduler) ScheduleWeeklyReport(spec string) error {
	if spec == "" {
		spec = DefaultWeeklyReportSpec
	}
	if _, err := s.cron.AddFunc(spec, s.RunWeeklyReport); err != nil {
		return err
	}
	xlog.Info("Weekly attendance report scheduled", "spec", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels future runs and waits for an in-flight job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunWeeklyReport generates the attendance report covering the previous
// Monday through Sunday.
func (s *Scheduler) RunWeeklyReport() {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	thisMonday := midnight.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
	start := thisMonday.AddDate(0, 0, -7)
	end := start.AddDate(0, 0, 6)

	params := types.NewOrderedParams().
		Set("start_date", start.Format(dateLayout)).
		Set("end_date", end.Format(dateLayout))

	result := s.manager.ExecuteAction(context.Background(), manager.AgentReport,
		services.ActionAttendanceReport, params, nil, nil)
	if !result.Success {
		xlog.Error("Scheduled attendance report failed", "error", result.Error)
		return
	}
	xlog.Info("Scheduled attendance report generated",
		"start", start.Format(dateLayout),
		"end", end.Format(dateLayout),
		"execution_time_ms", result.ExecutionTimeMS)
}
