package services_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workmate-ai/workmate/core/types"
	"github.com/workmate-ai/workmate/services"
)

var _ = Describe("Action registry", func() {
	var deps services.Deps

	BeforeEach(func() {
		deps = services.Deps{DB: newTestDB()}
	})

	It("builds every advertised action", func() {
		for _, name := range services.AvailableActions {
			action := services.Action(name, deps)
			Expect(action).ToNot(BeNil(), "action %q", name)
			Expect(action.Definition().Name.Is(name)).To(BeTrue(), "action %q", name)
		}
	})

	It("returns nil for unknown names", func() {
		Expect(services.Action("frobnicate", deps)).To(BeNil())
	})

	It("builds the email action even without a mailer", func() {
		Expect(services.Action(services.ActionSendReportEmail, deps)).ToNot(BeNil())
	})

	It("composes the per-agent tool sets", func() {
		names := func(actions types.Actions) []string {
			var out []string
			for _, definition := range actions.Definitions() {
				out = append(out, definition.Name.String())
			}
			return out
		}

		Expect(names(services.ClockActions(deps))).To(Equal([]string{
			services.ActionClockIn,
			services.ActionClockOut,
			services.ActionAttendanceStatus,
			services.ActionWeeklyHours,
		}))
		Expect(names(services.TaskActions(deps))).To(Equal([]string{
			services.ActionCreateTask,
			services.ActionAssignTask,
			services.ActionUpdateTaskStatus,
			services.ActionGetUserTasks,
			services.ActionSearchTasks,
		}))
		Expect(names(services.ReportActions(deps))).To(Equal([]string{
			services.ActionAttendanceReport,
			services.ActionTaskReport,
			services.ActionWeeklySummary,
			services.ActionSendReportEmail,
		}))
	})

	It("gives every tool a schema the model can call", func() {
		for _, name := range services.AvailableActions {
			definition := services.Action(name, deps).Definition()
			Expect(definition.Description).ToNot(BeEmpty(), "action %q", name)
			Expect(definition.Properties).ToNot(BeEmpty(), "action %q", name)
			for _, required := range definition.Required {
				Expect(definition.Properties).To(HaveKey(required), "action %q", name)
			}
		}
	})
})
