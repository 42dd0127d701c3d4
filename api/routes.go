package api

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func (a *App) registerRoutes(webapp *fiber.App) {
	webapp.Use(a.requestTimer())
	webapp.Use(cors.New(cors.Config{
		AllowOrigins: a.config.AllowOrigins,
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	webapp.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": a.config.AppName + " API",
			"version": a.config.Version,
			"status":  "operational",
		})
	})
	webapp.Get("/health", a.Health())
	webapp.Get("/api", a.APIIndex())

	auth := webapp.Group("/api/auth")
	auth.Post("/register", a.Register())
	auth.Post("/login", a.Login())
	auth.Get("/me", a.RequireUser(), a.Me())
	auth.Post("/refresh", a.RequireUser(), a.RefreshToken())

	agents := webapp.Group("/api/agents", a.RequireUser())
	agents.Post("/execute", a.ExecuteAgent())
	agents.Get("/info", a.AgentInfo())
	agents.Get("/actions/history", a.ActionHistory())
	agents.Get("/actions/:id", a.ActionDetail())
	agents.Post("/actions/:id/override", a.RequireManager(), a.OverrideAgentAction())

	employees := webapp.Group("/api/employees", a.RequireUser())
	employees.Get("", a.ListEmployees())
	employees.Get("/:id", a.GetEmployee())
	employees.Put("/:id", a.RequireManager(), a.UpdateEmployee())
	employees.Get("/:id/attendance", a.EmployeeAttendance())

	tasks := webapp.Group("/api/tasks", a.RequireUser())
	tasks.Get("", a.ListTasks())
	tasks.Post("", a.CreateTask())
	tasks.Get("/:id", a.GetTask())
	tasks.Put("/:id", a.UpdateTask())
	tasks.Post("/:id/assign", a.AssignTask())
	tasks.Get("/:id/comments", a.ListTaskComments())
	tasks.Post("/:id/comments", a.AddTaskComment())

	reports := webapp.Group("/api/reports", a.RequireUser())
	reports.Post("/generate", a.GenerateReport())
	reports.Get("", a.ListReports())
	reports.Get("/:id", a.GetReport())

	documents := webapp.Group("/api/documents", a.RequireUser())
	documents.Get("", a.ListDocuments())
	documents.Post("", a.RequireManager(), a.CreateDocument())
	documents.Post("/reindex", a.RequireManager(), a.ReindexDocuments())
	documents.Get("/:id", a.GetDocument())
	documents.Put("/:id", a.RequireManager(), a.UpdateDocument())
}

func (a *App) APIIndex() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"endpoints": fiber.Map{
				"auth": fiber.Map{
					"register": "POST /api/auth/register",
					"login":    "POST /api/auth/login",
					"me":       "GET /api/auth/me",
					"refresh":  "POST /api/auth/refresh",
				},
				"agents": fiber.Map{
					"execute":       "POST /api/agents/execute",
					"info":          "GET /api/agents/info",
					"history":       "GET /api/agents/actions/history",
					"action_detail": "GET /api/agents/actions/{action_id}",
					"override":      "POST /api/agents/actions/{action_id}/override",
				},
				"employees": fiber.Map{
					"list":       "GET /api/employees",
					"get":        "GET /api/employees/{employee_id}",
					"update":     "PUT /api/employees/{employee_id}",
					"attendance": "GET /api/employees/{employee_id}/attendance",
				},
				"tasks": fiber.Map{
					"list":     "GET /api/tasks",
					"create":   "POST /api/tasks",
					"get":      "GET /api/tasks/{task_id}",
					"update":   "PUT /api/tasks/{task_id}",
					"assign":   "POST /api/tasks/{task_id}/assign",
					"comments": "POST /api/tasks/{task_id}/comments",
				},
				"reports": fiber.Map{
					"generate": "POST /api/reports/generate",
					"list":     "GET /api/reports",
					"get":      "GET /api/reports/{report_id}",
				},
				"documents": fiber.Map{
					"list":    "GET /api/documents",
					"create":  "POST /api/documents",
					"get":     "GET /api/documents/{document_id}",
					"update":  "PUT /api/documents/{document_id}",
					"reindex": "POST /api/documents/reindex",
				},
			},
		})
	}
}
