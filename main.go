package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/workmate-ai/workmate/api"
	"github.com/workmate-ai/workmate/core/manager"
	"github.com/workmate-ai/workmate/db"
	"github.com/workmate-ai/workmate/pkg/llm"
	"github.com/workmate-ai/workmate/pkg/mailer"
	"github.com/workmate-ai/workmate/pkg/xlog"
	"github.com/workmate-ai/workmate/rag"
	"github.com/workmate-ai/workmate/scheduler"
	"github.com/workmate-ai/workmate/services"
)

var dbDriver = os.Getenv("WORKMATE_DB_DRIVER")
var dbDSN = os.Getenv("WORKMATE_DB_DSN")
var llmAPIKey = os.Getenv("WORKMATE_LLM_API_KEY")
var llmAPIURL = os.Getenv("WORKMATE_LLM_API_URL")
var llmModel = os.Getenv("WORKMATE_LLM_MODEL")
var llmTimeout = os.Getenv("WORKMATE_LLM_TIMEOUT")
var embeddingsModel = os.Getenv("WORKMATE_EMBEDDINGS_MODEL")
var jwtSecret = os.Getenv("WORKMATE_JWT_SECRET")
var tokenTTL = os.Getenv("WORKMATE_TOKEN_TTL")
var httpAddr = os.Getenv("WORKMATE_HTTP_ADDR")
var corsOrigins = os.Getenv("WORKMATE_CORS_ORIGINS")
var adminPassword = os.Getenv("WORKMATE_ADMIN_PASSWORD")
var smtpServer = os.Getenv("WORKMATE_SMTP_SERVER")
var smtpUser = os.Getenv("WORKMATE_SMTP_USER")
var smtpPassword = os.Getenv("WORKMATE_SMTP_PASSWORD")
var smtpFrom = os.Getenv("WORKMATE_SMTP_FROM")
var reportCron = os.Getenv("WORKMATE_REPORT_CRON")
var disableScheduler = os.Getenv("WORKMATE_DISABLE_SCHEDULER") == "true"

func init() {
	if jwtSecret == "" {
		panic("WORKMATE_JWT_SECRET not set")
	}
	if llmModel == "" {
		llmModel = "gpt-4"
	}
	if llmTimeout == "" {
		llmTimeout = "5m"
	}
	if embeddingsModel == "" {
		embeddingsModel = "text-embedding-3-small"
	}
	if tokenTTL == "" {
		tokenTTL = "24h"
	}
	if httpAddr == "" {
		httpAddr = ":8000"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}
}

func main() {
	conn, err := db.Connect(dbDriver, dbDSN)
	if err != nil {
		panic(err)
	}
	if err := db.Seed(conn, adminPassword); err != nil {
		panic(err)
	}

	ttl, err := time.ParseDuration(tokenTTL)
	if err != nil {
		panic("invalid WORKMATE_TOKEN_TTL: " + tokenTTL)
	}

	client := llm.NewClient(llmAPIKey, llmAPIURL, llmTimeout)

	// Retrieval is best effort: without it the task agent still runs, just
	// without policy context.
	var loader *rag.DocumentLoader
	store, err := rag.NewChromemDB("company-documents", client, embeddingsModel)
	if err != nil {
		xlog.Warn("Retrieval unavailable", "error", err)
		store = nil
	} else {
		loader = rag.NewDocumentLoader(conn, store)
		if _, err := loader.LoadAll(context.Background()); err != nil {
			xlog.Warn("Indexing company documents failed", "error", err)
		}
	}

	deps := services.Deps{
		DB:     conn,
		Mailer: mailer.New(smtpServer, smtpUser, smtpPassword, smtpFrom),
	}

	managerOpts := []manager.Option{
		manager.WithDB(conn),
		manager.WithLLMClient(client),
		manager.WithModel(llmModel),
		manager.WithAgentActions(manager.AgentClock, services.ClockActions(deps)...),
		manager.WithAgentActions(manager.AgentTask, services.TaskActions(deps)...),
		manager.WithAgentActions(manager.AgentReport, services.ReportActions(deps)...),
	}
	if store != nil {
		managerOpts = append(managerOpts, manager.WithRetriever(store))
	}

	mgr, err := manager.New(managerOpts...)
	if err != nil {
		panic(err)
	}
	if err := mgr.Initialize(); err != nil {
		panic(err)
	}

	sched := scheduler.New(mgr)
	if !disableScheduler {
		if err := sched.ScheduleWeeklyReport(reportCron); err != nil {
			panic(err)
		}
		sched.Start()
	}

	appOpts := []api.Option{
		api.WithDB(conn),
		api.WithManager(mgr),
		api.WithJWTSecret(jwtSecret),
		api.WithTokenTTL(ttl),
	}
	if corsOrigins != "" {
		appOpts = append(appOpts, api.WithAllowOrigins(corsOrigins))
	}
	if loader != nil {
		appOpts = append(appOpts, api.WithDocumentLoader(loader))
	}

	app := api.NewApp(appOpts...)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
		<-sigc
		xlog.Info("Shutting down")
		sched.Stop()
		mgr.Cleanup()
		_ = app.Shutdown()
	}()

	if err := app.Listen(httpAddr); err != nil {
		log.Fatal(err)
	}
}
