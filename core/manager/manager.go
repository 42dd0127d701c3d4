package manager

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/agent"
	"github.com/workmate-ai/workmate/core/types"
	"github.com/workmate-ai/workmate/pkg/llm"
	"github.com/workmate-ai/workmate/pkg/xlog"
)

// Agent type keys as they appear on the wire.
const (
	AgentClock  = "clock"
	AgentTask   = "task"
	AgentReport = "report"
)

// NaturalLanguageAction passes the raw query through instead of a formatted
// action line.
const NaturalLanguageAction = "process_natural_language"

// policyKeywords gate the task agent's retrieval lookups.
var policyKeywords = []string{"policy", "procedure", "guideline", "how to"}

// Manager owns the three agents and the action log. It is built explicitly
// with New and holds no global state.
type Manager struct {
	db         *gorm.DB
	client     llm.LLMClient
	model      string
	retriever  agent.Retriever
	actionSets map[string]types.Actions

	mu          sync.Mutex
	agents      map[string]*agent.Agent
	initialized bool
}

func New(opts ...Option) (*Manager, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if options.db == nil {
		return nil, fmt.Errorf("manager needs a database handle")
	}
	if options.client == nil {
		return nil, fmt.Errorf("manager needs an LLM client")
	}

	return &Manager{
		db:         options.db,
		client:     options.client,
		model:      options.model,
		retriever:  options.retriever,
		actionSets: options.actionSets,
		agents:     map[string]*agent.Agent{},
	}, nil
}

// Initialize builds the agents. Idempotent, so callers may invoke it both at
// startup and lazily.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return nil
	}

	build := func(name, description, prompt string, agentType string, extra ...agent.Option) (*agent.Agent, error) {
		opts := []agent.Option{
			agent.WithName(name),
			agent.WithDescription(description),
			agent.WithSystemPrompt(prompt),
			agent.WithLLMClient(m.client),
			agent.WithModel(m.model),
			agent.WithActions(m.actionSets[agentType]...),
		}
		return agent.New(append(opts, extra...)...)
	}

	clock, err := build(
		"Clock Management Agent",
		"Handles employee time tracking, clock-in/out, and attendance queries",
		agent.ClockSystemPrompt, AgentClock,
	)
	if err != nil {
		return fmt.Errorf("building clock agent: %w", err)
	}

	var taskExtra []agent.Option
	if m.retriever != nil {
		taskExtra = append(taskExtra, agent.WithRetriever(m.retriever, policyKeywords...))
	}
	task, err := build(
		"Task Management Agent",
		"Handles task creation, assignment, tracking, and workload management",
		agent.TaskSystemPrompt, AgentTask, taskExtra...,
	)
	if err != nil {
		return fmt.Errorf("building task agent: %w", err)
	}

	report, err := build(
		"Report Generation Agent",
		"Generates attendance reports, task summaries, and weekly reports",
		agent.ReportSystemPrompt, AgentReport,
	)
	if err != nil {
		return fmt.Errorf("building report agent: %w", err)
	}

	m.agents = map[string]*agent.Agent{
		AgentClock:  clock,
		AgentTask:   task,
		AgentReport: report,
	}
	m.initialized = true
	xlog.Info("Agent manager initialized", "agents", len(m.agents))
	return nil
}

// Cleanup clears agent memories and forces the next call to reinitialize.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ag := range m.agents {
		ag.ClearMemory()
	}
	m.initialized = false
	xlog.Info("Agent manager cleaned up")
}

// ExecuteAction routes one request to the named agent. An unknown agent type
// is rejected with an envelope and no audit row, since no agent ran. All
// recognized types produce exactly one audit attempt inside agent.Execute.
func (m *Manager) ExecuteAction(ctx context.Context, agentType, action string, params *types.OrderedParams, contextData map[string]interface{}, actor *uint) types.ExecutionResult {
	if err := m.Initialize(); err != nil {
		return types.ExecutionResult{
			Error: err.Error(),
			Agent: agentType,
		}
	}

	m.mu.Lock()
	ag, ok := m.agents[agentType]
	m.mu.Unlock()
	if !ok {
		return types.ExecutionResult{
			Error: fmt.Sprintf("Unknown agent type: %s", agentType),
			Agent: agentType,
		}
	}

	input := formatInput(action, params)

	// Each call gets its own session for the audit write so it never shares
	// transaction state with the tools.
	scope := m.db.WithContext(ctx).Session(&gorm.Session{})
	return ag.Execute(ctx, input, contextData, actor, scope)
}

// formatInput renders the action and its parameters as the natural-language
// request the agent sees. Parameter order is preserved as sent.
func formatInput(action string, params *types.OrderedParams) string {
	if action == NaturalLanguageAction {
		return params.GetString("query")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Action: %s\n", action)
	for _, key := range params.Keys() {
		value, _ := params.Get(key)
		fmt.Fprintf(&b, "%s: %v\n", key, value)
	}
	return b.String()
}

// AgentInfo describes the configured agents keyed by wire type.
func (m *Manager) AgentInfo() map[string]map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := make(map[string]map[string]interface{}, len(m.agents))
	for key, ag := range m.agents {
		info[key] = map[string]interface{}{
			"name":        ag.Name(),
			"description": ag.Description(),
			"available":   true,
		}
	}
	return info
}

// AgentCount reports how many agents are live.
func (m *Manager) AgentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.agents)
}

// RAGActive reports whether policy retrieval is wired in.
func (m *Manager) RAGActive() bool {
	return m.retriever != nil
}
