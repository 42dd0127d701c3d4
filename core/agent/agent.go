package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
	"github.com/workmate-ai/workmate/pkg/llm"
	"github.com/workmate-ai/workmate/pkg/xlog"
)

const (
	// maxRetries bounds repeated completion calls when the model returns
	// nothing usable.
	maxRetries = 3
	// policyResults is how many retrieved snippets get folded into context.
	policyResults = 3
)

// Agent turns a natural-language request into calls against its registered
// tools and records every run in the action log. One Agent serves one role
// (clock, task, report) and is safe for concurrent use.
type Agent struct {
	name           string
	description    string
	systemPrompt   string
	actions        types.Actions
	client         llm.LLMClient
	model          string
	maxIterations  int
	memoryWindow   int
	retriever      Retriever
	policyKeywords []string

	mu     sync.Mutex
	memory []openai.ChatCompletionMessage
}

func New(opts ...Option) (*Agent, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if options.name == "" {
		return nil, fmt.Errorf("agent name is required")
	}
	if options.client == nil {
		return nil, fmt.Errorf("agent %q needs an LLM client", options.name)
	}

	return &Agent{
		name:           options.name,
		description:    options.description,
		systemPrompt:   options.systemPrompt,
		actions:        options.actions,
		client:         options.client,
		model:          options.model,
		maxIterations:  options.maxIterations,
		memoryWindow:   options.memoryWindow,
		retriever:      options.retriever,
		policyKeywords: options.policyKeywords,
	}, nil
}

func (a *Agent) Name() string        { return a.name }
func (a *Agent) Description() string { return a.description }

// Actions returns the agent's registered tools.
func (a *Agent) Actions() types.Actions { return a.actions }

// Execute runs one request through the agent and always returns an envelope,
// never an error: orchestration failures become Success=false with the error
// message inside. Whatever happens, exactly one audit row is attempted on the
// given store handle; actor is the requesting user, nil for system runs.
func (a *Agent) Execute(ctx context.Context, input string, contextData map[string]interface{}, actor *uint, store *gorm.DB) types.ExecutionResult {
	start := time.Now()

	contextData = a.withPolicyContext(ctx, input, contextData)
	prompt := contextualize(input, contextData)

	output, steps, err := a.run(ctx, prompt)
	elapsed := time.Since(start).Milliseconds()

	result := types.ExecutionResult{
		Agent:           a.name,
		ExecutionTimeMS: elapsed,
		Steps:           steps,
	}
	if err != nil {
		result.Error = err.Error()
		xlog.Error("Agent execution failed", "agent", a.name, "error", err)
	} else {
		result.Success = true
		result.Output = output
		xlog.Info("Agent executed", "agent", a.name, "duration_ms", elapsed)
	}

	a.audit(ctx, store, actor, input, contextData, &result)

	return result
}

// ClearMemory drops the conversation window.
func (a *Agent) ClearMemory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.memory = nil
}

// withPolicyContext consults the retriever when the input looks like a
// policy question. Best effort: retrieval being down or empty never blocks
// the request.
func (a *Agent) withPolicyContext(ctx context.Context, input string, contextData map[string]interface{}) map[string]interface{} {
	if a.retriever == nil || len(a.policyKeywords) == 0 {
		return contextData
	}

	lowered := strings.ToLower(input)
	matched := false
	for _, keyword := range a.policyKeywords {
		if strings.Contains(lowered, keyword) {
			matched = true
			break
		}
	}
	if !matched {
		return contextData
	}

	results, err := a.retriever.Search(ctx, input, policyResults)
	if err != nil {
		xlog.Warn("Policy retrieval failed", "agent", a.name, "error", err)
		return contextData
	}
	if results.Unavailable || len(results.Snippets) == 0 {
		return contextData
	}

	snippets := results.Snippets
	if len(snippets) > policyResults {
		snippets = snippets[:policyResults]
	}
	texts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		texts = append(texts, s.Content)
	}

	augmented := make(map[string]interface{}, len(contextData)+1)
	for k, v := range contextData {
		augmented[k] = v
	}
	augmented["relevant_policies"] = strings.Join(texts, "\n")
	return augmented
}

// contextualize prefixes the raw input with the caller-supplied context.
// Keys are sorted so the same call always renders the same prompt.
func contextualize(input string, contextData map[string]interface{}) string {
	if len(contextData) == 0 {
		return input
	}

	keys := make([]string, 0, len(contextData))
	for k := range contextData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, contextData[k]))
	}

	return fmt.Sprintf("Context:\n%s\n\nUser Request: %s", strings.Join(lines, "\n"), input)
}

// run is the tool-selection loop. It ends when the model answers without
// requesting a tool, and errors when the iteration cap is hit first.
func (a *Agent) run(ctx context.Context, prompt string) (string, []types.ToolStep, error) {
	system, err := renderSystemPrompt(a.systemPrompt)
	if err != nil {
		return "", nil, fmt.Errorf("rendering system prompt: %w", err)
	}

	if len(a.actions) == 0 {
		msg, err := a.decision(ctx, []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		}, nil)
		if err != nil {
			return "", nil, err
		}
		return msg.Content, nil, nil
	}

	conversation := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
	}
	conversation = append(conversation, a.history()...)
	conversation = append(conversation, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: prompt,
	})

	tools := a.actions.ToTools()
	var steps []types.ToolStep

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		msg, err := a.decision(ctx, conversation, tools)
		if err != nil {
			return "", steps, err
		}
		conversation = append(conversation, msg)

		if len(msg.ToolCalls) == 0 {
			a.remember(prompt, msg.Content)
			return msg.Content, steps, nil
		}

		for _, call := range msg.ToolCalls {
			step := a.invokeTool(ctx, call)
			steps = append(steps, step)
			conversation = append(conversation, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    step.Result,
				ToolCallID: call.ID,
			})
		}
	}

	return "", steps, fmt.Errorf("stopped after %d tool iterations without a final answer", a.maxIterations)
}

func (a *Agent) decision(ctx context.Context, conversation []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error) {
	request := openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: conversation,
		Tools:    tools,
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := a.client.CreateChatCompletion(ctx, request)
		if err != nil {
			lastErr = err
			xlog.Warn("Attempt to make a decision failed", "agent", a.name, "attempt", attempt+1, "error", err)
			continue
		}
		if len(resp.Choices) != 1 {
			lastErr = fmt.Errorf("no choices: %d", len(resp.Choices))
			xlog.Warn("Attempt to make a decision failed", "agent", a.name, "attempt", attempt+1, "error", lastErr)
			continue
		}
		return resp.Choices[0].Message, nil
	}

	return openai.ChatCompletionMessage{}, fmt.Errorf("model did not return a usable choice: %w", lastErr)
}

// invokeTool validates the requested tool against the registry and runs it.
// Every failure mode comes back as a tool message the model can read, so the
// loop keeps going.
func (a *Agent) invokeTool(ctx context.Context, call openai.ToolCall) types.ToolStep {
	step := types.ToolStep{
		Tool:   call.Function.Name,
		Params: call.Function.Arguments,
	}

	action := a.actions.Find(call.Function.Name)
	if action == nil {
		step.Failed = true
		step.Result = fmt.Sprintf("Error: unknown tool %q", call.Function.Name)
		xlog.Warn("Model requested unknown tool", "agent", a.name, "tool", call.Function.Name)
		return step
	}

	params := types.ActionParams{}
	if err := params.Read(call.Function.Arguments); err != nil {
		step.Failed = true
		step.Result = fmt.Sprintf("Error: invalid tool arguments: %v", err)
		return step
	}

	xlog.Debug("Invoking tool", "agent", a.name, "tool", call.Function.Name, "params", params.String())

	result, err := action.Run(ctx, params)
	if err != nil {
		step.Failed = true
		step.Result = fmt.Sprintf("Error: %v", err)
		xlog.Error("Tool execution failed", "agent", a.name, "tool", call.Function.Name, "error", err)
		return step
	}

	step.Failed = result.Failed
	step.Result = result.Result
	return step
}

func (a *Agent) remember(input, output string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.memory = append(a.memory,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: input},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: output},
	)
	if max := a.memoryWindow * 2; len(a.memory) > max {
		a.memory = a.memory[len(a.memory)-max:]
	}
}

func (a *Agent) history() []openai.ChatCompletionMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]openai.ChatCompletionMessage(nil), a.memory...)
}

// audit writes the action log row. Failures are logged and swallowed: the
// computed result is never masked by a persistence problem. On success the
// new row id is placed on the result.
func (a *Agent) audit(ctx context.Context, store *gorm.DB, actor *uint, input string, contextData map[string]interface{}, result *types.ExecutionResult) {
	if store == nil {
		return
	}

	inputData, _ := json.Marshal(map[string]interface{}{
		"input":   input,
		"context": contextData,
	})
	outputData, _ := json.Marshal(result)

	action := &models.AgentAction{
		AgentName:       a.name,
		ActionType:      "execute",
		InputData:       datatypes.JSON(inputData),
		OutputData:      datatypes.JSON(outputData),
		Success:         result.Success,
		ErrorMessage:    result.Error,
		UserID:          actor,
		ExecutionTimeMS: result.ExecutionTimeMS,
	}

	if err := store.WithContext(ctx).Create(action).Error; err != nil {
		xlog.Error("Error saving agent action", "agent", a.name, "error", err)
		return
	}
	result.ActionID = &action.ID
}
