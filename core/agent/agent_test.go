package agent_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"gorm.io/gorm"

	. "github.com/workmate-ai/workmate/core/agent"
	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
	"github.com/workmate-ai/workmate/pkg/llm"
	"github.com/workmate-ai/workmate/rag"
)

type fakeTool struct {
	name   string
	result types.ActionResult
	err    error
	calls  []types.ActionParams
}

func (f *fakeTool) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return types.ActionResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeTool) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        types.ActionDefinitionName(f.name),
		Description: "test tool",
		Properties: map[string]jsonschema.Definition{
			"user_id": {Type: jsonschema.Integer, Description: "user"},
		},
		Required: []string{"user_id"},
	}
}

type fakeRetriever struct {
	results rag.Results
	err     error
	queries []string
}

func (f *fakeRetriever) Search(ctx context.Context, query string, topK int) (rag.Results, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func answer(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
		}},
	}
}

func toolRequest(callID, tool, arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					ID:       callID,
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: tool, Arguments: arguments},
				}},
			},
		}},
	}
}

var _ = Describe("Agent", func() {
	var (
		ctx      context.Context
		conn     *gorm.DB
		dana     models.User
		tool     *fakeTool
		client   *llm.MockClient
		requests []openai.ChatCompletionRequest
	)

	BeforeEach(func() {
		ctx = context.TODO()
		conn = newTestDB()
		dana = models.User{
			Email:          "dana@company.com",
			Username:       "dana",
			FullName:       "Dana Reyes",
			HashedPassword: "x",
			Role:           models.RoleEmployee,
			Department:     "Engineering",
			IsActive:       true,
		}
		Expect(conn.Create(&dana).Error).ToNot(HaveOccurred())

		tool = &fakeTool{name: "clock_in", result: types.ActionResult{Result: "Successfully clocked in Dana Reyes at 09:00 AM"}}
		client = &llm.MockClient{}
		requests = nil
	})

	record := func(req openai.ChatCompletionRequest) {
		requests = append(requests, req)
	}

	script := func(steps ...func() (openai.ChatCompletionResponse, error)) {
		calls := 0
		client.CreateChatCompletionFunc = func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			record(req)
			step := steps[len(steps)-1]
			if calls < len(steps) {
				step = steps[calls]
			}
			calls++
			return step()
		}
	}

	respond := func(resp openai.ChatCompletionResponse) func() (openai.ChatCompletionResponse, error) {
		return func() (openai.ChatCompletionResponse, error) { return resp, nil }
	}

	fail := func(err error) func() (openai.ChatCompletionResponse, error) {
		return func() (openai.ChatCompletionResponse, error) { return openai.ChatCompletionResponse{}, err }
	}

	newAgent := func(extra ...Option) *Agent {
		opts := []Option{
			WithName("Clock Management Agent"),
			WithLLMClient(client),
			WithModel("gpt-4"),
			WithActions(tool),
		}
		ag, err := New(append(opts, extra...)...)
		Expect(err).ToNot(HaveOccurred())
		return ag
	}

	Describe("construction", func() {
		It("requires a name", func() {
			_, err := New(WithLLMClient(client))
			Expect(err).To(MatchError("agent name is required"))
		})

		It("requires an LLM client", func() {
			_, err := New(WithName("Clock Management Agent"))
			Expect(err).To(MatchError(ContainSubstring("needs an LLM client")))
		})
	})

	Describe("tool selection", func() {
		It("runs the requested tool and returns the final answer", func() {
			script(
				respond(toolRequest("call-1", "clock_in", `{"user_id": 1}`)),
				respond(answer("You're clocked in.")),
			)

			result := newAgent().Execute(ctx, "Clock me in", nil, &dana.ID, conn)

			Expect(result.Success).To(BeTrue())
			Expect(result.Error).To(BeEmpty())
			Expect(result.Output).To(Equal("You're clocked in."))
			Expect(result.Agent).To(Equal("Clock Management Agent"))
			Expect(result.Steps).To(HaveLen(1))
			Expect(result.Steps[0].Tool).To(Equal("clock_in"))
			Expect(result.Steps[0].Params).To(Equal(`{"user_id": 1}`))
			Expect(result.Steps[0].Result).To(Equal("Successfully clocked in Dana Reyes at 09:00 AM"))
			Expect(result.Steps[0].Failed).To(BeFalse())

			Expect(tool.calls).To(HaveLen(1))
			Expect(tool.calls[0]["user_id"]).To(Equal(float64(1)))
		})

		It("advertises the registered tools to the model", func() {
			script(respond(answer("No tool needed.")))

			newAgent().Execute(ctx, "What can you do?", nil, nil, nil)

			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Model).To(Equal("gpt-4"))
			Expect(requests[0].Tools).To(HaveLen(1))
			Expect(requests[0].Tools[0].Function.Name).To(Equal("clock_in"))
		})

		It("feeds the tool output back as a tool message", func() {
			script(
				respond(toolRequest("call-1", "clock_in", `{"user_id": 1}`)),
				respond(answer("Done.")),
			)

			newAgent().Execute(ctx, "Clock me in", nil, nil, nil)

			Expect(requests).To(HaveLen(2))
			messages := requests[1].Messages
			last := messages[len(messages)-1]
			Expect(last.Role).To(Equal(openai.ChatMessageRoleTool))
			Expect(last.ToolCallID).To(Equal("call-1"))
			Expect(last.Content).To(Equal("Successfully clocked in Dana Reyes at 09:00 AM"))

			previous := messages[len(messages)-2]
			Expect(previous.ToolCalls).To(HaveLen(1))
		})

		It("reports an unknown tool to the model and keeps going", func() {
			script(
				respond(toolRequest("call-1", "launch_rockets", `{}`)),
				respond(answer("I can't do that.")),
			)

			result := newAgent().Execute(ctx, "Do something weird", nil, nil, conn)

			Expect(result.Success).To(BeTrue())
			Expect(result.Steps).To(HaveLen(1))
			Expect(result.Steps[0].Failed).To(BeTrue())
			Expect(result.Steps[0].Result).To(Equal(`Error: unknown tool "launch_rockets"`))
			Expect(tool.calls).To(BeEmpty())

			messages := requests[1].Messages
			Expect(messages[len(messages)-1].Content).To(Equal(`Error: unknown tool "launch_rockets"`))
		})

		It("reports invalid tool arguments instead of aborting", func() {
			script(
				respond(toolRequest("call-1", "clock_in", `{"user_id": `)),
				respond(answer("Let me try again later.")),
			)

			result := newAgent().Execute(ctx, "Clock me in", nil, nil, nil)

			Expect(result.Success).To(BeTrue())
			Expect(result.Steps[0].Failed).To(BeTrue())
			Expect(result.Steps[0].Result).To(ContainSubstring("Error: invalid tool arguments"))
			Expect(tool.calls).To(BeEmpty())
		})

		It("surfaces tool errors as readable tool messages", func() {
			tool.err = errors.New("database is locked")
			script(
				respond(toolRequest("call-1", "clock_in", `{"user_id": 1}`)),
				respond(answer("Something went wrong, try again.")),
			)

			result := newAgent().Execute(ctx, "Clock me in", nil, nil, nil)

			Expect(result.Success).To(BeTrue())
			Expect(result.Steps[0].Failed).To(BeTrue())
			Expect(result.Steps[0].Result).To(Equal("Error: database is locked"))
		})

		It("keeps domain refusals distinct from run failures", func() {
			tool.result = types.ActionResult{Result: "Error: Dana Reyes is already clocked in since 2026-08-25 08:00:00", Failed: true}
			script(
				respond(toolRequest("call-1", "clock_in", `{"user_id": 1}`)),
				respond(answer("You are already clocked in.")),
			)

			result := newAgent().Execute(ctx, "Clock me in", nil, nil, nil)

			Expect(result.Success).To(BeTrue())
			Expect(result.Steps[0].Failed).To(BeTrue())
			Expect(result.Steps[0].Result).To(ContainSubstring("already clocked in"))
		})

		It("stops after the iteration cap", func() {
			script(respond(toolRequest("call-1", "clock_in", `{"user_id": 1}`)))

			result := newAgent(WithMaxIterations(2)).Execute(ctx, "Clock me in", nil, &dana.ID, conn)

			Expect(result.Success).To(BeFalse())
			Expect(result.Output).To(BeEmpty())
			Expect(result.Error).To(Equal("stopped after 2 tool iterations without a final answer"))
			Expect(result.Steps).To(HaveLen(2))

			var action models.AgentAction
			Expect(conn.First(&action, *result.ActionID).Error).ToNot(HaveOccurred())
			Expect(action.Success).To(BeFalse())
			Expect(action.ErrorMessage).To(Equal(result.Error))
		})
	})

	Describe("completion retries", func() {
		It("retries transient failures", func() {
			script(
				fail(errors.New("upstream 503")),
				fail(errors.New("upstream 503")),
				respond(answer("Finally.")),
			)

			result := newAgent().Execute(ctx, "Clock me in", nil, nil, nil)

			Expect(result.Success).To(BeTrue())
			Expect(result.Output).To(Equal("Finally."))
			Expect(requests).To(HaveLen(3))
		})

		It("gives up after repeated failures", func() {
			script(fail(errors.New("upstream 503")))

			result := newAgent().Execute(ctx, "Clock me in", nil, &dana.ID, conn)

			Expect(result.Success).To(BeFalse())
			Expect(result.Error).To(ContainSubstring("model did not return a usable choice"))
			Expect(result.Error).To(ContainSubstring("upstream 503"))
			Expect(result.Steps).To(BeEmpty())
			Expect(requests).To(HaveLen(3))
		})

		It("treats an empty choice list as a failure", func() {
			script(respond(openai.ChatCompletionResponse{}))

			result := newAgent().Execute(ctx, "Clock me in", nil, nil, nil)

			Expect(result.Success).To(BeFalse())
			Expect(result.Error).To(ContainSubstring("no choices"))
		})
	})

	Describe("audit log", func() {
		It("writes exactly one row per run", func() {
			script(
				respond(toolRequest("call-1", "clock_in", `{"user_id": 1}`)),
				respond(answer("Clocked in.")),
			)

			result := newAgent().Execute(ctx, "Clock me in", map[string]interface{}{"user_id": dana.ID}, &dana.ID, conn)

			var total int64
			Expect(conn.Model(&models.AgentAction{}).Count(&total).Error).ToNot(HaveOccurred())
			Expect(total).To(Equal(int64(1)))

			Expect(result.ActionID).ToNot(BeNil())
			var action models.AgentAction
			Expect(conn.First(&action, *result.ActionID).Error).ToNot(HaveOccurred())
			Expect(action.AgentName).To(Equal("Clock Management Agent"))
			Expect(action.ActionType).To(Equal("execute"))
			Expect(action.Success).To(BeTrue())
			Expect(action.UserID).To(Equal(&dana.ID))
			Expect(action.ExecutionTimeMS).To(BeNumerically(">=", 0))

			var input map[string]interface{}
			Expect(json.Unmarshal(action.InputData, &input)).To(Succeed())
			Expect(input["input"]).To(Equal("Clock me in"))
			Expect(input["context"]).To(HaveKey("user_id"))

			var output map[string]interface{}
			Expect(json.Unmarshal(action.OutputData, &output)).To(Succeed())
			Expect(output["success"]).To(Equal(true))
			Expect(output["output"]).To(Equal("Clocked in."))
		})

		It("records system runs with no user", func() {
			script(respond(answer("Report generated.")))

			result := newAgent().Execute(ctx, "Generate the weekly report", nil, nil, conn)

			var action models.AgentAction
			Expect(conn.First(&action, *result.ActionID).Error).ToNot(HaveOccurred())
			Expect(action.UserID).To(BeNil())
		})

		It("skips the audit write without a store", func() {
			script(respond(answer("Hello.")))

			result := newAgent().Execute(ctx, "Say hello", nil, nil, nil)

			Expect(result.Success).To(BeTrue())
			Expect(result.ActionID).To(BeNil())
		})
	})

	Describe("context data", func() {
		It("renders context keys sorted ahead of the request", func() {
			script(respond(answer("ok")))

			newAgent().Execute(ctx, "Clock me in", map[string]interface{}{
				"user_name": "Dana Reyes",
				"user_id":   7,
			}, nil, nil)

			Expect(requests[0].Messages[1].Content).To(Equal(
				"Context:\nuser_id: 7\nuser_name: Dana Reyes\n\nUser Request: Clock me in"))
		})

		It("passes bare input through without context", func() {
			script(respond(answer("ok")))

			newAgent().Execute(ctx, "Clock me in", nil, nil, nil)

			Expect(requests[0].Messages[1].Content).To(Equal("Clock me in"))
		})
	})

	Describe("memory", func() {
		It("replays prior exchanges on the next request", func() {
			script(
				respond(answer("First answer")),
				respond(answer("Second answer")),
			)
			ag := newAgent()

			ag.Execute(ctx, "first question", nil, nil, nil)
			ag.Execute(ctx, "second question", nil, nil, nil)

			messages := requests[1].Messages
			Expect(messages).To(HaveLen(4))
			Expect(messages[1].Role).To(Equal(openai.ChatMessageRoleUser))
			Expect(messages[1].Content).To(Equal("first question"))
			Expect(messages[2].Role).To(Equal(openai.ChatMessageRoleAssistant))
			Expect(messages[2].Content).To(Equal("First answer"))
			Expect(messages[3].Content).To(Equal("second question"))
		})

		It("trims memory to the configured window", func() {
			script(respond(answer("an answer")))
			ag := newAgent(WithMemoryWindow(1))

			ag.Execute(ctx, "question one", nil, nil, nil)
			ag.Execute(ctx, "question two", nil, nil, nil)
			ag.Execute(ctx, "question three", nil, nil, nil)

			messages := requests[2].Messages
			Expect(messages).To(HaveLen(4))
			Expect(messages[1].Content).To(Equal("question two"))
			Expect(messages[2].Content).To(Equal("an answer"))
			Expect(messages[3].Content).To(Equal("question three"))
		})

		It("forgets everything on ClearMemory", func() {
			script(respond(answer("an answer")))
			ag := newAgent()

			ag.Execute(ctx, "question one", nil, nil, nil)
			ag.ClearMemory()
			ag.Execute(ctx, "question two", nil, nil, nil)

			Expect(requests[1].Messages).To(HaveLen(2))
		})
	})

	Describe("policy retrieval", func() {
		var retriever *fakeRetriever

		BeforeEach(func() {
			retriever = &fakeRetriever{results: rag.Results{Snippets: []rag.Snippet{
				{Content: "Clock in within 15 minutes of your start time."},
				{Content: "Weekly reports are due Friday 5 PM."},
			}}}
		})

		It("folds snippets into the context for policy questions", func() {
			script(respond(answer("Per the handbook...")))

			newAgent(WithRetriever(retriever, "policy", "procedure")).
				Execute(ctx, "What is the clock-in policy?", nil, nil, nil)

			Expect(retriever.queries).To(Equal([]string{"What is the clock-in policy?"}))
			Expect(requests[0].Messages[1].Content).To(ContainSubstring(
				"relevant_policies: Clock in within 15 minutes of your start time.\nWeekly reports are due Friday 5 PM."))
		})

		It("skips retrieval when no keyword matches", func() {
			script(respond(answer("ok")))

			newAgent(WithRetriever(retriever, "policy")).
				Execute(ctx, "Clock me in", nil, nil, nil)

			Expect(retriever.queries).To(BeEmpty())
			Expect(requests[0].Messages[1].Content).To(Equal("Clock me in"))
		})

		It("carries on when retrieval fails", func() {
			retriever.err = errors.New("store down")
			script(respond(answer("ok")))

			result := newAgent(WithRetriever(retriever, "policy")).
				Execute(ctx, "What is the vacation policy?", nil, nil, nil)

			Expect(result.Success).To(BeTrue())
			Expect(requests[0].Messages[1].Content).ToNot(ContainSubstring("relevant_policies"))
		})

		It("carries on when the store is unavailable", func() {
			retriever.results = rag.Results{Unavailable: true}
			script(respond(answer("ok")))

			newAgent(WithRetriever(retriever, "policy")).
				Execute(ctx, "What is the vacation policy?", nil, nil, nil)

			Expect(requests[0].Messages[1].Content).ToNot(ContainSubstring("relevant_policies"))
		})
	})

	Describe("without tools", func() {
		It("answers in a single round and skips memory", func() {
			script(respond(answer("Just an answer")))

			ag, err := New(
				WithName("Report Generation Agent"),
				WithLLMClient(client),
			)
			Expect(err).ToNot(HaveOccurred())

			result := ag.Execute(ctx, "Summarize the week", nil, nil, nil)

			Expect(result.Success).To(BeTrue())
			Expect(result.Output).To(Equal("Just an answer"))
			Expect(result.Steps).To(BeEmpty())
			Expect(requests[0].Tools).To(BeEmpty())
			Expect(requests[0].Messages).To(HaveLen(2))
		})
	})
})
