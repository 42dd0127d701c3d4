package manager

import (
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/agent"
	"github.com/workmate-ai/workmate/core/types"
	"github.com/workmate-ai/workmate/pkg/llm"
)

type Option func(*options) error

type options struct {
	db         *gorm.DB
	client     llm.LLMClient
	model      string
	retriever  agent.Retriever
	actionSets map[string]types.Actions
}

func newOptions(opts ...Option) (*options, error) {
	options := &options{
		model:      "gpt-4",
		actionSets: map[string]types.Actions{},
	}
	for _, o := range opts {
		if err := o(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

func WithDB(db *gorm.DB) Option {
	return func(o *options) error {
		o.db = db
		return nil
	}
}

func WithLLMClient(client llm.LLMClient) Option {
	return func(o *options) error {
		o.client = client
		return nil
	}
}

func WithModel(model string) Option {
	return func(o *options) error {
		o.model = model
		return nil
	}
}

// WithRetriever hands the manager an optional policy retriever. A nil
// retriever means agents run without policy lookups.
func WithRetriever(r agent.Retriever) Option {
	return func(o *options) error {
		o.retriever = r
		return nil
	}
}

// WithAgentActions sets the tool set one agent type runs with. The caller
// composes the sets so this package stays free of tool construction.
func WithAgentActions(agentType string, actions ...types.Action) Option {
	return func(o *options) error {
		o.actionSets[agentType] = append(o.actionSets[agentType], actions...)
		return nil
	}
}
