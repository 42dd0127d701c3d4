package agent

import (
	"context"

	"github.com/workmate-ai/workmate/core/types"
	"github.com/workmate-ai/workmate/pkg/llm"
	"github.com/workmate-ai/workmate/rag"
)

// Retriever is the slice of the retrieval layer an agent consumes. The
// concrete store lives in the rag package.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) (rag.Results, error)
}

type Option func(*options) error

type options struct {
	name           string
	description    string
	systemPrompt   string
	actions        types.Actions
	client         llm.LLMClient
	model          string
	memoryWindow   int
	maxIterations  int
	retriever      Retriever
	policyKeywords []string
}

func defaultOptions() *options {
	return &options{
		model:         "gpt-4",
		memoryWindow:  10,
		maxIterations: 5,
	}
}

func newOptions(opts ...Option) (*options, error) {
	options := defaultOptions()
	for _, o := range opts {
		if err := o(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

func WithName(name string) Option {
	return func(o *options) error {
		o.name = name
		return nil
	}
}

func WithDescription(description string) Option {
	return func(o *options) error {
		o.description = description
		return nil
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(o *options) error {
		o.systemPrompt = prompt
		return nil
	}
}

func WithActions(actions ...types.Action) Option {
	return func(o *options) error {
		o.actions = append(o.actions, actions...)
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

func WithMemoryWindow(exchanges int) Option {
	return func(o *options) error {
		o.memoryWindow = exchanges
		return nil
	}
}

func WithMaxIterations(iterations int) Option {
	return func(o *options) error {
		o.maxIterations = iterations
		return nil
	}
}

// WithRetriever enables policy lookups. The agent queries the retriever only
// when the input mentions one of the keywords.
func WithRetriever(r Retriever, keywords ...string) Option {
	return func(o *options) error {
		o.retriever = r
		o.policyKeywords = keywords
		return nil
	}
}
