package rag

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/sashabaranov/go-openai"

	"github.com/workmate-ai/workmate/pkg/llm"
)

// Snippet is a single retrieval hit.
type Snippet struct {
	Content  string
	Metadata map[string]string
	Score    float32
}

// Results is the outcome of a retrieval query. Unavailable means no store was
// reachable for the query, which is not the same as a query that matched
// nothing: callers that fall back to answering without policy context should
// only do so on Unavailable.
type Results struct {
	Unavailable bool
	Snippets    []Snippet
}

// ChromemDB is an in-memory vector store over chromem-go, embedding documents
// through the configured LLM endpoint.
type ChromemDB struct {
	collectionName  string
	collection      *chromem.Collection
	client          llm.LLMClient
	db              *chromem.DB
	embeddingsModel string
}

func NewChromemDB(collection string, client llm.LLMClient, embeddingsModel string) (*ChromemDB, error) {
	db := chromem.NewDB()

	c := &ChromemDB{
		collectionName:  collection,
		db:              db,
		client:          client,
		embeddingsModel: embeddingsModel,
	}

	col, err := db.GetOrCreateCollection(collection, nil, c.embedding())
	if err != nil {
		return nil, err
	}
	c.collection = col

	return c, nil
}

// Reset drops and recreates the collection. Used when documents are re-indexed
// from scratch.
func (c *ChromemDB) Reset() error {
	if err := c.db.DeleteCollection(c.collectionName); err != nil {
		return err
	}
	collection, err := c.db.GetOrCreateCollection(c.collectionName, nil, c.embedding())
	if err != nil {
		return err
	}
	c.collection = collection

	return nil
}

func (c *ChromemDB) Count() int {
	return c.collection.Count()
}

func (c *ChromemDB) embedding() chromem.EmbeddingFunc {
	return chromem.EmbeddingFunc(
		func(ctx context.Context, text string) ([]float32, error) {
			resp, err := c.client.CreateEmbeddings(ctx,
				openai.EmbeddingRequestStrings{
					Input: []string{text},
					Model: openai.EmbeddingModel(c.embeddingsModel),
				},
			)
			if err != nil {
				return []float32{}, fmt.Errorf("error getting embeddings: %v", err)
			}

			if len(resp.Data) == 0 {
				return []float32{}, fmt.Errorf("no response from embeddings API")
			}

			return resp.Data[0].Embedding, nil
		},
	)
}

func (c *ChromemDB) Store(ctx context.Context, id, content string, metadata map[string]string) error {
	if content == "" {
		return fmt.Errorf("empty content")
	}
	if id == "" {
		return fmt.Errorf("empty document id")
	}
	return c.collection.AddDocuments(ctx, []chromem.Document{
		{
			ID:       id,
			Content:  content,
			Metadata: metadata,
		},
	}, runtime.NumCPU())
}

func (c *ChromemDB) Search(ctx context.Context, query string, topK int) (Results, error) {
	// chromem rejects queries asking for more results than the collection
	// holds, so clamp first.
	n := topK
	if count := c.collection.Count(); count < n {
		n = count
	}
	if n <= 0 {
		return Results{}, nil
	}

	res, err := c.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		// Query failures (embedding endpoint down, usually) mean the store
		// was unreachable, not that nothing matched.
		return Results{Unavailable: true}, err
	}

	results := Results{}
	for _, r := range res {
		results.Snippets = append(results.Snippets, Snippet{
			Content:  r.Content,
			Metadata: r.Metadata,
			Score:    r.Similarity,
		})
	}

	return results, nil
}
