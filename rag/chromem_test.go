package rag_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sashabaranov/go-openai"

	"github.com/workmate-ai/workmate/pkg/llm"
	"github.com/workmate-ai/workmate/rag"
)

var _ = Describe("ChromemDB", func() {
	var (
		ctx    context.Context
		client *llm.MockClient
		store  *rag.ChromemDB
	)

	BeforeEach(func() {
		ctx = context.TODO()
		client = embeddingClient()
		store = newStore(client)
	})

	storeHandbook := func() {
		Expect(store.Store(ctx, "hb-1", "Vacation requests need two weeks notice.",
			map[string]string{"title": "Vacation Policy", "category": "hr"})).To(Succeed())
		Expect(store.Store(ctx, "hb-2", "Security badges must be worn at all times.",
			map[string]string{"title": "Security Policy", "category": "it"})).To(Succeed())
		Expect(store.Store(ctx, "hb-3", "Expense reports are due by month end.",
			map[string]string{"title": "Expense Policy", "category": "finance"})).To(Succeed())
	}

	Describe("Store", func() {
		It("rejects empty content", func() {
			Expect(store.Store(ctx, "hb-1", "", nil)).To(MatchError("empty content"))
		})

		It("rejects an empty id", func() {
			Expect(store.Store(ctx, "", "Some content", nil)).To(MatchError("empty document id"))
		})

		It("counts stored documents", func() {
			storeHandbook()
			Expect(store.Count()).To(Equal(3))
		})

		It("replaces a document stored under the same id", func() {
			Expect(store.Store(ctx, "hb-1", "Vacation requests need two weeks notice.", nil)).To(Succeed())
			Expect(store.Store(ctx, "hb-1", "Vacation requests need one week notice.", nil)).To(Succeed())
			Expect(store.Count()).To(Equal(1))
		})
	})

	Describe("Search", func() {
		It("ranks the closest document first", func() {
			storeHandbook()

			results, err := store.Search(ctx, "How do I request vacation?", 2)
			Expect(err).ToNot(HaveOccurred())
			Expect(results.Unavailable).To(BeFalse())
			Expect(results.Snippets).To(HaveLen(2))
			Expect(results.Snippets[0].Content).To(ContainSubstring("Vacation requests"))
			Expect(results.Snippets[0].Metadata["title"]).To(Equal("Vacation Policy"))
			Expect(results.Snippets[0].Score).To(BeNumerically(">", results.Snippets[1].Score))
		})

		It("clamps topK to the collection size", func() {
			storeHandbook()

			results, err := store.Search(ctx, "security badges", 50)
			Expect(err).ToNot(HaveOccurred())
			Expect(results.Snippets).To(HaveLen(3))
			Expect(results.Snippets[0].Metadata["category"]).To(Equal("it"))
		})

		It("returns nothing from an empty collection", func() {
			results, err := store.Search(ctx, "anything", 5)
			Expect(err).ToNot(HaveOccurred())
			Expect(results.Unavailable).To(BeFalse())
			Expect(results.Snippets).To(BeEmpty())
		})

		It("flags the store unavailable when embedding the query fails", func() {
			storeHandbook()
			client.CreateEmbeddingsFunc = func(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
				return openai.EmbeddingResponse{}, errors.New("embedding endpoint down")
			}

			results, err := store.Search(ctx, "vacation", 2)
			Expect(err).To(HaveOccurred())
			Expect(results.Unavailable).To(BeTrue())
			Expect(results.Snippets).To(BeEmpty())
		})
	})

	Describe("Reset", func() {
		It("drops every stored document", func() {
			storeHandbook()
			Expect(store.Reset()).To(Succeed())
			Expect(store.Count()).To(BeZero())

			results, err := store.Search(ctx, "vacation", 2)
			Expect(err).ToNot(HaveOccurred())
			Expect(results.Snippets).To(BeEmpty())
		})

		It("accepts new documents afterwards", func() {
			storeHandbook()
			Expect(store.Reset()).To(Succeed())
			Expect(store.Store(ctx, "hb-9", "Expense limits were raised.", nil)).To(Succeed())
			Expect(store.Count()).To(Equal(1))
		})
	})
})
