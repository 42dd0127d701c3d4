package rag_test

import (
	"context"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	models "github.com/workmate-ai/workmate/dbmodels"
	"github.com/workmate-ai/workmate/rag"
)

var _ = Describe("DocumentLoader", func() {
	var (
		ctx    context.Context
		conn   *gorm.DB
		store  *rag.ChromemDB
		loader *rag.DocumentLoader
	)

	BeforeEach(func() {
		ctx = context.TODO()
		conn = newTestDB()
		store = newStore(embeddingClient())
		loader = rag.NewDocumentLoader(conn, store)
	})

	createDoc := func(title, content, docType, category string, active bool) *models.CompanyDocument {
		doc := &models.CompanyDocument{
			Title:        title,
			Content:      content,
			DocumentType: docType,
			Category:     category,
			Version:      "1.0",
			IsActive:     active,
		}
		Expect(conn.Create(doc).Error).ToNot(HaveOccurred())
		return doc
	}

	Describe("Load", func() {
		It("indexes a short document as a single chunk", func() {
			doc := createDoc("Vacation Policy", "Vacation requests need two weeks notice.",
				models.DocumentTypePolicy, "hr", true)

			Expect(loader.Load(ctx, doc)).To(Succeed())
			Expect(store.Count()).To(Equal(1))

			results, err := store.Search(ctx, "vacation", 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(results.Snippets).To(HaveLen(1))
			Expect(results.Snippets[0].Metadata).To(Equal(map[string]string{
				"title":    "Vacation Policy",
				"type":     models.DocumentTypePolicy,
				"category": "hr",
			}))
		})

		It("records the embedding id on the document row", func() {
			doc := createDoc("Vacation Policy", "Vacation requests need two weeks notice.",
				models.DocumentTypePolicy, "hr", true)

			Expect(loader.Load(ctx, doc)).To(Succeed())
			Expect(doc.EmbeddingID).To(Equal(fmt.Sprintf("doc-%d", doc.ID)))

			var stored models.CompanyDocument
			Expect(conn.First(&stored, doc.ID).Error).ToNot(HaveOccurred())
			Expect(stored.EmbeddingID).To(Equal(doc.EmbeddingID))
		})

		It("splits a long document into overlapping chunks", func() {
			long := strings.Repeat("Security badges must be worn at all times while on the premises. ", 40)
			doc := createDoc("Security Policy", long, models.DocumentTypePolicy, "it", true)

			Expect(loader.Load(ctx, doc)).To(Succeed())
			Expect(store.Count()).To(BeNumerically(">", 1))
		})

		It("keeps chunk ids stable across reloads", func() {
			doc := createDoc("Vacation Policy", "Vacation requests need two weeks notice.",
				models.DocumentTypePolicy, "hr", true)

			Expect(loader.Load(ctx, doc)).To(Succeed())
			Expect(loader.Load(ctx, doc)).To(Succeed())
			Expect(store.Count()).To(Equal(1))
		})
	})

	Describe("LoadAll", func() {
		It("indexes only active documents", func() {
			createDoc("Vacation Policy", "Vacation requests need two weeks notice.",
				models.DocumentTypePolicy, "hr", true)
			createDoc("Expense Policy", "Expense reports are due by month end.",
				models.DocumentTypeProcedure, "finance", true)
			createDoc("Old Security Policy", "Security badges are optional.",
				models.DocumentTypePolicy, "it", false)

			loaded, err := loader.LoadAll(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(loaded).To(Equal(2))
			Expect(store.Count()).To(Equal(2))

			results, err := store.Search(ctx, "security badges", 2)
			Expect(err).ToNot(HaveOccurred())
			for _, snippet := range results.Snippets {
				Expect(snippet.Metadata["title"]).ToNot(Equal("Old Security Policy"))
			}
		})

		It("skips documents that fail to index", func() {
			createDoc("Vacation Policy", "Vacation requests need two weeks notice.",
				models.DocumentTypePolicy, "hr", true)
			createDoc("Broken Policy", "", models.DocumentTypePolicy, "hr", true)

			loaded, err := loader.LoadAll(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(loaded).To(Equal(1))
			Expect(store.Count()).To(Equal(1))
		})
	})

	Describe("Reindex", func() {
		It("drops chunks of documents deactivated since the last index", func() {
			stale := createDoc("Old Expense Policy", "Expense limits are 50 dollars.",
				models.DocumentTypePolicy, "finance", true)
			_, err := loader.LoadAll(ctx)
			Expect(err).ToNot(HaveOccurred())

			Expect(conn.Model(stale).Update("is_active", false).Error).ToNot(HaveOccurred())
			createDoc("Expense Policy", "Expense limits are 200 dollars.",
				models.DocumentTypePolicy, "finance", true)

			loaded, err := loader.Reindex(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(loaded).To(Equal(1))
			Expect(store.Count()).To(Equal(1))

			results, err := store.Search(ctx, "expense limits", 5)
			Expect(err).ToNot(HaveOccurred())
			Expect(results.Snippets).To(HaveLen(1))
			Expect(results.Snippets[0].Content).To(ContainSubstring("200 dollars"))
		})
	})
})
