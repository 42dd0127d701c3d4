package rag

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"
	"gorm.io/gorm"

	models "github.com/workmate-ai/workmate/dbmodels"
	"github.com/workmate-ai/workmate/pkg/xlog"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// DocumentLoader indexes active company documents into the vector store,
// splitting long texts into overlapping chunks.
type DocumentLoader struct {
	db       *gorm.DB
	store    *ChromemDB
	splitter textsplitter.RecursiveCharacter
}

func NewDocumentLoader(db *gorm.DB, store *ChromemDB) *DocumentLoader {
	return &DocumentLoader{
		db:    db,
		store: store,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// LoadAll indexes every active document, skipping ones that fail so a single
// bad document does not block startup. Returns how many were indexed.
func (l *DocumentLoader) LoadAll(ctx context.Context) (int, error) {
	var docs []models.CompanyDocument
	if err := l.db.WithContext(ctx).Where("is_active = ?", true).Find(&docs).Error; err != nil {
		return 0, fmt.Errorf("loading documents: %w", err)
	}

	loaded := 0
	for i := range docs {
		if err := l.Load(ctx, &docs[i]); err != nil {
			xlog.Warn("Skipping document", "title", docs[i].Title, "error", err)
			continue
		}
		loaded++
	}

	xlog.Info("Indexed company documents", "count", loaded, "total", len(docs))
	return loaded, nil
}

// Load indexes one document and records its chunk id prefix on the row.
func (l *DocumentLoader) Load(ctx context.Context, doc *models.CompanyDocument) error {
	chunks := []string{doc.Content}
	if len(doc.Content) > chunkSize {
		var err error
		chunks, err = l.splitter.SplitText(doc.Content)
		if err != nil {
			return fmt.Errorf("splitting %q: %w", doc.Title, err)
		}
	}

	metadata := map[string]string{
		"title":    doc.Title,
		"type":     doc.DocumentType,
		"category": doc.Category,
	}

	embeddingID := fmt.Sprintf("doc-%d", doc.ID)
	for i, chunk := range chunks {
		id := fmt.Sprintf("%s-chunk-%d", embeddingID, i)
		if err := l.store.Store(ctx, id, chunk, metadata); err != nil {
			return fmt.Errorf("storing %q: %w", doc.Title, err)
		}
	}

	if doc.EmbeddingID != embeddingID {
		doc.EmbeddingID = embeddingID
		if err := l.db.WithContext(ctx).Model(doc).Update("embedding_id", embeddingID).Error; err != nil {
			return fmt.Errorf("recording embedding id for %q: %w", doc.Title, err)
		}
	}

	return nil
}

// Reindex drops the collection and rebuilds it from scratch, so chunks of
// deleted or deactivated documents do not linger in the store.
func (l *DocumentLoader) Reindex(ctx context.Context) (int, error) {
	if err := l.store.Reset(); err != nil {
		return 0, fmt.Errorf("resetting vector store: %w", err)
	}
	return l.LoadAll(ctx)
}
