package api

import (
	"errors"
	"strings"

	fiber "github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	models "github.com/workmate-ai/workmate/dbmodels"
	"github.com/workmate-ai/workmate/pkg/xlog"
)

type documentCreateRequest struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	DocumentType string `json:"document_type"`
	Category     string `json:"category"`
	Version      string `json:"version"`
}

type documentUpdateRequest struct {
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	DocumentType *string `json:"document_type"`
	Category     *string `json:"category"`
	Version      *string `json:"version"`
	IsActive     *bool   `json:"is_active"`
}

func validDocumentType(documentType string) bool {
	switch documentType {
	case models.DocumentTypePolicy, models.DocumentTypeProcedure, models.DocumentTypeGuideline:
		return true
	}
	return false
}

func (a *App) ListDocuments() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		query := a.config.DB.Model(&models.CompanyDocument{})
		if c.QueryBool("active_only", true) {
			query = query.Where("is_active = ?", true)
		}
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}

		var documents []models.CompanyDocument
		if err := query.Order("created_at DESC").Find(&documents).Error; err != nil {
			return errorJSONMessage(c, "Could not load documents")
		}

		// Content is omitted from the listing; fetch a single document to read it.
		rows := make([]fiber.Map, 0, len(documents))
		for _, doc := range documents {
			rows = append(rows, fiber.Map{
				"id":            doc.ID,
				"title":         doc.Title,
				"document_type": doc.DocumentType,
				"category":      doc.Category,
				"version":       doc.Version,
				"is_active":     doc.IsActive,
				"embedding_id":  nullableString(doc.EmbeddingID),
				"created_at":    doc.CreatedAt,
				"updated_at":    doc.UpdatedAt,
			})
		}
		return c.JSON(rows)
	}
}

func (a *App) GetDocument() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		documentID, err := c.ParamsInt("id")
		if err != nil || documentID < 1 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Document not found"})
		}

		var doc models.CompanyDocument
		if err := a.config.DB.First(&doc, documentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Document not found"})
			}
			return errorJSONMessage(c, "Could not load document")
		}
		return c.JSON(doc)
	}
}

func (a *App) CreateDocument() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		payload := documentCreateRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		payload.Title = strings.TrimSpace(payload.Title)
		if payload.Title == "" || strings.TrimSpace(payload.Content) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and content are required"})
		}
		if payload.DocumentType == "" {
			payload.DocumentType = models.DocumentTypePolicy
		}
		if !validDocumentType(payload.DocumentType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid document type"})
		}
		if payload.Version == "" {
			payload.Version = "1.0"
		}

		doc := models.CompanyDocument{
			Title:        payload.Title,
			Content:      payload.Content,
			DocumentType: payload.DocumentType,
			Category:     payload.Category,
			Version:      payload.Version,
			IsActive:     true,
		}
		if err := a.config.DB.Create(&doc).Error; err != nil {
			return errorJSONMessage(c, "Could not create document")
		}

		a.indexDocument(c, &doc)
		return c.JSON(fiber.Map{"message": "Document created successfully", "document_id": doc.ID})
	}
}

func (a *App) UpdateDocument() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		documentID, err := c.ParamsInt("id")
		if err != nil || documentID < 1 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Document not found"})
		}

		payload := documentUpdateRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		var doc models.CompanyDocument
		if err := a.config.DB.First(&doc, documentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Document not found"})
			}
			return errorJSONMessage(c, "Could not load document")
		}

		updates := map[string]interface{}{}
		if payload.Title != nil {
			updates["title"] = *payload.Title
		}
		if payload.Content != nil {
			updates["content"] = *payload.Content
		}
		if payload.DocumentType != nil {
			if !validDocumentType(*payload.DocumentType) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid document type"})
			}
			updates["document_type"] = *payload.DocumentType
		}
		if payload.Category != nil {
			updates["category"] = *payload.Category
		}
		if payload.Version != nil {
			updates["version"] = *payload.Version
		}
		if payload.IsActive != nil {
			updates["is_active"] = *payload.IsActive
		}

		if len(updates) > 0 {
			if err := a.config.DB.Model(&doc).Updates(updates).Error; err != nil {
				return errorJSONMessage(c, "Could not update document")
			}
			if err := a.config.DB.First(&doc, doc.ID).Error; err != nil {
				return errorJSONMessage(c, "Could not load document")
			}
		}

		if doc.IsActive {
			a.indexDocument(c, &doc)
		}
		return c.JSON(fiber.Map{"message": "Document updated successfully", "document_id": doc.ID})
	}
}

func (a *App) ReindexDocuments() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		if a.config.Loader == nil {
			return errorJSONMessage(c, "Retrieval is not configured")
		}

		count, err := a.config.Loader.Reindex(c.Context())
		if err != nil {
			xlog.Error("Reindexing documents failed", "error", err)
			return errorJSONMessage(c, "Could not reindex documents")
		}
		return c.JSON(fiber.Map{"message": "Documents reindexed successfully", "documents_indexed": count})
	}
}

// indexDocument refreshes the vector store entry for one document. Indexing
// failures are logged, not surfaced: the row is already persisted and the
// next reindex will pick it up.
func (a *App) indexDocument(c *fiber.Ctx, doc *models.CompanyDocument) {
	if a.config.Loader == nil {
		return
	}
	if err := a.config.Loader.Load(c.Context(), doc); err != nil {
		xlog.Warn("Indexing document failed", "title", doc.Title, "error", err)
	}
}
