package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/apperrors"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/repositories"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/services"
)

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	indexer        services.IndexerService
	maxFileSize    int64
	log            *zap.Logger
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	indexer services.IndexerService,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
		indexer:        indexer,
		maxFileSize:    maxFileSize,
		log:            log,
	}
}

// HandleUpload handles POST /documents. Each stored file is answered with
// the {url, id, name} reference callers embed into envelope lists.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.Validation("failed to parse multipart form")
	}

	docType := c.FormValue("doc_type")
	switch docType {
	case models.DocTypeTechnical, models.DocTypeFinancial, models.DocTypeEMDReceipt:
	default:
		return apperrors.Validation("doc_type must be one of technical, financial, emd_receipt")
	}

	files := form.File["documents"]
	if len(files) == 0 {
		return apperrors.Validation("no files uploaded under 'documents'")
	}

	var responses []models.UploadResponse
	for _, file := range files {
		if file.Size > h.maxFileSize {
			return apperrors.Validation("file %s too large, max size: %d bytes", file.Filename, h.maxFileSize)
		}

		filename, filePath, url, err := h.storageService.SaveFile(file, docType)
		if err != nil {
			return apperrors.Validation("failed to save %s: %v", file.Filename, err)
		}

		doc := &models.Document{
			ID:               uuid.New(),
			Filename:         filename,
			OriginalFileName: file.Filename,
			DocType:          docType,
			FilePath:         filePath,
			URL:              url,
			UploadedByID:     actor.UserID,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}
		if err := h.docRepo.Create(doc); err != nil {
			// Roll the blob back if the record cannot be stored.
			h.storageService.DeleteFile(filename)
			return fmt.Errorf("failed to save document record: %w", err)
		}

		// Indexing is best-effort and never blocks the upload response.
		if h.indexer != nil {
			go func(d models.Document) {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()
				if err := h.indexer.IndexDocument(ctx, &d); err != nil {
					h.log.Warn("failed to index uploaded document",
						zap.String("document_id", d.ID.String()), zap.Error(err))
				}
			}(*doc)
		}

		ref := doc.Ref()
		responses = append(responses, models.UploadResponse{
			ID:   ref.ID,
			URL:  ref.URL,
			Name: ref.Name,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"documents": responses,
	})
}
