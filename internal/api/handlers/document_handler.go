package handlers

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	rediscache "github.com/askmyrace/backend/internal/cache/redis"
	"github.com/askmyrace/backend/internal/docstore"
	"github.com/askmyrace/backend/internal/ingestion"
	"github.com/askmyrace/backend/pkg/logger"
)

type DocumentHandler struct {
	processor  *ingestion.Processor
	store      *docstore.Store
	cache      *rediscache.Client // nil when caching is disabled
	maxPDFSize int64
}

func NewDocumentHandler(processor *ingestion.Processor, store *docstore.Store, cache *rediscache.Client, maxPDFSize int64) *DocumentHandler {
	return &DocumentHandler{
		processor:  processor,
		store:      store,
		cache:      cache,
		maxPDFSize: maxPDFSize,
	}
}

type uploadResponse struct {
	DocumentID string                 `json:"document_id"`
	Filename   string                 `json:"filename"`
	PageCount  int                    `json:"page_count"`
	UploadedAt time.Time              `json:"uploaded_at"`
	Schedule   []docstore.ScheduleDay `json:"schedule"`
}

// HandleUpload accepts a multipart PDF upload and runs the ingestion
// pipeline. Validation failures map to 400 so athletes get actionable
// messages.
func (h *DocumentHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A PDF file is required",
		})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "application/pdf" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only PDF uploads are supported.",
		})
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Filename must end with .pdf",
		})
	}

	if fileHeader.Size > h.maxPDFSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "PDF exceeds the upload size limit.",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read upload",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxPDFSize+1))
	if err != nil {
		logger.Error("Failed to read upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read upload",
		})
	}
	if int64(len(data)) > h.maxPDFSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "PDF exceeds the upload size limit.",
		})
	}

	entry, err := h.processor.IngestPDF(c.Context(), fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, ingestion.ErrNoText) || errors.Is(err, ingestion.ErrNotRaceGuide) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		logger.Error("Failed to ingest guide", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process the PDF",
		})
	}

	if h.cache != nil {
		if err := h.cache.InvalidateAnswers(c.Context()); err != nil {
			logger.Warn("Failed to invalidate answer cache", zap.Error(err))
		}
	}

	return c.JSON(uploadResponse{
		DocumentID: entry.ID,
		Filename:   entry.Filename,
		PageCount:  entry.PageCount,
		UploadedAt: entry.UploadedAt,
		Schedule:   entry.Schedule,
	})
}

// HandleGetSchedule returns the schedule extracted at ingest time.
func (h *DocumentHandler) HandleGetSchedule(c *fiber.Ctx) error {
	documentID := c.Params("id")

	entry, err := h.store.Require(documentID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Document not found. Upload an athlete guide first.",
			})
		}
		logger.Error("Failed to load document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load document",
		})
	}

	return c.JSON(fiber.Map{
		"document_id": entry.ID,
		"filename":    entry.Filename,
		"schedule":    entry.Schedule,
	})
}

// HandleListDocuments summarizes the registered guides.
func (h *DocumentHandler) HandleListDocuments(c *fiber.Ctx) error {
	entries := h.store.List()

	documents := make([]fiber.Map, 0, len(entries))
	for _, entry := range entries {
		documents = append(documents, fiber.Map{
			"document_id": entry.ID,
			"filename":    entry.Filename,
			"page_count":  entry.PageCount,
			"uploaded_at": entry.UploadedAt,
			"chunks":      len(entry.Chunks),
		})
	}

	return c.JSON(fiber.Map{
		"documents": documents,
	})
}
