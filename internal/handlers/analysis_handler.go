package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/apperrors"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/services"
)

type AnalysisHandler struct {
	evaluator services.EvaluatorService
	indexer   services.IndexerService
}

func NewAnalysisHandler(
	evaluator services.EvaluatorService,
	indexer services.IndexerService,
) *AnalysisHandler {
	return &AnalysisHandler{
		evaluator: evaluator,
		indexer:   indexer,
	}
}

// HandleAnalyzeBids handles POST /tenders/:id/analyze
func (h *AnalysisHandler) HandleAnalyzeBids(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}
	tenderID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	report, err := h.evaluator.AnalyzeTender(c.Context(), tenderID, actor)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// HandleSearchDocuments handles GET /documents/search
func (h *AnalysisHandler) HandleSearchDocuments(c *fiber.Ctx) error {
	if _, err := actorFromCtx(c); err != nil {
		return err
	}
	if h.indexer == nil {
		return apperrors.Validation("document search is not enabled")
	}

	query := c.Query("q")
	if query == "" {
		return apperrors.Validation("query parameter q is required")
	}
	docType := c.Query("doc_type")
	limit := c.QueryInt("limit", 5)

	results, err := h.indexer.Search(c.Context(), query, docType, limit)
	if err != nil {
		return apperrors.ExternalService("document index", err)
	}
	return c.JSON(fiber.Map{"results": results})
}
