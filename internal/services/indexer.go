package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
)

// IndexerService is the semantic-search pipeline over uploaded tender and
// bid documents: extract text, chunk, embed, upsert. Indexing is strictly
// best-effort; it shares fate with nothing in the lifecycle core.
type IndexerService interface {
	IndexDocument(ctx context.Context, doc *models.Document) error
	Search(ctx context.Context, query, docType string, limit int) ([]SearchResult, error)
}

type indexerService struct {
	gemini        GeminiService
	qdrantService QdrantService
	pdfParser     PDFParserService
	chunker       TextChunker
	promptBuilder *PromptBuilder
	log           *zap.Logger
}

func NewIndexerService(
	gemini GeminiService,
	qdrantService QdrantService,
	pdfParser PDFParserService,
	chunker TextChunker,
	log *zap.Logger,
) IndexerService {
	return &indexerService{
		gemini:        gemini,
		qdrantService: qdrantService,
		pdfParser:     pdfParser,
		chunker:       chunker,
		promptBuilder: NewPromptBuilder(),
		log:           log,
	}
}

// IndexDocument implements IndexerService.
func (s *indexerService) IndexDocument(ctx context.Context, doc *models.Document) error {
	text, err := s.pdfParser.ExtractText(doc.FilePath)
	if err != nil {
		return fmt.Errorf("failed to extract text from %s: %w", doc.Filename, err)
	}

	chunks := s.chunker.ChunkText(text, 1000, 100)
	for i, chunk := range chunks {
		embedding, err := s.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d of %s: %w", i, doc.Filename, err)
		}
		if err := s.qdrantService.UpsertChunk(ctx, doc.ID.String(), doc.DocType, chunk, embedding); err != nil {
			return fmt.Errorf("failed to index chunk %d of %s: %w", i, doc.Filename, err)
		}
	}

	s.log.Info("document indexed",
		zap.String("document_id", doc.ID.String()),
		zap.String("doc_type", doc.DocType),
		zap.Int("chunks", len(chunks)))
	return nil
}

// Search implements IndexerService.
func (s *indexerService) Search(ctx context.Context, query, docType string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	embedding, err := s.gemini.GenerateEmbedding(ctx, s.promptBuilder.BuildIndexQuery(docType, query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return s.qdrantService.SearchSimilar(ctx, embedding, docType, limit)
}
