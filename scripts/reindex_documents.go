package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/config"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/repositories"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/services"
)

// Rebuilds the vector index from every document already stored on disk.
// Run after a collection wipe or an embedding model change.
func main() {
	log.Println("🚀 Starting document reindex...")

	cfg := config.Load()

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, 3, zlog)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	indexer := services.NewIndexerService(
		geminiService,
		qdrantService,
		services.NewPDFParserService(),
		services.NewTextChunker(),
		zlog,
	)

	docRepo := repositories.NewDocumentRepository(db)
	documents, err := docRepo.FindAll()
	if err != nil {
		log.Fatalf("❌ Failed to load documents: %v", err)
	}

	ctx := context.Background()
	indexed := 0
	for i := range documents {
		doc := documents[i]
		log.Printf("📄 Indexing %s (%s)...", doc.Filename, doc.DocType)
		if err := indexer.IndexDocument(ctx, &doc); err != nil {
			log.Printf("⚠️  Skipping %s: %v", doc.Filename, err)
			continue
		}
		indexed++
	}

	log.Printf("✅ Reindex complete: %d/%d documents indexed", indexed, len(documents))
}
