package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/apperrors"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/config"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/handlers"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/logger"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/metrics"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/repositories"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/services"
)

const narrativeMaxRetries = 3

func main() {
	cfg := config.Load()

	zlog, err := logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	metrics.Register()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}

	tenderRepo := repositories.NewTenderRepository(db)
	bidRepo := repositories.NewBidRepository(db)
	docRepo := repositories.NewDocumentRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.PublicPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		zlog.Fatal("failed to create upload directory", zap.Error(err))
	}

	clock := services.NewSystemClock()

	// The narrative layer and the document index both ride on Gemini. When
	// no key is configured the service runs fully deterministic.
	var summarizer services.Summarizer = services.NewNoopSummarizer()
	var indexer services.IndexerService
	if cfg.Gemini.APIKey != "" {
		geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, narrativeMaxRetries, zlog)
		if err != nil {
			zlog.Warn("gemini unavailable, narrative augmentation disabled", zap.Error(err))
		} else {
			summarizer = geminiService

			qdrantService, err := services.NewQdrantService(
				cfg.Qdrant.URL,
				cfg.Qdrant.APIKey,
				cfg.Qdrant.Collection,
			)
			if err != nil {
				zlog.Warn("qdrant unavailable, document search disabled", zap.Error(err))
			} else if err := qdrantService.InitCollection(); err != nil {
				zlog.Warn("qdrant collection init failed, document search disabled", zap.Error(err))
			} else {
				indexer = services.NewIndexerService(
					geminiService,
					qdrantService,
					services.NewPDFParserService(),
					services.NewTextChunker(),
					zlog,
				)
			}
		}
	}

	tenderService := services.NewTenderService(tenderRepo, clock, zlog)
	bidService := services.NewBidService(bidRepo, tenderRepo, clock, zlog)
	awardCoordinator := services.NewAwardCoordinator(tenderRepo, bidRepo, clock, zlog)
	evaluatorService := services.NewEvaluatorService(tenderRepo, bidRepo, summarizer, clock, zlog)

	sweeper := services.NewExpirySweeper(tenderService, cfg.Sweep.Interval, zlog)
	sweeper.Start(context.Background())

	tenderHandler := handlers.NewTenderHandler(tenderService, awardCoordinator)
	bidHandler := handlers.NewBidHandler(bidService)
	analysisHandler := handlers.NewAnalysisHandler(evaluatorService, indexer)
	uploadHandler := handlers.NewUploadHandler(docRepo, storageService, indexer, cfg.Storage.MaxFileSize, zlog)

	app := fiber.New(fiber.Config{
		AppName:      "TenderFlow API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID, X-Company-ID, X-Role",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Static(cfg.Storage.PublicPath, cfg.Storage.UploadPath)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/tenders", tenderHandler.HandleCreate)
	api.Get("/tenders", tenderHandler.HandleList)
	api.Get("/tenders/:id", tenderHandler.HandleGet)
	api.Patch("/tenders/:id", tenderHandler.HandleUpdate)
	api.Post("/tenders/:id/publish", tenderHandler.HandlePublish)
	api.Post("/tenders/:id/close", tenderHandler.HandleClose)
	api.Post("/tenders/:id/award", tenderHandler.HandleAward)
	api.Post("/tenders/:id/analyze", analysisHandler.HandleAnalyzeBids)

	api.Post("/tenders/:id/bids", bidHandler.HandleCreateDraft)
	api.Get("/bids/:id", bidHandler.HandleGet)
	api.Patch("/bids/:id", bidHandler.HandleUpdateDraft)
	api.Get("/bids/:id/readiness", bidHandler.HandlePreSubmitReview)
	api.Post("/bids/:id/submit", bidHandler.HandleSubmit)
	api.Post("/bids/:id/withdraw", bidHandler.HandleWithdraw)
	api.Delete("/bids/:id", bidHandler.HandleDelete)
	api.Post("/bids/:id/hold", bidHandler.HandleHold)
	api.Post("/bids/:id/accept", bidHandler.HandleAccept)
	api.Post("/bids/:id/reject", bidHandler.HandleReject)

	api.Post("/documents", uploadHandler.HandleUpload)
	api.Get("/documents/search", analysisHandler.HandleSearchDocuments)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		sweeper.Stop()
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

// errorHandler maps the domain error taxonomy onto HTTP status codes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var (
		validationErr  *apperrors.ValidationError
		authzErr       *apperrors.AuthorizationError
		conflictErr    *apperrors.StateConflictError
		eligibilityErr *apperrors.EligibilityError
		notFoundErr    *apperrors.NotFoundError
		externalErr    *apperrors.ExternalServiceError
		fiberErr       *fiber.Error
	)

	switch {
	case errors.As(err, &validationErr):
		code = fiber.StatusBadRequest
	case errors.As(err, &authzErr):
		code = fiber.StatusForbidden
	case errors.As(err, &eligibilityErr):
		code = fiber.StatusForbidden
	case errors.As(err, &conflictErr):
		code = fiber.StatusConflict
	case errors.As(err, &notFoundErr):
		code = fiber.StatusNotFound
	case errors.As(err, &externalErr):
		code = fiber.StatusBadGateway
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
