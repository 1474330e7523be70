package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/apperrors"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
)

type GeminiService interface {
	Summarizer
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
}

type geminiService struct {
	client        *genai.Client
	modelName     string
	embedModel    string
	promptBuilder *PromptBuilder
	maxRetries    int
	log           *zap.Logger
}

func NewGeminiService(apiKey string, maxRetries int, log *zap.Logger) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:        client,
		modelName:     "gemini-2.5-flash",
		embedModel:    "text-embedding-004",
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		log:           log,
	}, nil
}

// SummarizeEvaluation implements Summarizer. Every failure is wrapped as an
// external-service error so the evaluation engine can degrade to its
// deterministic fallback.
func (g *geminiService) SummarizeEvaluation(ctx context.Context, tender *models.Tender, bids []models.Bid, report *models.EvaluationReport) (*NarrativeResult, error) {
	prompt := g.promptBuilder.BuildEvaluationSummaryPrompt(tender, bids, report)

	response, err := g.GenerateTextWithRetry(ctx, prompt, 0.3, g.maxRetries)
	if err != nil {
		return nil, apperrors.ExternalService("gemini", err)
	}
	if response == "" {
		return nil, apperrors.ExternalService("gemini", fmt.Errorf("empty response"))
	}

	var result NarrativeResult
	if err := json.Unmarshal([]byte(extractJSON(response)), &result); err != nil {
		g.log.Warn("malformed narrative response", zap.Error(err))
		return nil, apperrors.ExternalService("gemini", fmt.Errorf("malformed response: %w", err))
	}
	if result.Summary == "" || result.Recommendation == "" {
		return nil, apperrors.ExternalService("gemini", fmt.Errorf("incomplete narrative"))
	}
	return &result, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// GenerateTextWithRetry implements GeminiService.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := g.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < maxRetries {
			g.log.Warn("generation attempt failed, retrying",
				zap.Int("attempt", attempt), zap.Error(err))
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

// extractJSON tries to extract JSON from text that might contain markdown or
// other formatting around the object.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}
	return text
}
