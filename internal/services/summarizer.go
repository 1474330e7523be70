package services

import (
	"context"
	"errors"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
)

// ErrSummarizerUnavailable is returned by summarizer implementations that
// have no provider to call. The evaluation engine treats it like any other
// summarizer failure and serves the deterministic fallback.
var ErrSummarizerUnavailable = errors.New("narrative summarizer unavailable")

// NarrativeResult is the natural-language layer placed over a deterministic
// evaluation report.
type NarrativeResult struct {
	Summary        string            `json:"summary"`
	Recommendation string            `json:"recommendation"`
	Reasons        map[string]string `json:"reasons"`
	Risks          []NarrativeRisk   `json:"risks"`
}

type NarrativeRisk struct {
	BidID    string `json:"bid_id"`
	Risk     string `json:"risk"`
	Severity string `json:"severity"`
}

// Summarizer is the capability boundary for narrative augmentation. A
// failing or absent implementation must never block or corrupt the
// deterministic report.
type Summarizer interface {
	SummarizeEvaluation(ctx context.Context, tender *models.Tender, bids []models.Bid, report *models.EvaluationReport) (*NarrativeResult, error)
}

// NoopSummarizer is wired in when no generative provider is configured,
// keeping the analysis path fully usable offline.
type NoopSummarizer struct{}

func NewNoopSummarizer() Summarizer {
	return NoopSummarizer{}
}

func (NoopSummarizer) SummarizeEvaluation(ctx context.Context, tender *models.Tender, bids []models.Bid, report *models.EvaluationReport) (*NarrativeResult, error) {
	return nil, ErrSummarizerUnavailable
}
