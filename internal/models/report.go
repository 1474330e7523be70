package models

import (
	"time"

	"github.com/google/uuid"
)

// EvaluationReport is the ranked, risk-annotated analysis of a tender's
// submitted bids. It is derived data: recomputed on each analysis request,
// cached on the tender row, and never feeds back into lifecycle state.
type EvaluationReport struct {
	Summary        string         `json:"summary"`
	Ranking        []RankingEntry `json:"ranking"`
	Risks          []RiskFlag     `json:"risks"`
	Recommendation string         `json:"recommendation"`
	Scores         []BidScore     `json:"deterministic_scores"`
	Statistics     *BidStatistics `json:"statistics,omitempty"`
	FallbackReason string         `json:"fallback_reason,omitempty"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

type RankingEntry struct {
	BidID           uuid.UUID `json:"bid_id"`
	BidderCompanyID uuid.UUID `json:"bidder_company_id"`
	Position        int       `json:"position"`
	WeightedScore   float64   `json:"weighted_score"`
	Reason          string    `json:"reason"`
}

type RiskSeverity string

const (
	SeverityLow    RiskSeverity = "low"
	SeverityMedium RiskSeverity = "medium"
	SeverityHigh   RiskSeverity = "high"
)

type RiskFlag struct {
	BidID    uuid.UUID    `json:"bid_id"`
	Risk     string       `json:"risk"`
	Severity RiskSeverity `json:"severity"`
}

// BidScore holds the deterministic sub-scores for one bid.
type BidScore struct {
	BidID         uuid.UUID `json:"bid_id"`
	PriceScore    float64   `json:"price_score"`
	DeliveryScore float64   `json:"delivery_score"`
	DocsScore     float64   `json:"docs_score"`
	WeightedScore float64   `json:"weighted_score"`
}

// BidStatistics are the distribution metrics over the submitted bid set.
// All values are rounded to two decimals.
type BidStatistics struct {
	Count                  int     `json:"count"`
	MinAmount              float64 `json:"min_amount"`
	MaxAmount              float64 `json:"max_amount"`
	AverageAmount          float64 `json:"average_amount"`
	MedianAmount           float64 `json:"median_amount"`
	Range                  float64 `json:"range"`
	StdDev                 float64 `json:"std_dev"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	AvgDeliveryDays        float64 `json:"avg_delivery_days"`
	MinDeliveryDays        int     `json:"min_delivery_days"`
	MaxDeliveryDays        int     `json:"max_delivery_days"`
	AverageVsEstimatePct   float64 `json:"average_vs_estimate_pct"`
}

// ReadinessChecklist is the pre-submit advisory report. It enumerates what
// still blocks submission without mutating the bid.
type ReadinessChecklist struct {
	BidID    uuid.UUID `json:"bid_id"`
	Ready    bool      `json:"ready"`
	Missing  []string  `json:"missing"`
	Advisory string    `json:"advisory,omitempty"`
}
