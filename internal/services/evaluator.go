package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/apperrors"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/metrics"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/repositories"
)

const (
	riskAbnormallyLow    = "abnormally low bid"
	riskMissingTechnical = "missing technical documents"
	riskMissingFinancial = "missing financial documents"
)

type EvaluatorService interface {
	AnalyzeTender(ctx context.Context, tenderID uuid.UUID, actor models.Actor) (*models.EvaluationReport, error)
}

type evaluatorService struct {
	tenderRepo repositories.TenderRepository
	bidRepo    repositories.BidRepository
	summarizer Summarizer
	clock      Clock
	log        *zap.Logger
}

func NewEvaluatorService(
	tenderRepo repositories.TenderRepository,
	bidRepo repositories.BidRepository,
	summarizer Summarizer,
	clock Clock,
	log *zap.Logger,
) EvaluatorService {
	return &evaluatorService{
		tenderRepo: tenderRepo,
		bidRepo:    bidRepo,
		summarizer: summarizer,
		clock:      clock,
		log:        log,
	}
}

// AnalyzeTender produces the ranked, risk-annotated report for a tender's
// submitted bids. It reads lifecycle state but never mutates it; the report
// is cached on the tender row and overwritten on the next analysis.
func (e *evaluatorService) AnalyzeTender(ctx context.Context, tenderID uuid.UUID, actor models.Actor) (*models.EvaluationReport, error) {
	started := e.clock.Now()

	tender, err := e.tenderRepo.FindByID(tenderID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, apperrors.NotFound("tender %s not found", tenderID)
		}
		return nil, err
	}
	if !actor.Owns(tender.OwnerCompanyID) && !actor.IsAdmin() {
		return nil, apperrors.Authorization("only the tender owner may analyze its bids")
	}

	bids, err := e.bidRepo.FindByTender(tenderID)
	if err != nil {
		return nil, err
	}

	report := BuildDeterministicReport(tender, bids, e.clock.Now())

	evaluated := evaluableBids(bids)
	if len(evaluated) > 0 {
		narrative, nerr := e.summarizer.SummarizeEvaluation(ctx, tender, evaluated, report)
		if nerr != nil {
			report.FallbackReason = nerr.Error()
			metrics.NarrativeFallbacks.Inc()
			e.log.Info("narrative augmentation unavailable, serving deterministic fallback",
				zap.String("tender_id", tenderID.String()), zap.Error(nerr))
		} else {
			mergeNarrative(report, narrative)
		}
	}

	// Cache failure degrades to an uncached report, not a failed analysis.
	if err := e.tenderRepo.SaveReport(tenderID, report); err != nil {
		e.log.Warn("failed to cache evaluation report",
			zap.String("tender_id", tenderID.String()), zap.Error(err))
	}

	metrics.EvaluationDuration.Observe(time.Since(started).Seconds())
	return report, nil
}

// BuildDeterministicReport computes scores, risk flags, ranking, statistics
// and the always-available fallback narrative from the bid set alone.
func BuildDeterministicReport(tender *models.Tender, bids []models.Bid, now time.Time) *models.EvaluationReport {
	report := &models.EvaluationReport{GeneratedAt: now}

	evaluated := evaluableBids(bids)
	if len(evaluated) == 0 {
		report.Summary = "No submitted bids to evaluate."
		report.Recommendation = "Wait for bids to be submitted before evaluating this tender."
		return report
	}

	minAmount := evaluated[0].Amount
	for _, bid := range evaluated {
		if bid.Amount < minAmount {
			minAmount = bid.Amount
		}
	}

	threshold := tender.LowBidThreshold()
	scoreByBid := make(map[uuid.UUID]models.BidScore, len(evaluated))

	for _, bid := range evaluated {
		price := PriceScore(minAmount, bid.Amount)
		delivery := DeliveryScore(bid.DeliveryDays)
		docs := DocsScore(len(bid.TechnicalDocs), len(bid.FinancialDocs))

		score := models.BidScore{
			BidID:         bid.ID,
			PriceScore:    round2(price),
			DeliveryScore: round2(delivery),
			DocsScore:     round2(docs),
			WeightedScore: WeightedScore(price, delivery, docs),
		}
		scoreByBid[bid.ID] = score
		report.Scores = append(report.Scores, score)

		if pct := BelowEstimatePct(tender.EstimatedValue, bid.Amount); tender.EstimatedValue > 0 && pct >= threshold {
			report.Risks = append(report.Risks, models.RiskFlag{
				BidID:    bid.ID,
				Risk:     fmt.Sprintf("%s: %.1f%% below estimated value", riskAbnormallyLow, pct),
				Severity: models.SeverityHigh,
			})
		}
		if len(bid.TechnicalDocs) == 0 {
			report.Risks = append(report.Risks, models.RiskFlag{
				BidID:    bid.ID,
				Risk:     riskMissingTechnical,
				Severity: models.SeverityMedium,
			})
		}
		if len(bid.FinancialDocs) == 0 {
			report.Risks = append(report.Risks, models.RiskFlag{
				BidID:    bid.ID,
				Risk:     riskMissingFinancial,
				Severity: models.SeverityMedium,
			})
		}
	}

	// Stable sort keeps input order on equal scores.
	ranked := make([]models.Bid, len(evaluated))
	copy(ranked, evaluated)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scoreByBid[ranked[i].ID].WeightedScore > scoreByBid[ranked[j].ID].WeightedScore
	})

	for i, bid := range ranked {
		score := scoreByBid[bid.ID]
		report.Ranking = append(report.Ranking, models.RankingEntry{
			BidID:           bid.ID,
			BidderCompanyID: bid.BidderCompanyID,
			Position:        i + 1,
			WeightedScore:   score.WeightedScore,
			Reason: fmt.Sprintf("weighted score %.2f (price %.2f, delivery %.2f, documentation %.2f)",
				score.WeightedScore, score.PriceScore, score.DeliveryScore, score.DocsScore),
		})
	}

	amounts := make([]float64, len(evaluated))
	deliveryDays := make([]int, len(evaluated))
	for i, bid := range evaluated {
		amounts[i] = bid.Amount
		deliveryDays[i] = bid.DeliveryDays
	}
	report.Statistics = CalculateStatistics(amounts, deliveryDays, tender.EstimatedValue)

	top := report.Ranking[0]
	report.Summary = fmt.Sprintf(
		"%d bid(s) evaluated for %q. Scores range from %.2f to %.2f; %d risk flag(s) raised.",
		len(evaluated), tender.Title,
		report.Ranking[len(report.Ranking)-1].WeightedScore, top.WeightedScore,
		len(report.Risks))
	report.Recommendation = fmt.Sprintf(
		"Bid %s from company %s ranks first with weighted score %.2f. Review the risk flags before awarding.",
		top.BidID, top.BidderCompanyID, top.WeightedScore)

	return report
}

// evaluableBids filters to bids at SUBMITTED or a later pipeline stage.
// Drafts and withdrawn bids never enter an evaluation.
func evaluableBids(bids []models.Bid) []models.Bid {
	var out []models.Bid
	for _, bid := range bids {
		switch bid.Status {
		case models.BidSubmitted, models.BidUnderReview, models.BidAccepted, models.BidRejected:
			out = append(out, bid)
		}
	}
	return out
}

// mergeNarrative layers the narrative text onto the deterministic report.
// Scores, ranking order and the risk set itself stay deterministic; the
// narrative may only rephrase reasons and adjust risk severities.
func mergeNarrative(report *models.EvaluationReport, narrative *NarrativeResult) {
	report.Summary = narrative.Summary
	report.Recommendation = narrative.Recommendation

	for i := range report.Ranking {
		if reason, ok := narrative.Reasons[report.Ranking[i].BidID.String()]; ok && reason != "" {
			report.Ranking[i].Reason = reason
		}
	}

	for _, nrisk := range narrative.Risks {
		severity := models.RiskSeverity(nrisk.Severity)
		switch severity {
		case models.SeverityLow, models.SeverityMedium, models.SeverityHigh:
		default:
			continue
		}
		for i := range report.Risks {
			if report.Risks[i].BidID.String() == nrisk.BidID {
				report.Risks[i].Severity = severity
			}
		}
	}
}
