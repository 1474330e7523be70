package services

import (
	"fmt"
	"strings"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildEvaluationSummaryPrompt creates the prompt for the narrative layer
// over a deterministic evaluation report. The model is asked for strict JSON
// so the response can be merged back onto the report.
func (pb *PromptBuilder) BuildEvaluationSummaryPrompt(tender *models.Tender, bids []models.Bid, report *models.EvaluationReport) string {
	var bidLines []string
	for _, bid := range bids {
		bidLines = append(bidLines, fmt.Sprintf(
			"- Bid %s (company %s): amount %.2f, delivery %d days, %d technical docs, %d financial docs",
			bid.ID, bid.BidderCompanyID, bid.Amount, bid.DeliveryDays,
			len(bid.TechnicalDocs), len(bid.FinancialDocs)))
	}

	var rankLines []string
	for _, entry := range report.Ranking {
		rankLines = append(rankLines, fmt.Sprintf(
			"%d. Bid %s, weighted score %.2f", entry.Position, entry.BidID, entry.WeightedScore))
	}

	var riskLines []string
	for _, risk := range report.Risks {
		riskLines = append(riskLines, fmt.Sprintf("- Bid %s: %s", risk.BidID, risk.Risk))
	}
	if len(riskLines) == 0 {
		riskLines = append(riskLines, "- none")
	}

	return fmt.Sprintf(`You are a procurement evaluation expert reviewing sealed two-envelope bids for a tender.

TENDER:
Title: %s
Category: %s
Estimated value: %.2f
Abnormally-low-bid threshold: %.0f%% below estimate

SUBMITTED BIDS:
%s

DETERMINISTIC RANKING (price 50%%, delivery 20%%, documentation 30%%):
%s

RISK FLAGS:
%s

Write a concise narrative for the tender owner. Do not change the ranking or
invent facts; explain what the scores and flags mean for the award decision.

Return your response in the following JSON format:
{
  "summary": "<3-4 sentence overview of the bid field>",
  "recommendation": "<1-2 sentence award recommendation naming the top-ranked bidder>",
  "reasons": {"<bid id>": "<one sentence on why this bid ranks where it does>"},
  "risks": [{"bid_id": "<bid id>", "risk": "<risk text>", "severity": "low|medium|high"}]
}`,
		tender.Title,
		tender.Category,
		tender.EstimatedValue,
		tender.LowBidThreshold(),
		strings.Join(bidLines, "\n"),
		strings.Join(rankLines, "\n"),
		strings.Join(riskLines, "\n"))
}

// BuildIndexQuery normalizes a semantic search query for the document index.
func (pb *PromptBuilder) BuildIndexQuery(docType, query string) string {
	switch docType {
	case models.DocTypeTechnical:
		return fmt.Sprintf("Technical proposal content: %s", query)
	case models.DocTypeFinancial:
		return fmt.Sprintf("Financial proposal content: %s", query)
	default:
		return query
	}
}
