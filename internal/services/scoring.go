package services

import "math"

// Weighted composite weights: price dominates, documentation completeness
// outweighs delivery speed.
const (
	priceWeight    = 0.5
	deliveryWeight = 0.2
	docsWeight     = 0.3
)

// PriceScore scores a bid amount against the cheapest submitted amount.
// The cheapest bid scores 100; everything else scales down proportionally.
func PriceScore(minAmount, amount float64) float64 {
	if minAmount <= 0 || amount <= 0 {
		return 0
	}
	return math.Min(minAmount/amount*100, 100)
}

// DeliveryScore rewards shorter delivery promises. Anything at or beyond
// 100 days scores zero.
func DeliveryScore(deliveryDays int) float64 {
	if deliveryDays <= 0 {
		return 0
	}
	return math.Max(100-math.Min(float64(deliveryDays), 100), 0)
}

// DocsScore is binary-ish: complete two-envelope documentation scores 100,
// anything less scores 40.
func DocsScore(technicalCount, financialCount int) float64 {
	if technicalCount > 0 && financialCount > 0 {
		return 100
	}
	return 40
}

// WeightedScore combines the three sub-scores into the composite used for
// ranking, rounded to two decimals.
func WeightedScore(priceScore, deliveryScore, docsScore float64) float64 {
	return round2(priceScore*priceWeight + deliveryScore*deliveryWeight + docsScore*docsWeight)
}

// BelowEstimatePct returns how far below the tender's estimated value a bid
// sits, as a percentage. Zero when no estimate is set.
func BelowEstimatePct(estimatedValue, amount float64) float64 {
	if estimatedValue <= 0 {
		return 0
	}
	return (estimatedValue - amount) / estimatedValue * 100
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
