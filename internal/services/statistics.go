package services

import (
	"math"
	"sort"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
)

// CalculateStatistics computes the distribution metrics over the submitted
// bid amounts and delivery promises. All outputs are rounded to two
// decimals. An empty input yields a zeroed struct, never an error.
func CalculateStatistics(amounts []float64, deliveryDays []int, estimatedValue float64) *models.BidStatistics {
	stats := &models.BidStatistics{Count: len(amounts)}
	if len(amounts) == 0 {
		return stats
	}

	min, max, sum := amounts[0], amounts[0], 0.0
	for _, a := range amounts {
		if a < min {
			min = a
		}
		if a > max {
			max = a
		}
		sum += a
	}
	average := sum / float64(len(amounts))

	var variance float64
	for _, a := range amounts {
		variance += (a - average) * (a - average)
	}
	// Population standard deviation.
	stdDev := math.Sqrt(variance / float64(len(amounts)))

	cv := 0.0
	if average != 0 {
		cv = stdDev / average * 100
	}

	avgVsEstimate := 0.0
	if estimatedValue != 0 {
		avgVsEstimate = (average - estimatedValue) / estimatedValue * 100
	}

	stats.MinAmount = round2(min)
	stats.MaxAmount = round2(max)
	stats.AverageAmount = round2(average)
	stats.MedianAmount = round2(median(amounts))
	stats.Range = round2(max - min)
	stats.StdDev = round2(stdDev)
	stats.CoefficientOfVariation = round2(cv)
	stats.AverageVsEstimatePct = round2(avgVsEstimate)

	if len(deliveryDays) > 0 {
		minD, maxD, sumD := deliveryDays[0], deliveryDays[0], 0
		for _, d := range deliveryDays {
			if d < minD {
				minD = d
			}
			if d > maxD {
				maxD = d
			}
			sumD += d
		}
		stats.MinDeliveryDays = minD
		stats.MaxDeliveryDays = maxD
		stats.AvgDeliveryDays = round2(float64(sumD) / float64(len(deliveryDays)))
	}

	return stats
}

// median averages the middle two values for even-sized inputs.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
