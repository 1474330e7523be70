package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStatistics(t *testing.T) {
	stats := CalculateStatistics([]float64{65000, 90000}, []int{10, 30}, 100000)
	require.NotNil(t, stats)

	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 65000.0, stats.MinAmount)
	assert.Equal(t, 90000.0, stats.MaxAmount)
	assert.Equal(t, 77500.0, stats.AverageAmount)
	assert.Equal(t, 77500.0, stats.MedianAmount)
	assert.Equal(t, 25000.0, stats.Range)
	assert.Equal(t, 12500.0, stats.StdDev)
	assert.InDelta(t, 16.13, stats.CoefficientOfVariation, 0.01)
	assert.Equal(t, -22.5, stats.AverageVsEstimatePct)

	assert.Equal(t, 10, stats.MinDeliveryDays)
	assert.Equal(t, 30, stats.MaxDeliveryDays)
	assert.Equal(t, 20.0, stats.AvgDeliveryDays)
}

func TestCalculateStatisticsOddMedian(t *testing.T) {
	stats := CalculateStatistics([]float64{50000, 90000, 65000}, []int{5, 10, 15}, 0)

	assert.Equal(t, 65000.0, stats.MedianAmount)
	// No estimate configured: the comparison is reported as zero.
	assert.Equal(t, 0.0, stats.AverageVsEstimatePct)
}

func TestCalculateStatisticsSingleBid(t *testing.T) {
	stats := CalculateStatistics([]float64{80000}, []int{20}, 80000)

	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 80000.0, stats.MedianAmount)
	assert.Equal(t, 0.0, stats.StdDev)
	assert.Equal(t, 0.0, stats.Range)
	assert.Equal(t, 0.0, stats.AverageVsEstimatePct)
}

func TestCalculateStatisticsEmpty(t *testing.T) {
	stats := CalculateStatistics(nil, nil, 100000)
	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, 0.0, stats.AverageAmount)
}
