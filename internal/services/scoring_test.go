package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceScore(t *testing.T) {
	assert.Equal(t, 100.0, PriceScore(65000, 65000))
	assert.InDelta(t, 72.22, PriceScore(65000, 90000), 0.01)
	assert.Equal(t, 0.0, PriceScore(0, 90000))
	assert.Equal(t, 0.0, PriceScore(65000, 0))
	// A bid below the minimum never scores past 100.
	assert.Equal(t, 100.0, PriceScore(90000, 65000))
}

func TestDeliveryScore(t *testing.T) {
	assert.Equal(t, 70.0, DeliveryScore(30))
	assert.Equal(t, 90.0, DeliveryScore(10))
	assert.Equal(t, 99.0, DeliveryScore(1))
	assert.Equal(t, 0.0, DeliveryScore(100))
	assert.Equal(t, 0.0, DeliveryScore(250))
	assert.Equal(t, 0.0, DeliveryScore(0))
	assert.Equal(t, 0.0, DeliveryScore(-5))
}

func TestDocsScore(t *testing.T) {
	assert.Equal(t, 100.0, DocsScore(2, 1))
	assert.Equal(t, 40.0, DocsScore(2, 0))
	assert.Equal(t, 40.0, DocsScore(0, 1))
	assert.Equal(t, 40.0, DocsScore(0, 0))
}

func TestWeightedScore(t *testing.T) {
	// Two bids that land within a tenth of a point of each other: the
	// expensive-but-complete bid edges out the cheap one with a missing
	// envelope.
	scoreA := WeightedScore(PriceScore(65000, 90000), DeliveryScore(30), DocsScore(1, 1))
	scoreB := WeightedScore(PriceScore(65000, 65000), DeliveryScore(10), DocsScore(1, 0))

	assert.InDelta(t, 80.11, scoreA, 0.01)
	assert.InDelta(t, 80.00, scoreB, 0.01)
	assert.Greater(t, scoreA, scoreB)
}

func TestWeightedScoreRounding(t *testing.T) {
	assert.Equal(t, 33.33, WeightedScore(33.333, 33.333, 33.333))
}

func TestBelowEstimatePct(t *testing.T) {
	assert.Equal(t, 35.0, BelowEstimatePct(100000, 65000))
	assert.Equal(t, 10.0, BelowEstimatePct(100000, 90000))
	assert.Equal(t, 0.0, BelowEstimatePct(0, 65000))
	assert.Equal(t, -20.0, BelowEstimatePct(100000, 120000))
}
