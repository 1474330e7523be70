package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
)

func TestExpirySweeperExpiresOverdueTenders(t *testing.T) {
	tenderRepo, bidRepo := newMemRepos()
	clock := newFakeClock(testTime)
	service := NewTenderService(tenderRepo, clock, zap.NewNop())
	actor := models.Actor{UserID: uuid.New(), CompanyID: uuid.New(), Role: models.RoleMember}

	tender, err := service.Create(context.Background(), createTenderRequest(), actor)
	require.NoError(t, err)
	_, err = service.Publish(context.Background(), tender.ID, actor)
	require.NoError(t, err)

	bid := makeBid(tender.ID, uuid.New(), 90000, 30, 1, 1, models.BidSubmitted, testTime)
	require.NoError(t, bidRepo.Create(&bid))

	clock.Advance(8 * 24 * time.Hour)

	sweeper := NewExpirySweeper(service, 10*time.Millisecond, zap.NewNop())
	sweeper.Start(context.Background())

	require.Eventually(t, func() bool {
		stored, err := tenderRepo.FindByID(tender.ID)
		return err == nil && stored.Status == models.TenderExpired
	}, time.Second, 10*time.Millisecond)

	sweeper.Stop()

	storedBid, err := bidRepo.FindByID(bid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BidRejected, storedBid.Status)
}

func TestExpirySweeperStopTerminatesRun(t *testing.T) {
	tenderRepo, _ := newMemRepos()
	service := NewTenderService(tenderRepo, newFakeClock(testTime), zap.NewNop())

	sweeper := NewExpirySweeper(service, 5*time.Millisecond, zap.NewNop())
	sweeper.Start(context.Background())
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
