package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/metrics"
)

// ExpirySweeper periodically forces time-based tender transitions. It is
// the only component that initiates transitions without a human actor. Runs
// never overlap: a single goroutine consumes the ticker, so a tick arriving
// mid-run is handled only after the current run finishes.
type ExpirySweeper interface {
	Start(ctx context.Context)
	Stop()
}

type expirySweeper struct {
	tenderService TenderService
	interval      time.Duration
	wg            sync.WaitGroup
	stopChan      chan struct{}
	log           *zap.Logger
}

func NewExpirySweeper(tenderService TenderService, interval time.Duration, log *zap.Logger) ExpirySweeper {
	return &expirySweeper{
		tenderService: tenderService,
		interval:      interval,
		stopChan:      make(chan struct{}),
		log:           log,
	}
}

// Start implements ExpirySweeper.
func (s *expirySweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
	s.log.Info("expiry sweeper started", zap.Duration("interval", s.interval))
}

// Stop implements ExpirySweeper.
func (s *expirySweeper) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	s.log.Info("expiry sweeper stopped")
}

func (s *expirySweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *expirySweeper) sweepOnce(ctx context.Context) {
	metrics.SweepRuns.Inc()
	expired, err := s.tenderService.ExpireDue(ctx)
	if err != nil {
		s.log.Warn("expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		metrics.SweepExpired.Add(float64(expired))
		s.log.Info("expiry sweep completed", zap.Int("tenders_expired", expired))
	}
}
