package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/apperrors"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/metrics"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/repositories"
)

// AwardCoordinator owns the one cross-entity transition in the system: a
// tender moving to AWARDED together with its bids settling into exactly one
// ACCEPTED and the rest REJECTED.
type AwardCoordinator interface {
	Award(ctx context.Context, tenderID, winningBidID uuid.UUID, actor models.Actor) (*models.Tender, error)
}

type awardCoordinator struct {
	tenderRepo repositories.TenderRepository
	bidRepo    repositories.BidRepository
	clock      Clock
	log        *zap.Logger
}

func NewAwardCoordinator(
	tenderRepo repositories.TenderRepository,
	bidRepo repositories.BidRepository,
	clock Clock,
	log *zap.Logger,
) AwardCoordinator {
	return &awardCoordinator{
		tenderRepo: tenderRepo,
		bidRepo:    bidRepo,
		clock:      clock,
		log:        log,
	}
}

// Award validates preconditions, then applies the all-or-nothing award
// write. Validation and authorization run first; the state check is the
// conditional write itself, so a concurrent caller loses with a state
// conflict rather than a silent double award.
func (c *awardCoordinator) Award(ctx context.Context, tenderID, winningBidID uuid.UUID, actor models.Actor) (*models.Tender, error) {
	tender, err := c.tenderRepo.FindByID(tenderID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, apperrors.NotFound("tender %s not found", tenderID)
		}
		return nil, err
	}
	if !actor.Owns(tender.OwnerCompanyID) && !actor.IsAdmin() {
		return nil, apperrors.Authorization("company %s does not own tender %s", actor.CompanyID, tenderID)
	}
	if tender.Status != models.TenderClosed {
		return nil, apperrors.StateConflict("tender %s is %s, only closed tenders can be awarded", tenderID, tender.Status)
	}

	bid, err := c.bidRepo.FindByID(winningBidID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, apperrors.NotFound("bid %s not found", winningBidID)
		}
		return nil, err
	}
	if bid.TenderID != tenderID {
		return nil, apperrors.Validation("bid %s does not belong to tender %s", winningBidID, tenderID)
	}
	if !bid.Pending() {
		return nil, apperrors.Validation("bid %s is %s and cannot win the award", winningBidID, bid.Status)
	}

	now := c.clock.Now()
	if err := c.tenderRepo.Award(tenderID, winningBidID, now); err != nil {
		if err == repositories.ErrStaleStatus {
			metrics.StateConflicts.WithLabelValues("award_tender").Inc()
			return nil, apperrors.StateConflict("tender %s was transitioned by a concurrent caller", tenderID)
		}
		return nil, err
	}

	tender.Status = models.TenderAwarded
	tender.UpdatedAt = now
	metrics.TenderTransitions.WithLabelValues(string(models.TenderClosed), string(models.TenderAwarded)).Inc()
	metrics.BidTransitions.WithLabelValues(string(models.BidSubmitted), string(models.BidAccepted)).Inc()
	c.log.Info("tender awarded",
		zap.String("tender_id", tenderID.String()),
		zap.String("winning_bid_id", winningBidID.String()))
	return tender, nil
}
