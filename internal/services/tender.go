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

type TenderService interface {
	Create(ctx context.Context, req models.CreateTenderRequest, actor models.Actor) (*models.Tender, error)
	Update(ctx context.Context, tenderID uuid.UUID, patch models.TenderPatch, actor models.Actor) (*models.Tender, error)
	Publish(ctx context.Context, tenderID uuid.UUID, actor models.Actor) (*models.Tender, error)
	Close(ctx context.Context, tenderID uuid.UUID, actor models.Actor) (*models.Tender, error)
	Get(ctx context.Context, tenderID uuid.UUID) (*models.Tender, error)
	ListOpen(ctx context.Context) ([]models.Tender, error)
	ExpireDue(ctx context.Context) (int, error)
}

type tenderService struct {
	tenderRepo repositories.TenderRepository
	clock      Clock
	log        *zap.Logger
}

func NewTenderService(
	tenderRepo repositories.TenderRepository,
	clock Clock,
	log *zap.Logger,
) TenderService {
	return &tenderService{
		tenderRepo: tenderRepo,
		clock:      clock,
		log:        log,
	}
}

// Create persists a new DRAFT tender. Financial fields are optional at this
// stage; only title, description and category are required.
func (s *tenderService) Create(ctx context.Context, req models.CreateTenderRequest, actor models.Actor) (*models.Tender, error) {
	if req.Title == "" {
		return nil, apperrors.Validation("title is required")
	}
	if req.Description == "" {
		return nil, apperrors.Validation("description is required")
	}
	if req.Category == "" {
		return nil, apperrors.Validation("category is required")
	}

	threshold := req.AbnormallyLowBidThreshold
	if threshold <= 0 {
		threshold = models.DefaultAbnormallyLowBidThreshold
	}

	now := s.clock.Now()
	tender := &models.Tender{
		ID:                        uuid.New(),
		Title:                     req.Title,
		Description:               req.Description,
		Category:                  req.Category,
		OwnerCompanyID:            actor.CompanyID,
		CreatedByID:               actor.UserID,
		Status:                    models.TenderDraft,
		EstimatedValue:            req.EstimatedValue,
		EMDAmount:                 req.EMDAmount,
		AbnormallyLowBidThreshold: threshold,
		StartDate:                 req.StartDate,
		EndDate:                   req.EndDate,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	if err := s.tenderRepo.Create(tender); err != nil {
		return nil, err
	}

	metrics.TenderTransitions.WithLabelValues("", string(models.TenderDraft)).Inc()
	s.log.Info("tender created",
		zap.String("tender_id", tender.ID.String()),
		zap.String("owner_company_id", actor.CompanyID.String()))
	return tender, nil
}

// Update applies the whitelisted patch to a DRAFT tender. Published tenders
// are immutable apart from lifecycle transitions.
func (s *tenderService) Update(ctx context.Context, tenderID uuid.UUID, patch models.TenderPatch, actor models.Actor) (*models.Tender, error) {
	tender, err := s.findOwned(tenderID, actor)
	if err != nil {
		return nil, err
	}
	if tender.Status != models.TenderDraft {
		return nil, apperrors.StateConflict("tender %s is %s, only drafts can be edited", tenderID, tender.Status)
	}

	now := s.clock.Now()
	updates := map[string]interface{}{"updated_at": now}
	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, apperrors.Validation("title must not be empty")
		}
		tender.Title = *patch.Title
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		tender.Description = *patch.Description
		updates["description"] = *patch.Description
	}
	if patch.Category != nil {
		tender.Category = *patch.Category
		updates["category"] = *patch.Category
	}
	if patch.EstimatedValue != nil {
		tender.EstimatedValue = *patch.EstimatedValue
		updates["estimated_value"] = *patch.EstimatedValue
	}
	if patch.EMDAmount != nil {
		tender.EMDAmount = *patch.EMDAmount
		updates["emd_amount"] = *patch.EMDAmount
	}
	if patch.AbnormallyLowBidThreshold != nil {
		tender.AbnormallyLowBidThreshold = *patch.AbnormallyLowBidThreshold
		updates["abnormally_low_bid_threshold"] = *patch.AbnormallyLowBidThreshold
	}
	if patch.StartDate != nil {
		tender.StartDate = patch.StartDate
		updates["start_date"] = patch.StartDate
	}
	if patch.EndDate != nil {
		tender.EndDate = patch.EndDate
		updates["end_date"] = patch.EndDate
	}
	tender.UpdatedAt = now

	// The status guard keeps a concurrent publish from racing the edit.
	if err := s.tenderRepo.UpdateStatusIf(tenderID, models.TenderDraft, updates); err != nil {
		if err == repositories.ErrStaleStatus {
			metrics.StateConflicts.WithLabelValues("update_tender").Inc()
			return nil, apperrors.StateConflict("tender %s left DRAFT during the update", tenderID)
		}
		return nil, err
	}
	return tender, nil
}

// Publish opens the tender for bidding. An end date must exist before the
// tender can leave DRAFT.
func (s *tenderService) Publish(ctx context.Context, tenderID uuid.UUID, actor models.Actor) (*models.Tender, error) {
	tender, err := s.findOwned(tenderID, actor)
	if err != nil {
		return nil, err
	}
	if tender.Status != models.TenderDraft {
		return nil, apperrors.StateConflict("tender %s is %s, only drafts can be published", tenderID, tender.Status)
	}
	if tender.EndDate == nil {
		return nil, apperrors.Validation("end date must be set before publishing")
	}

	now := s.clock.Now()
	updates := map[string]interface{}{
		"status":     models.TenderPublished,
		"updated_at": now,
	}
	if tender.StartDate == nil {
		tender.StartDate = &now
		updates["start_date"] = now
	}

	if err := s.tenderRepo.UpdateStatusIf(tenderID, models.TenderDraft, updates); err != nil {
		if err == repositories.ErrStaleStatus {
			metrics.StateConflicts.WithLabelValues("publish_tender").Inc()
			return nil, apperrors.StateConflict("tender %s changed state during publish", tenderID)
		}
		return nil, err
	}

	tender.Status = models.TenderPublished
	tender.UpdatedAt = now
	metrics.TenderTransitions.WithLabelValues(string(models.TenderDraft), string(models.TenderPublished)).Inc()
	s.log.Info("tender published", zap.String("tender_id", tenderID.String()))
	return tender, nil
}

// Close ends the bidding window. Every bid still pending under the tender is
// bulk-rejected in the same transaction; this is the canonical cascade
// point.
func (s *tenderService) Close(ctx context.Context, tenderID uuid.UUID, actor models.Actor) (*models.Tender, error) {
	tender, err := s.findOwned(tenderID, actor)
	if err != nil {
		return nil, err
	}
	if tender.Status != models.TenderPublished {
		return nil, apperrors.StateConflict("tender %s is %s, only published tenders can be closed", tenderID, tender.Status)
	}

	now := s.clock.Now()
	updates := map[string]interface{}{}
	if tender.EndDate == nil {
		tender.EndDate = &now
		updates["end_date"] = now
	}

	rejected, err := s.tenderRepo.CloseWithCascade(tenderID, models.TenderPublished, models.TenderClosed, updates, now)
	if err != nil {
		if err == repositories.ErrStaleStatus {
			metrics.StateConflicts.WithLabelValues("close_tender").Inc()
			return nil, apperrors.StateConflict("tender %s changed state during close", tenderID)
		}
		return nil, err
	}

	tender.Status = models.TenderClosed
	tender.UpdatedAt = now
	metrics.TenderTransitions.WithLabelValues(string(models.TenderPublished), string(models.TenderClosed)).Inc()
	s.log.Info("tender closed",
		zap.String("tender_id", tenderID.String()),
		zap.Int64("bids_rejected", rejected))
	return tender, nil
}

func (s *tenderService) Get(ctx context.Context, tenderID uuid.UUID) (*models.Tender, error) {
	tender, err := s.tenderRepo.FindByID(tenderID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, apperrors.NotFound("tender %s not found", tenderID)
		}
		return nil, err
	}
	return tender, nil
}

func (s *tenderService) ListOpen(ctx context.Context) ([]models.Tender, error) {
	return s.tenderRepo.FindByStatus(models.TenderPublished)
}

// ExpireDue transitions every published tender whose end date has passed to
// EXPIRED, cascading rejection exactly like a manual close. A tender that
// loses its conditional write to a concurrent transition is skipped.
func (s *tenderService) ExpireDue(ctx context.Context) (int, error) {
	now := s.clock.Now()
	due, err := s.tenderRepo.FindOpenPast(now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, tender := range due {
		rejected, err := s.tenderRepo.CloseWithCascade(tender.ID, models.TenderPublished, models.TenderExpired, nil, now)
		if err != nil {
			if err == repositories.ErrStaleStatus {
				metrics.StateConflicts.WithLabelValues("expire_tender").Inc()
				continue
			}
			return expired, err
		}
		expired++
		metrics.TenderTransitions.WithLabelValues(string(models.TenderPublished), string(models.TenderExpired)).Inc()
		s.log.Info("tender expired",
			zap.String("tender_id", tender.ID.String()),
			zap.Int64("bids_rejected", rejected))
	}
	return expired, nil
}

func (s *tenderService) findOwned(tenderID uuid.UUID, actor models.Actor) (*models.Tender, error) {
	tender, err := s.tenderRepo.FindByID(tenderID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, apperrors.NotFound("tender %s not found", tenderID)
		}
		return nil, err
	}
	if !actor.Owns(tender.OwnerCompanyID) && !actor.IsAdmin() {
		return nil, apperrors.Authorization("company %s does not own tender %s", actor.CompanyID, tenderID)
	}
	return tender, nil
}
