package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/apperrors"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/metrics"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/repositories"
)

// anomalyPriceRatio: a bid priced below this fraction of the estimated value
// is flagged at submission time.
const anomalyPriceRatio = 0.7

const anomalyNote = "Bid priced more than 30% below the tender's estimated value; verify the bidder can deliver at this price."

type BidService interface {
	CreateDraft(ctx context.Context, tenderID uuid.UUID, req models.CreateBidDraftRequest, actor models.Actor) (*models.Bid, error)
	UpdateDraft(ctx context.Context, bidID uuid.UUID, patch models.BidDraftPatch, actor models.Actor) (*models.Bid, error)
	PreSubmitReview(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.ReadinessChecklist, error)
	Submit(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error)
	Withdraw(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error)
	Delete(ctx context.Context, bidID uuid.UUID, actor models.Actor) error
	Hold(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error)
	Accept(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error)
	Reject(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error)
	Get(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error)
}

type bidService struct {
	bidRepo    repositories.BidRepository
	tenderRepo repositories.TenderRepository
	clock      Clock
	log        *zap.Logger
}

func NewBidService(
	bidRepo repositories.BidRepository,
	tenderRepo repositories.TenderRepository,
	clock Clock,
	log *zap.Logger,
) BidService {
	return &bidService{
		bidRepo:    bidRepo,
		tenderRepo: tenderRepo,
		clock:      clock,
		log:        log,
	}
}

// CreateDraft opens a new draft bid for the actor's company. A company with
// a withdrawn bid on this tender is permanently disqualified; a company with
// an existing draft must update it instead of recreating it.
func (s *bidService) CreateDraft(ctx context.Context, tenderID uuid.UUID, req models.CreateBidDraftRequest, actor models.Actor) (*models.Bid, error) {
	tender, err := s.findTender(tenderID)
	if err != nil {
		return nil, err
	}
	if !tender.OpenForBidding() {
		return nil, apperrors.StateConflict("tender %s is not open for bidding", tenderID)
	}

	disqualified, err := s.bidRepo.IsDisqualified(tenderID, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	if disqualified {
		return nil, apperrors.Eligibility("company %s withdrew a bid on tender %s and may not bid again", actor.CompanyID, tenderID)
	}

	if _, err := s.bidRepo.FindDraft(tenderID, actor.CompanyID); err == nil {
		return nil, apperrors.StateConflict("a draft bid already exists for this tender; update it instead")
	} else if err != repositories.ErrNotFound {
		return nil, err
	}

	if req.Amount < 0 {
		return nil, apperrors.Validation("amount must not be negative")
	}
	if req.DeliveryDays < 0 {
		return nil, apperrors.Validation("delivery days must not be negative")
	}

	now := s.clock.Now()
	bid := &models.Bid{
		ID:              uuid.New(),
		TenderID:        tenderID,
		BidderCompanyID: actor.CompanyID,
		SubmittedByID:   actor.UserID,
		Amount:          req.Amount,
		DeliveryDays:    req.DeliveryDays,
		Status:          models.BidDraft,
		TechnicalDocs:   req.TechnicalDocs,
		FinancialDocs:   req.FinancialDocs,
		EMDProof:        req.EMDProof,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.bidRepo.Create(bid); err != nil {
		return nil, err
	}

	metrics.BidTransitions.WithLabelValues("", string(models.BidDraft)).Inc()
	s.log.Info("bid draft created",
		zap.String("bid_id", bid.ID.String()),
		zap.String("tender_id", tenderID.String()),
		zap.String("company_id", actor.CompanyID.String()))
	return bid, nil
}

// UpdateDraft merges scalar fields and reconciles the envelope document
// lists. Any previously stored document whose id is absent from the kept
// list is dropped; removal is client-directed.
func (s *bidService) UpdateDraft(ctx context.Context, bidID uuid.UUID, patch models.BidDraftPatch, actor models.Actor) (*models.Bid, error) {
	bid, tender, err := s.findOwnedBid(bidID, actor)
	if err != nil {
		return nil, err
	}
	if bid.Status != models.BidDraft {
		return nil, apperrors.StateConflict("bid %s is %s, only drafts can be edited", bidID, bid.Status)
	}
	if !tender.OpenForBidding() {
		return nil, apperrors.StateConflict("tender %s is no longer open for bidding", tender.ID)
	}

	if patch.Amount != nil {
		if *patch.Amount < 0 {
			return nil, apperrors.Validation("amount must not be negative")
		}
		bid.Amount = *patch.Amount
	}
	if patch.DeliveryDays != nil {
		if *patch.DeliveryDays < 0 {
			return nil, apperrors.Validation("delivery days must not be negative")
		}
		bid.DeliveryDays = *patch.DeliveryDays
	}
	if patch.EMDProof != nil {
		bid.EMDProof = patch.EMDProof
	}
	bid.TechnicalDocs = reconcileDocs(bid.TechnicalDocs, patch.KeptTechnicalIDs, patch.NewTechnicalDocs)
	bid.FinancialDocs = reconcileDocs(bid.FinancialDocs, patch.KeptFinancialIDs, patch.NewFinancialDocs)
	bid.UpdatedAt = s.clock.Now()

	if err := s.bidRepo.Save(bid); err != nil {
		return nil, err
	}
	return bid, nil
}

// PreSubmitReview returns the readiness checklist for a draft without
// mutating it.
func (s *bidService) PreSubmitReview(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.ReadinessChecklist, error) {
	bid, tender, err := s.findOwnedBid(bidID, actor)
	if err != nil {
		return nil, err
	}
	if bid.Status != models.BidDraft {
		return nil, apperrors.StateConflict("bid %s is %s, only drafts can be reviewed", bidID, bid.Status)
	}
	if !tender.OpenForBidding() {
		return nil, apperrors.StateConflict("tender %s is no longer open for bidding", tender.ID)
	}

	checklist := &models.ReadinessChecklist{
		BidID:   bid.ID,
		Missing: submissionGaps(bid),
	}
	checklist.Ready = len(checklist.Missing) == 0
	if tender.EstimatedValue > 0 && bid.Amount < anomalyPriceRatio*tender.EstimatedValue {
		checklist.Advisory = anomalyNote
	}
	return checklist, nil
}

// Submit moves a complete draft to SUBMITTED and links the bid id onto the
// tender. An abnormally cheap bid is flagged before the transition.
func (s *bidService) Submit(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error) {
	bid, tender, err := s.findOwnedBid(bidID, actor)
	if err != nil {
		return nil, err
	}
	if bid.Status != models.BidDraft {
		return nil, apperrors.StateConflict("bid %s is %s, only drafts can be submitted", bidID, bid.Status)
	}
	if !tender.OpenForBidding() {
		return nil, apperrors.StateConflict("tender %s is not open for bidding", tender.ID)
	}
	if gaps := submissionGaps(bid); len(gaps) > 0 {
		return nil, apperrors.Validation("bid is not ready to submit: %s", strings.Join(gaps, "; "))
	}

	now := s.clock.Now()
	updates := map[string]interface{}{
		"status":     models.BidSubmitted,
		"updated_at": now,
	}
	if tender.EstimatedValue > 0 && bid.Amount < anomalyPriceRatio*tender.EstimatedValue {
		bid.AnomalyScore = 85
		bid.AINotes = anomalyNote
		updates["anomaly_score"] = bid.AnomalyScore
		updates["ai_notes"] = bid.AINotes
	}

	if err := s.bidRepo.UpdateStatusIf(bidID, []models.BidStatus{models.BidDraft}, updates); err != nil {
		if err == repositories.ErrStaleStatus {
			metrics.StateConflicts.WithLabelValues("submit_bid").Inc()
			return nil, apperrors.StateConflict("bid %s changed state during submission", bidID)
		}
		return nil, err
	}
	if err := s.tenderRepo.AppendBidID(tender.ID, bid.ID); err != nil {
		return nil, err
	}

	bid.Status = models.BidSubmitted
	bid.UpdatedAt = now
	metrics.BidTransitions.WithLabelValues(string(models.BidDraft), string(models.BidSubmitted)).Inc()
	s.log.Info("bid submitted",
		zap.String("bid_id", bid.ID.String()),
		zap.String("tender_id", tender.ID.String()),
		zap.Float64("anomaly_score", bid.AnomalyScore))
	return bid, nil
}

// Withdraw is allowed from any non-withdrawn status and is permanent: the
// (tender, company) pair can never bid on this tender again.
func (s *bidService) Withdraw(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error) {
	bid, _, err := s.findOwnedBid(bidID, actor)
	if err != nil {
		return nil, err
	}
	if bid.Status == models.BidWithdrawn {
		return nil, apperrors.StateConflict("bid %s is already withdrawn", bidID)
	}

	now := s.clock.Now()
	if err := s.bidRepo.Withdraw(bid, actor.UserID, now); err != nil {
		if err == repositories.ErrStaleStatus {
			metrics.StateConflicts.WithLabelValues("withdraw_bid").Inc()
			return nil, apperrors.StateConflict("bid %s is already withdrawn", bidID)
		}
		return nil, err
	}

	from := bid.Status
	bid.Status = models.BidWithdrawn
	bid.WithdrawnAt = &now
	bid.WithdrawnByID = &actor.UserID
	metrics.BidTransitions.WithLabelValues(string(from), string(models.BidWithdrawn)).Inc()
	s.log.Info("bid withdrawn, company permanently disqualified for tender",
		zap.String("bid_id", bid.ID.String()),
		zap.String("tender_id", bid.TenderID.String()),
		zap.String("company_id", bid.BidderCompanyID.String()))
	return bid, nil
}

// Delete discards a draft. Discarding is distinct from withdrawal and does
// not disqualify the company.
func (s *bidService) Delete(ctx context.Context, bidID uuid.UUID, actor models.Actor) error {
	bid, tender, err := s.findOwnedBid(bidID, actor)
	if err != nil {
		return err
	}
	if bid.Status != models.BidDraft {
		return apperrors.StateConflict("bid %s is %s; a submitted bid must be withdrawn, not deleted", bidID, bid.Status)
	}
	if !tender.OpenForBidding() {
		return apperrors.StateConflict("tender %s is no longer open for bidding", tender.ID)
	}

	if err := s.bidRepo.DeleteDraft(bidID); err != nil {
		if err == repositories.ErrStaleStatus {
			return apperrors.StateConflict("bid %s changed state during deletion", bidID)
		}
		return err
	}
	return nil
}

// Hold places a submitted bid under administrative review.
func (s *bidService) Hold(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error) {
	return s.adminTransition(bidID, actor, "hold_bid",
		[]models.BidStatus{models.BidSubmitted}, models.BidUnderReview)
}

// Accept is the administrative acceptance path. The award coordinator is the
// normal route to ACCEPTED; this direct action exists for elevated
// intervention and carries the same authorization rules.
func (s *bidService) Accept(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error) {
	return s.adminTransition(bidID, actor, "accept_bid",
		models.PendingBidStatuses, models.BidAccepted)
}

// Reject is the administrative rejection of a single pending bid.
func (s *bidService) Reject(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error) {
	return s.adminTransition(bidID, actor, "reject_bid",
		models.PendingBidStatuses, models.BidRejected)
}

func (s *bidService) Get(ctx context.Context, bidID uuid.UUID, actor models.Actor) (*models.Bid, error) {
	bid, err := s.findBid(bidID)
	if err != nil {
		return nil, err
	}
	if actor.Owns(bid.BidderCompanyID) || actor.IsAdmin() {
		return bid, nil
	}
	tender, err := s.findTender(bid.TenderID)
	if err != nil {
		return nil, err
	}
	if actor.Owns(tender.OwnerCompanyID) {
		return bid, nil
	}
	// Ids outside the actor's scope are indistinguishable from unknown ids.
	return nil, apperrors.NotFound("bid %s not found", bidID)
}

func (s *bidService) adminTransition(bidID uuid.UUID, actor models.Actor, operation string, from []models.BidStatus, to models.BidStatus) (*models.Bid, error) {
	bid, err := s.findBid(bidID)
	if err != nil {
		return nil, err
	}
	tender, err := s.findTender(bid.TenderID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(tender.OwnerCompanyID) && !actor.IsAdmin() {
		return nil, apperrors.Authorization("only the tender owner may decide on its bids")
	}
	if tender.Status != models.TenderPublished && tender.Status != models.TenderClosed {
		return nil, apperrors.StateConflict("tender %s is %s, bids can no longer be decided individually", tender.ID, tender.Status)
	}
	if !statusIn(bid.Status, from) {
		return nil, apperrors.StateConflict("bid %s is %s, expected one of %v", bidID, bid.Status, from)
	}

	now := s.clock.Now()
	err = s.bidRepo.UpdateStatusIf(bidID, from, map[string]interface{}{
		"status":     to,
		"updated_at": now,
	})
	if err != nil {
		if err == repositories.ErrStaleStatus {
			metrics.StateConflicts.WithLabelValues(operation).Inc()
			return nil, apperrors.StateConflict("bid %s changed state during %s", bidID, operation)
		}
		return nil, err
	}

	from0 := bid.Status
	bid.Status = to
	bid.UpdatedAt = now
	metrics.BidTransitions.WithLabelValues(string(from0), string(to)).Inc()
	return bid, nil
}

func (s *bidService) findBid(bidID uuid.UUID) (*models.Bid, error) {
	bid, err := s.bidRepo.FindByID(bidID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, apperrors.NotFound("bid %s not found", bidID)
		}
		return nil, err
	}
	return bid, nil
}

func (s *bidService) findTender(tenderID uuid.UUID) (*models.Tender, error) {
	tender, err := s.tenderRepo.FindByID(tenderID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, apperrors.NotFound("tender %s not found", tenderID)
		}
		return nil, err
	}
	return tender, nil
}

// findOwnedBid loads a bid plus its tender and enforces that the actor's
// company owns the bid.
func (s *bidService) findOwnedBid(bidID uuid.UUID, actor models.Actor) (*models.Bid, *models.Tender, error) {
	bid, err := s.findBid(bidID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.Owns(bid.BidderCompanyID) {
		return nil, nil, apperrors.NotFound("bid %s not found", bidID)
	}
	tender, err := s.findTender(bid.TenderID)
	if err != nil {
		return nil, nil, err
	}
	return bid, tender, nil
}

// submissionGaps lists everything still blocking submission, using the full
// validation rules rather than the relaxed draft ones.
func submissionGaps(bid *models.Bid) []string {
	var gaps []string
	if bid.Amount <= 0 {
		gaps = append(gaps, "amount must be greater than zero")
	}
	if bid.DeliveryDays < 1 {
		gaps = append(gaps, "delivery days must be at least 1")
	}
	if len(bid.TechnicalDocs) == 0 {
		gaps = append(gaps, "technical envelope is empty")
	}
	if len(bid.FinancialDocs) == 0 {
		gaps = append(gaps, "financial envelope is empty")
	}
	if bid.EMDProof == nil || bid.EMDProof.Receipt == nil {
		gaps = append(gaps, "EMD payment receipt is missing")
	} else if bid.EMDProof.TransactionID == "" {
		gaps = append(gaps, "EMD transaction id is missing")
	}
	return gaps
}

func reconcileDocs(existing []models.DocumentRef, kept *[]string, added []models.DocumentRef) []models.DocumentRef {
	var out []models.DocumentRef
	if kept == nil {
		out = append(out, existing...)
	} else {
		keep := make(map[string]bool, len(*kept))
		for _, id := range *kept {
			keep[id] = true
		}
		for _, doc := range existing {
			if keep[doc.ID] {
				out = append(out, doc)
			}
		}
	}
	present := make(map[string]bool, len(out))
	for _, doc := range out {
		present[doc.ID] = true
	}
	for _, doc := range added {
		if !present[doc.ID] {
			out = append(out, doc)
			present[doc.ID] = true
		}
	}
	return out
}

func statusIn(status models.BidStatus, set []models.BidStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
