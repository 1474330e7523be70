package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/repositories"
)

// memStore backs the in-memory repository fakes. One mutex covers both
// entity maps so the multi-entity operations (close cascade, award) stay
// atomic exactly like their transactional counterparts.
type memStore struct {
	mu           sync.Mutex
	tenders      map[uuid.UUID]*models.Tender
	bids         map[uuid.UUID]*models.Bid
	disqualified map[string]bool
}

type memTenderRepo struct{ store *memStore }

type memBidRepo struct{ store *memStore }

func newMemRepos() (*memTenderRepo, *memBidRepo) {
	store := &memStore{
		tenders:      make(map[uuid.UUID]*models.Tender),
		bids:         make(map[uuid.UUID]*models.Bid),
		disqualified: make(map[string]bool),
	}
	return &memTenderRepo{store: store}, &memBidRepo{store: store}
}

func disqualificationKey(tenderID, companyID uuid.UUID) string {
	return tenderID.String() + "|" + companyID.String()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubSummarizer struct {
	result *NarrativeResult
	err    error
	calls  int
}

func (s *stubSummarizer) SummarizeEvaluation(_ context.Context, _ *models.Tender, _ []models.Bid, _ *models.EvaluationReport) (*NarrativeResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func applyTenderUpdates(t *models.Tender, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case "status":
			t.Status = v.(models.TenderStatus)
		case "title":
			t.Title = v.(string)
		case "description":
			t.Description = v.(string)
		case "category":
			t.Category = v.(string)
		case "estimated_value":
			t.EstimatedValue = v.(float64)
		case "emd_amount":
			t.EMDAmount = v.(float64)
		case "abnormally_low_bid_threshold":
			t.AbnormallyLowBidThreshold = v.(float64)
		case "start_date":
			t.StartDate = asTimePtr(v)
		case "end_date":
			t.EndDate = asTimePtr(v)
		case "bid_ids":
			t.BidIDs = v.([]uuid.UUID)
		case "latest_report":
			t.LatestReport = v.(*models.EvaluationReport)
		case "updated_at":
			t.UpdatedAt = v.(time.Time)
		}
	}
}

func asTimePtr(v interface{}) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	}
	return nil
}

func applyBidUpdates(b *models.Bid, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case "status":
			b.Status = v.(models.BidStatus)
		case "anomaly_score":
			b.AnomalyScore = v.(float64)
		case "ai_notes":
			b.AINotes = v.(string)
		case "withdrawn_at":
			b.WithdrawnAt = asTimePtr(v)
		case "updated_at":
			b.UpdatedAt = v.(time.Time)
		}
	}
}

func (r *memTenderRepo) Create(tender *models.Tender) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *tender
	r.store.tenders[tender.ID] = &copied
	return nil
}

func (r *memTenderRepo) FindByID(id uuid.UUID) (*models.Tender, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tender, ok := r.store.tenders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *tender
	return &copied, nil
}

func (r *memTenderRepo) FindByStatus(status models.TenderStatus) ([]models.Tender, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Tender
	for _, tender := range r.store.tenders {
		if tender.Status == status {
			out = append(out, *tender)
		}
	}
	return out, nil
}

func (r *memTenderRepo) FindOpenPast(cutoff time.Time) ([]models.Tender, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Tender
	for _, tender := range r.store.tenders {
		if tender.Status == models.TenderPublished && tender.EndDate != nil && tender.EndDate.Before(cutoff) {
			out = append(out, *tender)
		}
	}
	return out, nil
}

func (r *memTenderRepo) UpdateFields(id uuid.UUID, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tender, ok := r.store.tenders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	applyTenderUpdates(tender, updates)
	return nil
}

func (r *memTenderRepo) UpdateStatusIf(id uuid.UUID, from models.TenderStatus, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tender, ok := r.store.tenders[id]
	if !ok || tender.Status != from {
		return repositories.ErrStaleStatus
	}
	applyTenderUpdates(tender, updates)
	return nil
}

func (r *memTenderRepo) AppendBidID(tenderID, bidID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tender, ok := r.store.tenders[tenderID]
	if !ok {
		return repositories.ErrNotFound
	}
	if tender.HasBid(bidID) {
		return nil
	}
	tender.BidIDs = append(tender.BidIDs, bidID)
	return nil
}

func (r *memTenderRepo) SaveReport(id uuid.UUID, report *models.EvaluationReport) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tender, ok := r.store.tenders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	tender.LatestReport = report
	return nil
}

func (r *memTenderRepo) CloseWithCascade(id uuid.UUID, from, to models.TenderStatus, updates map[string]interface{}, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tender, ok := r.store.tenders[id]
	if !ok || tender.Status != from {
		return 0, repositories.ErrStaleStatus
	}
	tender.Status = to
	tender.UpdatedAt = now
	applyTenderUpdates(tender, updates)

	var rejected int64
	for _, bid := range r.store.bids {
		if bid.TenderID == id && bid.Pending() {
			bid.Status = models.BidRejected
			bid.UpdatedAt = now
			rejected++
		}
	}
	return rejected, nil
}

func (r *memTenderRepo) Award(tenderID, winningBidID uuid.UUID, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tender, ok := r.store.tenders[tenderID]
	if !ok || tender.Status != models.TenderClosed {
		return repositories.ErrStaleStatus
	}

	winner, ok := r.store.bids[winningBidID]
	if !ok || winner.TenderID != tenderID || !winner.Pending() {
		return repositories.ErrStaleStatus
	}

	tender.Status = models.TenderAwarded
	tender.UpdatedAt = now
	winner.Status = models.BidAccepted
	winner.UpdatedAt = now
	for _, bid := range r.store.bids {
		if bid.TenderID == tenderID && bid.ID != winningBidID && bid.Pending() {
			bid.Status = models.BidRejected
			bid.UpdatedAt = now
		}
	}
	return nil
}

func (r *memBidRepo) Create(bid *models.Bid) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *bid
	r.store.bids[bid.ID] = &copied
	return nil
}

func (r *memBidRepo) FindByID(id uuid.UUID) (*models.Bid, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	bid, ok := r.store.bids[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *bid
	return &copied, nil
}

func (r *memBidRepo) FindByTender(tenderID uuid.UUID) ([]models.Bid, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Bid
	for _, bid := range r.store.bids {
		if bid.TenderID == tenderID {
			out = append(out, *bid)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memBidRepo) FindDraft(tenderID, companyID uuid.UUID) (*models.Bid, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, bid := range r.store.bids {
		if bid.TenderID == tenderID && bid.BidderCompanyID == companyID && bid.Status == models.BidDraft {
			copied := *bid
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memBidRepo) IsDisqualified(tenderID, companyID uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.disqualified[disqualificationKey(tenderID, companyID)], nil
}

func (r *memBidRepo) Save(bid *models.Bid) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *bid
	r.store.bids[bid.ID] = &copied
	return nil
}

func (r *memBidRepo) UpdateStatusIf(id uuid.UUID, from []models.BidStatus, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	bid, ok := r.store.bids[id]
	if !ok || !statusIn(bid.Status, from) {
		return repositories.ErrStaleStatus
	}
	applyBidUpdates(bid, updates)
	return nil
}

func (r *memBidRepo) Withdraw(bid *models.Bid, actorID uuid.UUID, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.bids[bid.ID]
	if !ok || stored.Status == models.BidWithdrawn {
		return repositories.ErrStaleStatus
	}
	stored.Status = models.BidWithdrawn
	stored.WithdrawnAt = &now
	stored.WithdrawnByID = &actorID
	stored.UpdatedAt = now
	r.store.disqualified[disqualificationKey(bid.TenderID, bid.BidderCompanyID)] = true
	return nil
}

func (r *memBidRepo) DeleteDraft(id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	bid, ok := r.store.bids[id]
	if !ok || bid.Status != models.BidDraft {
		return repositories.ErrStaleStatus
	}
	delete(r.store.bids, id)
	return nil
}
