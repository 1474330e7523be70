package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/apperrors"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
)

type bidFixture struct {
	tenderRepo *memTenderRepo
	bidRepo    *memBidRepo
	clock      *fakeClock
	service    BidService
	tender     *models.Tender
	owner      models.Actor
	bidder     models.Actor
}

func newBidFixture(t *testing.T, tenderStatus models.TenderStatus) *bidFixture {
	t.Helper()
	tenderRepo, bidRepo := newMemRepos()
	clock := newFakeClock(testTime)

	ownerCompany := uuid.New()
	tender := makeTender(ownerCompany, tenderStatus, 100000)
	end := testTime.Add(7 * 24 * time.Hour)
	tender.EndDate = &end
	require.NoError(t, tenderRepo.Create(tender))

	return &bidFixture{
		tenderRepo: tenderRepo,
		bidRepo:    bidRepo,
		clock:      clock,
		service:    NewBidService(bidRepo, tenderRepo, clock, zap.NewNop()),
		tender:     tender,
		owner:      models.Actor{UserID: uuid.New(), CompanyID: ownerCompany, Role: models.RoleMember},
		bidder:     models.Actor{UserID: uuid.New(), CompanyID: uuid.New(), Role: models.RoleMember},
	}
}

func completeDraftRequest() models.CreateBidDraftRequest {
	return models.CreateBidDraftRequest{
		Amount:       90000,
		DeliveryDays: 30,
		TechnicalDocs: []models.DocumentRef{
			{ID: uuid.NewString(), URL: "/uploads/proposal.pdf", Name: "proposal.pdf"},
		},
		FinancialDocs: []models.DocumentRef{
			{ID: uuid.NewString(), URL: "/uploads/quote.pdf", Name: "quote.pdf"},
		},
		EMDProof: &models.EMDProof{
			TransactionID: "TXN-1001",
			PaymentMode:   "bank_transfer",
			Receipt:       &models.DocumentRef{ID: uuid.NewString(), URL: "/uploads/emd.pdf", Name: "emd.pdf"},
		},
	}
}

func TestCreateDraft(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)

	bid, err := f.service.CreateDraft(context.Background(), f.tender.ID, models.CreateBidDraftRequest{Amount: 90000}, f.bidder)
	require.NoError(t, err)

	assert.Equal(t, models.BidDraft, bid.Status)
	assert.Equal(t, f.bidder.CompanyID, bid.BidderCompanyID)
	// Drafts may be incomplete; full validation waits for submission.
	assert.Empty(t, bid.TechnicalDocs)
}

func TestCreateDraftRequiresOpenTender(t *testing.T) {
	for _, status := range []models.TenderStatus{models.TenderDraft, models.TenderClosed, models.TenderAwarded, models.TenderExpired} {
		f := newBidFixture(t, status)
		_, err := f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
		var conflictErr *apperrors.StateConflictError
		require.ErrorAs(t, err, &conflictErr, "status %s", status)
	}
}

func TestCreateDraftRejectsSecondDraft(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)

	_, err := f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	require.NoError(t, err)

	_, err = f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	var conflictErr *apperrors.StateConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestCreateDraftRejectsNegativeValues(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)

	_, err := f.service.CreateDraft(context.Background(), f.tender.ID, models.CreateBidDraftRequest{Amount: -1}, f.bidder)
	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = f.service.CreateDraft(context.Background(), f.tender.ID, models.CreateBidDraftRequest{DeliveryDays: -1}, f.bidder)
	require.ErrorAs(t, err, &validationErr)
}

func TestSubmitHappyPath(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	require.NoError(t, err)

	bid, err := f.service.Submit(context.Background(), draft.ID, f.bidder)
	require.NoError(t, err)

	assert.Equal(t, models.BidSubmitted, bid.Status)
	assert.Zero(t, bid.AnomalyScore)

	// The bid id is linked onto the tender.
	tender, err := f.tenderRepo.FindByID(f.tender.ID)
	require.NoError(t, err)
	assert.True(t, tender.HasBid(bid.ID))
}

func TestSubmitValidatesCompleteness(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, models.CreateBidDraftRequest{Amount: 90000}, f.bidder)
	require.NoError(t, err)

	_, err = f.service.Submit(context.Background(), draft.ID, f.bidder)
	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "delivery days")
	assert.Contains(t, err.Error(), "technical envelope")
	assert.Contains(t, err.Error(), "financial envelope")
	assert.Contains(t, err.Error(), "EMD")
}

func TestSubmitFlagsAbnormallyCheapBid(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	req := completeDraftRequest()
	req.Amount = 65000 // below 70% of the 100k estimate
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, req, f.bidder)
	require.NoError(t, err)

	bid, err := f.service.Submit(context.Background(), draft.ID, f.bidder)
	require.NoError(t, err)

	assert.Equal(t, 85.0, bid.AnomalyScore)
	assert.NotEmpty(t, bid.AINotes)

	stored, err := f.bidRepo.FindByID(bid.ID)
	require.NoError(t, err)
	assert.Equal(t, 85.0, stored.AnomalyScore)
}

func TestSubmitTwiceConflicts(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	require.NoError(t, err)

	_, err = f.service.Submit(context.Background(), draft.ID, f.bidder)
	require.NoError(t, err)

	_, err = f.service.Submit(context.Background(), draft.ID, f.bidder)
	var conflictErr *apperrors.StateConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestWithdrawDisqualifiesPermanently(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	require.NoError(t, err)
	_, err = f.service.Submit(context.Background(), draft.ID, f.bidder)
	require.NoError(t, err)

	bid, err := f.service.Withdraw(context.Background(), draft.ID, f.bidder)
	require.NoError(t, err)
	assert.Equal(t, models.BidWithdrawn, bid.Status)
	require.NotNil(t, bid.WithdrawnAt)
	require.NotNil(t, bid.WithdrawnByID)
	assert.Equal(t, f.bidder.UserID, *bid.WithdrawnByID)

	// Withdrawal is terminal.
	_, err = f.service.Withdraw(context.Background(), draft.ID, f.bidder)
	var conflictErr *apperrors.StateConflictError
	require.ErrorAs(t, err, &conflictErr)

	// The company can never bid on this tender again.
	_, err = f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	var eligibilityErr *apperrors.EligibilityError
	require.ErrorAs(t, err, &eligibilityErr)

	// A different company is unaffected.
	other := models.Actor{UserID: uuid.New(), CompanyID: uuid.New(), Role: models.RoleMember}
	_, err = f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), other)
	require.NoError(t, err)
}

func TestDeleteDraftDoesNotDisqualify(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), draft.ID, f.bidder))

	// Discarding a draft leaves the company free to start over.
	_, err = f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	require.NoError(t, err)
}

func TestDeleteRejectsSubmittedBid(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	require.NoError(t, err)
	_, err = f.service.Submit(context.Background(), draft.ID, f.bidder)
	require.NoError(t, err)

	err = f.service.Delete(context.Background(), draft.ID, f.bidder)
	var conflictErr *apperrors.StateConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestUpdateDraftReconcilesDocuments(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	req := completeDraftRequest()
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, req, f.bidder)
	require.NoError(t, err)

	newDoc := models.DocumentRef{ID: uuid.NewString(), URL: "/uploads/rev2.pdf", Name: "rev2.pdf"}
	newAmount := 95000.0
	kept := []string{}
	bid, err := f.service.UpdateDraft(context.Background(), draft.ID, models.BidDraftPatch{
		Amount:           &newAmount,
		KeptTechnicalIDs: &kept,
		NewTechnicalDocs: []models.DocumentRef{newDoc},
	}, f.bidder)
	require.NoError(t, err)

	assert.Equal(t, 95000.0, bid.Amount)
	// The original technical doc was dropped, the new one replaces it.
	require.Len(t, bid.TechnicalDocs, 1)
	assert.Equal(t, newDoc.ID, bid.TechnicalDocs[0].ID)
	// The financial envelope was not mentioned in the patch and survives.
	assert.Len(t, bid.FinancialDocs, 1)
}

func TestUpdateDraftRejectsSubmittedBid(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	require.NoError(t, err)
	_, err = f.service.Submit(context.Background(), draft.ID, f.bidder)
	require.NoError(t, err)

	amount := 80000.0
	_, err = f.service.UpdateDraft(context.Background(), draft.ID, models.BidDraftPatch{Amount: &amount}, f.bidder)
	var conflictErr *apperrors.StateConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestPreSubmitReview(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, models.CreateBidDraftRequest{Amount: 65000}, f.bidder)
	require.NoError(t, err)

	checklist, err := f.service.PreSubmitReview(context.Background(), draft.ID, f.bidder)
	require.NoError(t, err)

	assert.False(t, checklist.Ready)
	assert.NotEmpty(t, checklist.Missing)
	// 65k against a 100k estimate trips the pricing advisory.
	assert.NotEmpty(t, checklist.Advisory)

	// The review never mutates the draft.
	stored, err := f.bidRepo.FindByID(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BidDraft, stored.Status)
	assert.Zero(t, stored.AnomalyScore)
}

func TestOtherCompanyCannotTouchBid(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	require.NoError(t, err)

	stranger := models.Actor{UserID: uuid.New(), CompanyID: uuid.New(), Role: models.RoleMember}
	var notFoundErr *apperrors.NotFoundError

	_, err = f.service.Submit(context.Background(), draft.ID, stranger)
	require.ErrorAs(t, err, &notFoundErr)
	_, err = f.service.Withdraw(context.Background(), draft.ID, stranger)
	require.ErrorAs(t, err, &notFoundErr)
	_, err = f.service.Get(context.Background(), draft.ID, stranger)
	require.ErrorAs(t, err, &notFoundErr)

	// The tender owner can read the bid but not edit it.
	_, err = f.service.Get(context.Background(), draft.ID, f.owner)
	require.NoError(t, err)
	amount := 1.0
	_, err = f.service.UpdateDraft(context.Background(), draft.ID, models.BidDraftPatch{Amount: &amount}, f.owner)
	require.ErrorAs(t, err, &notFoundErr)
}

func TestHoldAcceptReject(t *testing.T) {
	f := newBidFixture(t, models.TenderPublished)
	draft, err := f.service.CreateDraft(context.Background(), f.tender.ID, completeDraftRequest(), f.bidder)
	require.NoError(t, err)
	_, err = f.service.Submit(context.Background(), draft.ID, f.bidder)
	require.NoError(t, err)

	// The bidder cannot decide on their own bid.
	_, err = f.service.Hold(context.Background(), draft.ID, f.bidder)
	var authzErr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &authzErr)

	bid, err := f.service.Hold(context.Background(), draft.ID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, models.BidUnderReview, bid.Status)

	// A held bid cannot be held again.
	_, err = f.service.Hold(context.Background(), draft.ID, f.owner)
	var conflictErr *apperrors.StateConflictError
	require.ErrorAs(t, err, &conflictErr)

	bid, err = f.service.Reject(context.Background(), draft.ID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, models.BidRejected, bid.Status)

	// Rejection is terminal for the individual decision path.
	_, err = f.service.Accept(context.Background(), draft.ID, f.owner)
	require.ErrorAs(t, err, &conflictErr)
}
