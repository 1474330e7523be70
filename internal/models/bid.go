package models

import (
	"time"

	"github.com/google/uuid"
)

type BidStatus string

const (
	BidDraft       BidStatus = "DRAFT"
	BidSubmitted   BidStatus = "SUBMITTED"
	BidUnderReview BidStatus = "UNDER_REVIEW"
	BidAccepted    BidStatus = "ACCEPTED"
	BidRejected    BidStatus = "REJECTED"
	BidWithdrawn   BidStatus = "WITHDRAWN"
)

// PendingBidStatuses are the statuses a bid can hold while the award is still
// undecided. Cascade rejection applies to exactly this set.
var PendingBidStatuses = []BidStatus{BidSubmitted, BidUnderReview}

// DocumentRef is one stored envelope document: the blob location, the stored
// identifier, and the display name shown to evaluators.
type DocumentRef struct {
	URL  string `json:"url"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EMDProof is the earnest-money-deposit payment evidence required before a
// bid may be submitted.
type EMDProof struct {
	TransactionID string       `json:"transaction_id"`
	PaymentMode   string       `json:"payment_mode"`
	Receipt       *DocumentRef `json:"receipt,omitempty"`
}

type Bid struct {
	ID              uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TenderID        uuid.UUID     `gorm:"type:uuid;not null;index;index:idx_bids_one_draft,unique,where:status = 'DRAFT',priority:1" json:"tender_id"`
	BidderCompanyID uuid.UUID     `gorm:"type:uuid;not null;index:idx_bids_one_draft,unique,where:status = 'DRAFT',priority:2" json:"bidder_company_id"`
	SubmittedByID   uuid.UUID     `gorm:"type:uuid;not null" json:"submitted_by_id"`
	Amount          float64       `gorm:"type:numeric" json:"amount"`
	DeliveryDays    int           `json:"delivery_days"`
	Status          BidStatus     `gorm:"type:text;not null;default:'DRAFT';index" json:"status"`
	TechnicalDocs   []DocumentRef `gorm:"serializer:json;type:jsonb" json:"technical_docs"`
	FinancialDocs   []DocumentRef `gorm:"serializer:json;type:jsonb" json:"financial_docs"`
	EMDProof        *EMDProof     `gorm:"serializer:json;type:jsonb" json:"emd_payment_proof,omitempty"`
	AnomalyScore    float64       `gorm:"type:numeric" json:"anomaly_score"`
	AINotes         string        `gorm:"type:text" json:"ai_notes"`
	WithdrawnAt     *time.Time    `json:"withdrawn_at,omitempty"`
	WithdrawnByID   *uuid.UUID    `gorm:"type:uuid" json:"withdrawn_by_id,omitempty"`
	CreatedAt       time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Bid) TableName() string {
	return "bids"
}

// Pending reports whether the bid is still awaiting an award decision.
func (b *Bid) Pending() bool {
	return b.Status == BidSubmitted || b.Status == BidUnderReview
}

// HasCompleteEnvelopes reports whether both envelopes and the EMD receipt are
// present, the submission gate for the two-envelope workflow.
func (b *Bid) HasCompleteEnvelopes() bool {
	return len(b.TechnicalDocs) > 0 &&
		len(b.FinancialDocs) > 0 &&
		b.EMDProof != nil && b.EMDProof.Receipt != nil
}

// Disqualification is the permanent record written when a company withdraws
// a bid. The composite unique index is the storage-level guarantee that the
// (tender, company) pair can never bid again, independent of any
// application-level existence check.
type Disqualification struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TenderID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_disqualified_pair,priority:1" json:"tender_id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_disqualified_pair,priority:2" json:"company_id"`
	BidID     uuid.UUID `gorm:"type:uuid;not null" json:"bid_id"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Disqualification) TableName() string {
	return "bid_disqualifications"
}
