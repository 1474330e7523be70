package models

import (
	"time"

	"github.com/google/uuid"
)

type TenderStatus string

const (
	TenderDraft     TenderStatus = "DRAFT"
	TenderPublished TenderStatus = "PUBLISHED"
	TenderClosed    TenderStatus = "CLOSED"
	TenderAwarded   TenderStatus = "AWARDED"
	TenderExpired   TenderStatus = "EXPIRED"
)

// DefaultAbnormallyLowBidThreshold is the percent below estimated value at
// which a bid is flagged as abnormally low.
const DefaultAbnormallyLowBidThreshold = 20.0

type Tender struct {
	ID                        uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title                     string            `gorm:"type:text;not null" json:"title"`
	Description               string            `gorm:"type:text" json:"description"`
	Category                  string            `gorm:"type:text" json:"category"`
	OwnerCompanyID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"owner_company_id"`
	CreatedByID               uuid.UUID         `gorm:"type:uuid;not null" json:"created_by_id"`
	Status                    TenderStatus      `gorm:"type:text;not null;default:'DRAFT';index" json:"status"`
	EstimatedValue            float64           `gorm:"type:numeric" json:"estimated_value"`
	EMDAmount                 float64           `gorm:"type:numeric" json:"emd_amount"`
	AbnormallyLowBidThreshold float64           `gorm:"type:numeric;default:20" json:"abnormally_low_bid_threshold"`
	StartDate                 *time.Time        `json:"start_date,omitempty"`
	EndDate                   *time.Time        `gorm:"index" json:"end_date,omitempty"`
	BidIDs                    []uuid.UUID       `gorm:"serializer:json;type:jsonb" json:"bid_ids"`
	LatestReport              *EvaluationReport `gorm:"serializer:json;type:jsonb" json:"latest_report,omitempty"`
	CreatedAt                 time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt                 time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Tender) TableName() string {
	return "tenders"
}

// LowBidThreshold returns the configured abnormally-low threshold, falling
// back to the default when the tender predates the column.
func (t *Tender) LowBidThreshold() float64 {
	if t.AbnormallyLowBidThreshold <= 0 {
		return DefaultAbnormallyLowBidThreshold
	}
	return t.AbnormallyLowBidThreshold
}

// OpenForBidding reports whether bid drafts may be created, edited and
// submitted under this tender.
func (t *Tender) OpenForBidding() bool {
	return t.Status == TenderPublished
}

// HasBid reports whether the bid id is already linked onto the tender.
func (t *Tender) HasBid(bidID uuid.UUID) bool {
	for _, id := range t.BidIDs {
		if id == bidID {
			return true
		}
	}
	return false
}
