package models

import "time"

type CreateTenderRequest struct {
	Title                     string     `json:"title"`
	Description               string     `json:"description"`
	Category                  string     `json:"category"`
	EstimatedValue            float64    `json:"estimated_value"`
	EMDAmount                 float64    `json:"emd_amount"`
	AbnormallyLowBidThreshold float64    `json:"abnormally_low_bid_threshold"`
	StartDate                 *time.Time `json:"start_date,omitempty"`
	EndDate                   *time.Time `json:"end_date,omitempty"`
}

// TenderPatch is the whitelisted update set for a DRAFT tender. Nil fields
// are left untouched; no other column is reachable through an update.
type TenderPatch struct {
	Title                     *string    `json:"title,omitempty"`
	Description               *string    `json:"description,omitempty"`
	Category                  *string    `json:"category,omitempty"`
	EstimatedValue            *float64   `json:"estimated_value,omitempty"`
	EMDAmount                 *float64   `json:"emd_amount,omitempty"`
	AbnormallyLowBidThreshold *float64   `json:"abnormally_low_bid_threshold,omitempty"`
	StartDate                 *time.Time `json:"start_date,omitempty"`
	EndDate                   *time.Time `json:"end_date,omitempty"`
}

type CreateBidDraftRequest struct {
	Amount        float64       `json:"amount"`
	DeliveryDays  int           `json:"delivery_days"`
	TechnicalDocs []DocumentRef `json:"technical_docs"`
	FinancialDocs []DocumentRef `json:"financial_docs"`
	EMDProof      *EMDProof     `json:"emd_payment_proof,omitempty"`
}

// BidDraftPatch is the whitelisted update set for a DRAFT bid. Document
// lists are reconciled: previously stored refs whose ids appear in the kept
// lists survive, newly supplied refs are appended, everything else is
// dropped.
type BidDraftPatch struct {
	Amount           *float64      `json:"amount,omitempty"`
	DeliveryDays     *int          `json:"delivery_days,omitempty"`
	EMDProof         *EMDProof     `json:"emd_payment_proof,omitempty"`
	KeptTechnicalIDs *[]string     `json:"kept_technical_ids,omitempty"`
	NewTechnicalDocs []DocumentRef `json:"new_technical_docs,omitempty"`
	KeptFinancialIDs *[]string     `json:"kept_financial_ids,omitempty"`
	NewFinancialDocs []DocumentRef `json:"new_financial_docs,omitempty"`
}

type UploadResponse struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}
