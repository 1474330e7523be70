package models

import (
	"time"

	"github.com/google/uuid"
)

// DocType classifies an uploaded file within the two-envelope workflow.
const (
	DocTypeTechnical  = "technical"
	DocTypeFinancial  = "financial"
	DocTypeEMDReceipt = "emd_receipt"
)

// Document is the stored record of an uploaded file. The returned
// DocumentRef (url, id, name) is what callers embed verbatim into bid
// envelope lists.
type Document struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Filename         string    `gorm:"type:text" json:"filename"`
	OriginalFileName string    `gorm:"type:text" json:"original_filename"`
	DocType          string    `gorm:"type:text;index" json:"doc_type"`
	FilePath         string    `gorm:"type:text" json:"file_path"`
	URL              string    `gorm:"type:text" json:"url"`
	UploadedByID     uuid.UUID `gorm:"type:uuid" json:"uploaded_by_id"`
	CreatedAt        time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt        time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (d *Document) TableName() string {
	return "documents"
}

// Ref returns the reference embedded into envelope document lists.
func (d *Document) Ref() DocumentRef {
	return DocumentRef{URL: d.URL, ID: d.ID.String(), Name: d.OriginalFileName}
}
