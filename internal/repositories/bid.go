package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
)

type BidRepository interface {
	Create(bid *models.Bid) error
	FindByID(id uuid.UUID) (*models.Bid, error)
	FindByTender(tenderID uuid.UUID) ([]models.Bid, error)
	FindDraft(tenderID, companyID uuid.UUID) (*models.Bid, error)
	IsDisqualified(tenderID, companyID uuid.UUID) (bool, error)
	Save(bid *models.Bid) error
	UpdateStatusIf(id uuid.UUID, from []models.BidStatus, updates map[string]interface{}) error
	Withdraw(bid *models.Bid, actorID uuid.UUID, now time.Time) error
	DeleteDraft(id uuid.UUID) error
}

type bidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) BidRepository {
	return &bidRepository{db: db}
}

func (r *bidRepository) Create(bid *models.Bid) error {
	if err := r.db.Create(bid).Error; err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

func (r *bidRepository) FindByID(id uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	if err := r.db.Where("id = ?", id).First(&bid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bid: %w", err)
	}
	return &bid, nil
}

// FindByTender returns all bids under a tender in creation order. The
// evaluation engine relies on this ordering for stable tie-breaking.
func (r *bidRepository) FindByTender(tenderID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.
		Where("tender_id = ?", tenderID).
		Order("created_at ASC").
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return bids, nil
}

func (r *bidRepository) FindDraft(tenderID, companyID uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.
		Where("tender_id = ? AND bidder_company_id = ? AND status = ?",
			tenderID, companyID, models.BidDraft).
		First(&bid).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find draft: %w", err)
	}
	return &bid, nil
}

func (r *bidRepository) IsDisqualified(tenderID, companyID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Disqualification{}).
		Where("tender_id = ? AND company_id = ?", tenderID, companyID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check disqualification: %w", err)
	}
	return count > 0, nil
}

func (r *bidRepository) Save(bid *models.Bid) error {
	bid.UpdatedAt = time.Now()
	if err := r.db.Save(bid).Error; err != nil {
		return fmt.Errorf("failed to save bid: %w", err)
	}
	return nil
}

// UpdateStatusIf applies the updates only while the bid still holds one of
// the expected statuses.
func (r *bidRepository) UpdateStatusIf(id uuid.UUID, from []models.BidStatus, updates map[string]interface{}) error {
	result := r.db.Model(&models.Bid{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update bid status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// Withdraw moves the bid to WITHDRAWN and writes the disqualification ledger
// row in the same transaction. The ledger's unique index makes the
// disqualification permanent at the storage level.
func (r *bidRepository) Withdraw(bid *models.Bid, actorID uuid.UUID, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Bid{}).
			Where("id = ? AND status <> ?", bid.ID, models.BidWithdrawn).
			Updates(map[string]interface{}{
				"status":          models.BidWithdrawn,
				"withdrawn_at":    now,
				"withdrawn_by_id": actorID,
				"updated_at":      now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to withdraw bid: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrStaleStatus
		}

		record := models.Disqualification{
			TenderID:  bid.TenderID,
			CompanyID: bid.BidderCompanyID,
			BidID:     bid.ID,
		}
		err := tx.Where("tender_id = ? AND company_id = ?", bid.TenderID, bid.BidderCompanyID).
			FirstOrCreate(&record).Error
		if err != nil {
			return fmt.Errorf("failed to record disqualification: %w", err)
		}
		return nil
	})
}

// DeleteDraft removes the bid only while it is still a draft. A submitted
// bid must be withdrawn, never deleted.
func (r *bidRepository) DeleteDraft(id uuid.UUID) error {
	result := r.db.
		Where("id = ? AND status = ?", id, models.BidDraft).
		Delete(&models.Bid{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete draft: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
