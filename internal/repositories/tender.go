package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
)

type TenderRepository interface {
	Create(tender *models.Tender) error
	FindByID(id uuid.UUID) (*models.Tender, error)
	FindByStatus(status models.TenderStatus) ([]models.Tender, error)
	FindOpenPast(cutoff time.Time) ([]models.Tender, error)
	UpdateFields(id uuid.UUID, updates map[string]interface{}) error
	UpdateStatusIf(id uuid.UUID, from models.TenderStatus, updates map[string]interface{}) error
	AppendBidID(tenderID, bidID uuid.UUID) error
	SaveReport(id uuid.UUID, report *models.EvaluationReport) error
	CloseWithCascade(id uuid.UUID, from, to models.TenderStatus, updates map[string]interface{}, now time.Time) (int64, error)
	Award(tenderID, winningBidID uuid.UUID, now time.Time) error
}

type tenderRepository struct {
	db *gorm.DB
}

func NewTenderRepository(db *gorm.DB) TenderRepository {
	return &tenderRepository{db: db}
}

func (r *tenderRepository) Create(tender *models.Tender) error {
	if err := r.db.Create(tender).Error; err != nil {
		return fmt.Errorf("failed to create tender: %w", err)
	}
	return nil
}

func (r *tenderRepository) FindByID(id uuid.UUID) (*models.Tender, error) {
	var tender models.Tender
	if err := r.db.Where("id = ?", id).First(&tender).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tender: %w", err)
	}
	return &tender, nil
}

func (r *tenderRepository) FindByStatus(status models.TenderStatus) ([]models.Tender, error) {
	var tenders []models.Tender
	err := r.db.
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&tenders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tenders: %w", err)
	}
	return tenders, nil
}

// FindOpenPast returns published tenders whose end date lies before the
// cutoff. It feeds the expiry sweep.
func (r *tenderRepository) FindOpenPast(cutoff time.Time) ([]models.Tender, error) {
	var tenders []models.Tender
	err := r.db.
		Where("status = ? AND end_date IS NOT NULL AND end_date < ?", models.TenderPublished, cutoff).
		Order("end_date ASC").
		Find(&tenders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired tenders: %w", err)
	}
	return tenders, nil
}

func (r *tenderRepository) UpdateFields(id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.Model(&models.Tender{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update tender: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatusIf applies the updates only if the tender still holds the
// expected status. Zero affected rows means another writer transitioned the
// tender first.
func (r *tenderRepository) UpdateStatusIf(id uuid.UUID, from models.TenderStatus, updates map[string]interface{}) error {
	result := r.db.Model(&models.Tender{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update tender status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// AppendBidID links a bid id onto the tender's bid collection. The add is
// idempotent; the row lock keeps two concurrent submissions from dropping
// each other's id.
func (r *tenderRepository) AppendBidID(tenderID, bidID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var tender models.Tender
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", tenderID).
			First(&tender).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock tender: %w", err)
		}
		if tender.HasBid(bidID) {
			return nil
		}
		tender.BidIDs = append(tender.BidIDs, bidID)
		if err := tx.Model(&models.Tender{}).
			Where("id = ?", tenderID).
			Updates(map[string]interface{}{
				"bid_ids":    tender.BidIDs,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to link bid: %w", err)
		}
		return nil
	})
}

func (r *tenderRepository) SaveReport(id uuid.UUID, report *models.EvaluationReport) error {
	result := r.db.Model(&models.Tender{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"latest_report": report,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to cache report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CloseWithCascade transitions the tender out of its open state and rejects
// every pending bid under it in the same transaction. Used by both manual
// close and the expiry sweep.
func (r *tenderRepository) CloseWithCascade(id uuid.UUID, from, to models.TenderStatus, updates map[string]interface{}, now time.Time) (int64, error) {
	var rejected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		merged := map[string]interface{}{
			"status":     to,
			"updated_at": now,
		}
		for k, v := range updates {
			merged[k] = v
		}

		result := tx.Model(&models.Tender{}).
			Where("id = ? AND status = ?", id, from).
			Updates(merged)
		if result.Error != nil {
			return fmt.Errorf("failed to transition tender: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrStaleStatus
		}

		cascade := tx.Model(&models.Bid{}).
			Where("tender_id = ? AND status IN ?", id, models.PendingBidStatuses).
			Updates(map[string]interface{}{
				"status":     models.BidRejected,
				"updated_at": now,
			})
		if cascade.Error != nil {
			return fmt.Errorf("failed to cascade-reject bids: %w", cascade.Error)
		}
		rejected = cascade.RowsAffected
		return nil
	})
	return rejected, err
}

// Award applies the all-or-nothing award effect: tender CLOSED -> AWARDED,
// winning bid -> ACCEPTED, every other pending bid -> REJECTED. The
// conditional tender update is the race guard; exactly one concurrent caller
// can get past it.
func (r *tenderRepository) Award(tenderID, winningBidID uuid.UUID, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Tender{}).
			Where("id = ? AND status = ?", tenderID, models.TenderClosed).
			Updates(map[string]interface{}{
				"status":     models.TenderAwarded,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to transition tender: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrStaleStatus
		}

		winner := tx.Model(&models.Bid{}).
			Where("id = ? AND tender_id = ? AND status IN ?", winningBidID, tenderID, models.PendingBidStatuses).
			Updates(map[string]interface{}{
				"status":     models.BidAccepted,
				"updated_at": now,
			})
		if winner.Error != nil {
			return fmt.Errorf("failed to accept winning bid: %w", winner.Error)
		}
		if winner.RowsAffected == 0 {
			return ErrStaleStatus
		}

		losers := tx.Model(&models.Bid{}).
			Where("tender_id = ? AND id <> ? AND status IN ?", tenderID, winningBidID, models.PendingBidStatuses).
			Updates(map[string]interface{}{
				"status":     models.BidRejected,
				"updated_at": now,
			})
		if losers.Error != nil {
			return fmt.Errorf("failed to reject losing bids: %w", losers.Error)
		}
		return nil
	})
}
