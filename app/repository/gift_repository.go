package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuelReschke/GiftScout/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 500

// giftRepository implements the GiftRepository interface
type giftRepository struct {
	db *gorm.DB
}

// NewGiftRepository creates a new gift repository instance
func NewGiftRepository(db *gorm.DB) GiftRepository {
	return &giftRepository{db: db}
}

func (r *giftRepository) UpsertBatch(ctx context.Context, gifts []*models.Gift) error {
	gifts = dedupeByID(gifts)
	if len(gifts) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(gifts, upsertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("upsert %d gifts: %w", len(gifts), err)
	}
	return nil
}

func (r *giftRepository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Gift{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return count, nil
}

func (r *giftRepository) FindQualifying(ctx context.Context, maxRate float64, maxLockDays int) ([]models.Gift, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	var gifts []models.Gift
	err := r.db.WithContext(ctx).
		Where("earning_rate <= ? AND money_lock_days > 0 AND money_lock_days < ?", maxRate, maxLockDays).
		Order("money_lock_days DESC").
		Order("earning_rate ASC").
		Order("id ASC").
		Find(&gifts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return gifts, nil
}

// GetByID returns nil, nil when the gift does not exist.
func (r *giftRepository) GetByID(ctx context.Context, id int64) (*models.Gift, error) {
	var gift models.Gift
	err := r.db.WithContext(ctx).First(&gift, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &gift, nil
}

func (r *giftRepository) ensureTable(ctx context.Context) error {
	if !r.db.WithContext(ctx).Migrator().HasTable(&models.Gift{}) {
		return ErrStorageUnavailable
	}
	return nil
}

// dedupeByID keeps the last occurrence of each id at the position of the first.
func dedupeByID(gifts []*models.Gift) []*models.Gift {
	index := make(map[int64]int, len(gifts))
	out := make([]*models.Gift, 0, len(gifts))
	for _, g := range gifts {
		if g == nil {
			continue
		}
		if i, ok := index[g.ID]; ok {
			out[i] = g
			continue
		}
		index[g.ID] = len(out)
		out = append(out, g)
	}
	return out
}
