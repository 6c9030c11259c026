package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/GiftScout/app/models"
	"gorm.io/gorm"
)

// ErrStorageUnavailable is returned when the gifts table is missing or the
// database cannot be reached.
var ErrStorageUnavailable = errors.New("repository: storage unavailable")

// GiftRepository defines the interface for gift-related database operations
type GiftRepository interface {
	// UpsertBatch replaces every given gift by id in one transaction.
	UpsertBatch(ctx context.Context, gifts []*models.Gift) error
	Count(ctx context.Context) (int64, error)
	// FindQualifying returns gifts with earning_rate <= maxRate and
	// 0 < money_lock_days < maxLockDays.
	FindQualifying(ctx context.Context, maxRate float64, maxLockDays int) ([]models.Gift, error)
	GetByID(ctx context.Context, id int64) (*models.Gift, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Gift GiftRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Gift: NewGiftRepository(db),
	}
}
