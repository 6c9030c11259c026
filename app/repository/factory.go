package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Factory owns the database handle and hands out repositories bound to it.
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// GetRepositories builds the repositories on first use.
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

func (f *Factory) GetGiftRepository() GiftRepository {
	return f.GetRepositories().Gift
}

// Ping reports whether the database still answers.
func (f *Factory) Ping(ctx context.Context) error {
	sqlDB, err := f.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool. Repositories must not be used afterwards.
func (f *Factory) Close() error {
	sqlDB, err := f.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
