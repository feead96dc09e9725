package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one persisted key-value pair
type Entry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName keeps the table name stable regardless of naming strategy
func (Entry) TableName() string {
	return "cart_entries"
}

// GormStore keeps entries in a SQL table through gorm
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the entry table and returns a store on db
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate cart_entries: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Get returns the value stored under key
func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

// Set upserts value under key. Concurrent writers of one key are last-write-wins.
func (s *GormStore) Set(ctx context.Context, key, value string) error {
	return upsert(s.db.WithContext(ctx), key, value)
}

// Delete removes key; deleting a missing key is not an error
func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error
}

// Apply sets and deletes several keys in one transaction
func (s *GormStore) Apply(ctx context.Context, set map[string]string, del []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range set {
			if err := upsert(tx, key, value); err != nil {
				return err
			}
		}
		if len(del) > 0 {
			if err := tx.Where("entry_key IN ?", del).Delete(&Entry{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(db *gorm.DB, key, value string) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

// Ping checks that the database answers
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
