// internal/infrastructure/database/postgres/state_store.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientState is one persisted client slot
type ClientState struct {
	Key       string     `gorm:"primaryKey;size:255" json:"key"`
	Value     []byte     `gorm:"type:bytea;not null" json:"value"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName overrides the table name
func (ClientState) TableName() string {
	return "client_states"
}

// StateStore keeps client state blobs in PostgreSQL
type StateStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewStateStore creates a postgres-backed state store
func NewStateStore(db *gorm.DB, ttl time.Duration) *StateStore {
	return &StateStore{
		db:  db,
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the blob stored under key
func (s *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	var state ClientState
	err := s.db.WithContext(ctx).
		Where("key = ? AND (expires_at IS NULL OR expires_at > ?)", key, s.now()).
		First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client state: %w", err)
	}
	return state.Value, nil
}

// Save upserts the blob under key
func (s *StateStore) Save(ctx context.Context, key string, value []byte) error {
	state := ClientState{Key: key, Value: value}
	if s.ttl > 0 {
		expiresAt := s.now().Add(s.ttl)
		state.ExpiresAt = &expiresAt
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&state).Error
	if err != nil {
		return fmt.Errorf("failed to save client state: %w", err)
	}
	return nil
}

// Delete removes the blob under key
func (s *StateStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&ClientState{}).Error
}

// PurgeExpired removes expired slots and reports how many were deleted
func (s *StateStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).
		Delete(&ClientState{})
	return result.RowsAffected, result.Error
}

// Ping checks the database connection
func (s *StateStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
