// Package store is the durable home of signals. It is the sole recovery
// source after a restart: queued and pending rows are read back into the
// executor's in-memory collections on startup.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Wingseter/signal-smith-sub001/internal/signal"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// SignalStore persists signals with gorm over SQLite.
type SignalStore struct {
	db *gorm.DB
}

// NewSignalStore opens (or creates) the signal database at path.
func NewSignalStore(path string) (*SignalStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("signal store path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&SignalModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: a little parallelism for HTTP reads, low lock contention.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &SignalStore{db: db}, nil
}

// Close releases the underlying connection.
func (s *SignalStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StatusExtras carries the optional columns written together with a status
// change. Details lands in the extra_data JSON column so gate blocks and
// cancellations stay queryable on the signal row itself, not only in the
// audit stream.
type StatusExtras struct {
	OrderNo    string
	ExecutedAt *time.Time
	Reason     string
	Details    map[string]any
}

// InsertSignal writes a freshly created signal.
func (s *SignalStore) InsertSignal(ctx context.Context, sig *signal.InvestmentSignal) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("signal store not initialized")
	}
	if sig == nil || strings.TrimSpace(sig.ID) == "" {
		return fmt.Errorf("signal id required")
	}
	model := newSignalModel(sig)
	return s.db.WithContext(ctx).Create(&model).Error
}

// UpdateSignalStatus moves a row to status and applies any extras.
func (s *SignalStore) UpdateSignalStatus(ctx context.Context, id string, status signal.Status, extras StatusExtras) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("signal store not initialized")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("signal id required")
	}
	payload := map[string]any{
		"status":     string(status),
		"updated_at": time.Now().UnixMilli(),
	}
	if extras.OrderNo != "" {
		payload["order_no"] = extras.OrderNo
	}
	if extras.ExecutedAt != nil && !extras.ExecutedAt.IsZero() {
		payload["executed_at"] = extras.ExecutedAt.UnixMilli()
	}
	if extras.Reason != "" {
		payload["reason"] = extras.Reason
	}
	if len(extras.Details) > 0 {
		raw, err := json.Marshal(extras.Details)
		if err != nil {
			return fmt.Errorf("encoding status details for %s: %w", id, err)
		}
		payload["extra_data"] = datatypes.JSON(raw)
	}
	res := s.db.WithContext(ctx).Model(&SignalModel{}).Where("id = ?", id).Updates(payload)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPendingSignals returns every non-terminal row (pending and queued),
// oldest first, for startup recovery.
func (s *SignalStore) ListPendingSignals(ctx context.Context) ([]*signal.InvestmentSignal, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("signal store not initialized")
	}
	var models []SignalModel
	if err := s.db.WithContext(ctx).
		Where("status IN ?", []string{string(signal.StatusPending), string(signal.StatusQueued)}).
		Order("created_at ASC, id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*signal.InvestmentSignal, 0, len(models))
	for _, m := range models {
		out = append(out, signalModelToDomain(m))
	}
	return out, nil
}

// GetSignal returns one row by id; found=false when absent.
func (s *SignalStore) GetSignal(ctx context.Context, id string) (*signal.InvestmentSignal, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, fmt.Errorf("signal store not initialized")
	}
	var m SignalModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return signalModelToDomain(m), true, nil
}

// ListRecentSignals returns the newest rows for the API listing.
func (s *SignalStore) ListRecentSignals(ctx context.Context, limit int) ([]*signal.InvestmentSignal, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("signal store not initialized")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var models []SignalModel
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*signal.InvestmentSignal, 0, len(models))
	for _, m := range models {
		out = append(out, signalModelToDomain(m))
	}
	return out, nil
}
