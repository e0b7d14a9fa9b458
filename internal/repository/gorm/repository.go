package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/models"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertSignal(ctx context.Context, item *models.Signal) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) FindPendingBySignalID(ctx context.Context, ticker, signalID string) (*models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, repository.ErrSignalNotFound
	}
	var item models.Signal
	err := s.db.WithContext(ctx).
		Where("ticker = ?", strings.ToUpper(strings.TrimSpace(ticker))).
		Where("signal_id = ?", strings.TrimSpace(signalID)).
		Where("result = ?", models.ResultPending).
		Order("created_at desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSignalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) FindLatestPending(ctx context.Context, ticker string) (*models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, repository.ErrSignalNotFound
	}
	var item models.Signal
	err := s.db.WithContext(ctx).
		Where("ticker = ?", strings.ToUpper(strings.TrimSpace(ticker))).
		Where("result = ?", models.ResultPending).
		Order("created_at desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSignalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CloseSignal is the one write that must be race-safe: two concurrent closes
// for the same row both reach here, the result='PENDING' guard lets exactly
// one of them win.
func (s *Store) CloseSignal(ctx context.Context, id uint64, closePrice, pips decimal.Decimal, result string, closedAt time.Time) (int64, error) {
	if s == nil || s.db == nil || id == 0 {
		return 0, nil
	}
	if closedAt.IsZero() {
		closedAt = time.Now().UTC()
	}
	res := s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Where("id = ?", id).
		Where("result = ?", models.ResultPending).
		Updates(map[string]any{
			"close_price": closePrice,
			"result":      result,
			"pips":        pips,
			"closed_at":   closedAt,
			"updated_at":  time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (s *Store) MarkStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Where("result = ?", models.ResultPending)
	if !olderThan.IsZero() {
		query = query.Where("created_at < ?", olderThan)
	}
	res := query.Updates(map[string]any{
		"result":     models.ResultOutdated,
		"updated_at": time.Now().UTC(),
	})
	return res.RowsAffected, res.Error
}

func (s *Store) ListSignals(ctx context.Context, params repository.ListSignalsParams) ([]models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applySignalFilters(s.db.WithContext(ctx).Model(&models.Signal{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Signal
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSignals(ctx context.Context, params repository.ListSignalsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applySignalFilters(s.db.WithContext(ctx).Model(&models.Signal{}), params)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applySignalFilters(query *gorm.DB, params repository.ListSignalsParams) *gorm.DB {
	if params.Ticker != nil && strings.TrimSpace(*params.Ticker) != "" {
		query = query.Where("ticker = ?", strings.ToUpper(strings.TrimSpace(*params.Ticker)))
	}
	if params.Result != nil && strings.TrimSpace(*params.Result) != "" {
		query = query.Where("result = ?", strings.ToUpper(strings.TrimSpace(*params.Result)))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
