package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"portfolio-intel/internal/types"
)

// HoldingFilter narrows ListHoldings results. Zero values mean "no filter";
// Limit 0 falls back to 100.
type HoldingFilter struct {
	Skip      int
	Limit     int
	AssetType string
	Currency  string
	Ticker    string // substring match
}

// ListHoldings returns holdings matching the filter.
func (s *Store) ListHoldings(ctx context.Context, f HoldingFilter) ([]types.Holding, error) {
	q := s.db.WithContext(ctx).Model(&types.Holding{})
	if f.AssetType != "" {
		q = q.Where("asset_type = ?", f.AssetType)
	}
	if f.Currency != "" {
		q = q.Where("currency = ?", f.Currency)
	}
	if f.Ticker != "" {
		q = q.Where("ticker LIKE ?", "%"+f.Ticker+"%")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var holdings []types.Holding
	if err := q.Offset(f.Skip).Limit(limit).Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

// AllHoldings returns every holding on record.
func (s *Store) AllHoldings(ctx context.Context) ([]types.Holding, error) {
	var holdings []types.Holding
	if err := s.db.WithContext(ctx).Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

// HoldingByTicker returns the most recent holding for a ticker,
// case-insensitive, or nil when none exists.
func (s *Store) HoldingByTicker(ctx context.Context, ticker string) (*types.Holding, error) {
	var h types.Holding
	err := s.db.WithContext(ctx).
		Where("UPPER(ticker) = ?", strings.ToUpper(ticker)).
		Order("as_of DESC").
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// EligibleHoldings returns holdings whose quantity exceeds epsilon;
// near-zero positions count as closed and are skipped by analysis.
func (s *Store) EligibleHoldings(ctx context.Context, epsilon float64) ([]types.Holding, error) {
	var holdings []types.Holding
	if err := s.db.WithContext(ctx).Where("qty > ?", epsilon).Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

// ReplaceHoldings atomically swaps all holdings of a source for the given set.
// Importing the same export twice therefore never duplicates rows.
func (s *Store) ReplaceHoldings(ctx context.Context, source string, holdings []types.Holding) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source = ?", source).Delete(&types.Holding{}).Error; err != nil {
			return err
		}
		if len(holdings) == 0 {
			return nil
		}
		return tx.Create(&holdings).Error
	})
}
