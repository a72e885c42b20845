package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"portfolio-intel/internal/types"
)

// MarkAnalysisPending upserts the ticker's analysis record into the pending
// state, linking the originating holding. CreatedAt is set on first creation
// only. Returns the live record.
func (s *Store) MarkAnalysisPending(ctx context.Context, ticker string, holdingID *uint) (*types.NewsAnalysis, error) {
	ticker = strings.ToUpper(ticker)

	var rec types.NewsAnalysis
	err := s.db.WithContext(ctx).Where("ticker = ?", ticker).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = types.NewsAnalysis{
			Ticker:    ticker,
			HoldingID: holdingID,
			Status:    types.AnalysisPending,
		}
		if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return nil, err
		}
		return &rec, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"status":     types.AnalysisPending,
		"holding_id": holdingID,
	}
	if err := s.db.WithContext(ctx).Model(&rec).Updates(updates).Error; err != nil {
		return nil, err
	}
	rec.Status = types.AnalysisPending
	rec.HoldingID = holdingID
	return &rec, nil
}

// CompleteAnalysis records a successful pipeline pass: analysis text,
// sentiment, the (capped) article payload, and a cleared error message.
func (s *Store) CompleteAnalysis(ctx context.Context, ticker, analysisText string, sentiment *string, articles []types.Article) error {
	rec := types.NewsAnalysis{}
	rec.SetArticles(articles)

	return s.db.WithContext(ctx).
		Model(&types.NewsAnalysis{}).
		Where("ticker = ?", strings.ToUpper(ticker)).
		Updates(map[string]any{
			"status":        types.AnalysisCompleted,
			"news_count":    len(articles),
			"news_articles": rec.NewsArticles,
			"analysis":      analysisText,
			"sentiment":     sentiment,
			"error_message": nil,
		}).Error
}

// FailAnalysis records an unrecoverable per-ticker failure. Analysis and
// sentiment are cleared so they stay coupled to the completed state.
func (s *Store) FailAnalysis(ctx context.Context, ticker, message string) error {
	return s.db.WithContext(ctx).
		Model(&types.NewsAnalysis{}).
		Where("ticker = ?", strings.ToUpper(ticker)).
		Updates(map[string]any{
			"status":        types.AnalysisFailed,
			"analysis":      nil,
			"sentiment":     nil,
			"error_message": message,
		}).Error
}

// AnalysisByTicker returns the stored record for a ticker, or nil when none
// exists.
func (s *Store) AnalysisByTicker(ctx context.Context, ticker string) (*types.NewsAnalysis, error) {
	var rec types.NewsAnalysis
	err := s.db.WithContext(ctx).Where("ticker = ?", strings.ToUpper(ticker)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SentimentsByTicker returns the stored sentiment per uppercase ticker for
// the given set. Tickers without a record are absent from the map.
func (s *Store) SentimentsByTicker(ctx context.Context, tickers []string) (map[string]*string, error) {
	if len(tickers) == 0 {
		return map[string]*string{}, nil
	}

	upper := make([]string, 0, len(tickers))
	for _, t := range tickers {
		upper = append(upper, strings.ToUpper(t))
	}

	var records []types.NewsAnalysis
	if err := s.db.WithContext(ctx).Where("ticker IN ?", upper).Find(&records).Error; err != nil {
		return nil, err
	}

	out := make(map[string]*string, len(records))
	for _, rec := range records {
		out[strings.ToUpper(rec.Ticker)] = rec.Sentiment
	}
	return out, nil
}
