package types

import (
	"encoding/json"
	"time"
)

// Holding is one portfolio position as imported from a sync source.
// A sync replaces every row belonging to its source.
type Holding struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	AsOf          time.Time `json:"as_of"`
	Source        string    `json:"source" gorm:"index"`
	Ticker        string    `json:"ticker" gorm:"index"`
	Name          string    `json:"name"`
	Qty           float64   `json:"qty"`
	AvgPrice      float64   `json:"avg_price"`
	InvestedValue float64   `json:"invested_value"`
	CurrentValue  float64   `json:"current_value"`
	PnlValue      float64   `json:"pnl_value"`
	PnlPct        float64   `json:"pnl_pct"`
	SharePct      float64   `json:"share_pct"`
	AssetType     string    `json:"asset_type"`
	Currency      string    `json:"currency"`
}

// Article is one news item as fetched from a feed.
type Article struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Source    string `json:"source"`
}

// Analysis record statuses.
const (
	AnalysisPending   = "pending"
	AnalysisCompleted = "completed"
	AnalysisFailed    = "failed"
)

// NewsAnalysis is the persisted news-sentiment result for one ticker.
// Ticker is uppercase-normalized; at most one row exists per ticker.
// Sentiment and Analysis are set together on completion, ErrorMessage only
// on failure.
type NewsAnalysis struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Ticker       string    `json:"ticker" gorm:"uniqueIndex"`
	HoldingID    *uint     `json:"holding_id"`
	CreatedAt    time.Time `json:"created_at"`
	Status       string    `json:"status"`
	NewsCount    int       `json:"news_count"`
	NewsArticles string    `json:"-"` // JSON-serialized []Article
	Analysis     *string   `json:"analysis"`
	Sentiment    *string   `json:"sentiment"`
	ErrorMessage *string   `json:"error_message"`
}

// Articles decodes the serialized article payload. A corrupt or empty
// payload decodes to an empty list.
func (a *NewsAnalysis) Articles() []Article {
	if a.NewsArticles == "" {
		return []Article{}
	}
	var articles []Article
	if err := json.Unmarshal([]byte(a.NewsArticles), &articles); err != nil {
		return []Article{}
	}
	return articles
}

// SetArticles serializes the article payload.
func (a *NewsAnalysis) SetArticles(articles []Article) {
	if articles == nil {
		articles = []Article{}
	}
	b, _ := json.Marshal(articles)
	a.NewsArticles = string(b)
}

// Batch job statuses.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// BatchJob tracks one run of the batch analysis pipeline.
// ProcessedHoldings == SuccessfulHoldings + FailedHoldings at all times;
// the job completes even when individual tickers fail.
type BatchJob struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	CreatedAt          time.Time  `json:"created_at"`
	StartedAt          *time.Time `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	Status             string     `json:"status"`
	TotalHoldings      int        `json:"total_holdings"`
	ProcessedHoldings  int        `json:"processed_holdings"`
	SuccessfulHoldings int        `json:"successful_holdings"`
	FailedHoldings     int        `json:"failed_holdings"`
	ErrorMessage       *string    `json:"error_message"`
}

// JobSnapshot is the status-endpoint view of a batch job.
type JobSnapshot struct {
	ID                 uint       `json:"id"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	StartedAt          *time.Time `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	TotalHoldings      int        `json:"total_holdings"`
	ProcessedHoldings  int        `json:"processed_holdings"`
	SuccessfulHoldings int        `json:"successful_holdings"`
	FailedHoldings     int        `json:"failed_holdings"`
	ErrorMessage       *string    `json:"error_message"`
	ProgressPct        float64    `json:"progress_pct"`
}

// HoldingView is a holding annotated with its ticker's stored sentiment.
type HoldingView struct {
	Holding
	Sentiment *string `json:"sentiment"`
}

// TypeBreakdown aggregates holdings that share an asset type.
type TypeBreakdown struct {
	Count    int     `json:"count"`
	Value    float64 `json:"value"`
	Pct      float64 `json:"pct"`
	ValuePct float64 `json:"value_pct"`
}

// CountBreakdown aggregates holding counts per currency.
type CountBreakdown struct {
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

// ValueBreakdown aggregates current value per currency.
type ValueBreakdown struct {
	Value float64 `json:"value"`
	Pct   float64 `json:"pct"`
}

// PortfolioStats is the aggregate view of the whole portfolio.
type PortfolioStats struct {
	TotalHoldings      int                       `json:"total_holdings"`
	TotalInvestedValue float64                   `json:"total_invested_value"`
	TotalCurrentValue  float64                   `json:"total_current_value"`
	TotalPnlValue      float64                   `json:"total_pnl_value"`
	TotalPnlPct        float64                   `json:"total_pnl_pct"`
	LastSync           *time.Time                `json:"last_sync"`
	ByAssetType        map[string]TypeBreakdown  `json:"by_asset_type"`
	ByCurrency         map[string]CountBreakdown `json:"by_currency"`
	ByCurrencyValue    map[string]ValueBreakdown `json:"by_currency_value"`
}

// SyncResult reports the outcome of a holdings sync.
type SyncResult struct {
	Status  string     `json:"status"`
	Count   int        `json:"count"`
	AsOf    *time.Time `json:"as_of,omitempty"`
	Source  string     `json:"source"`
	Message string     `json:"message,omitempty"`
}
