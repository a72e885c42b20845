package advisor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"portfolio-intel/internal/store"
	"portfolio-intel/internal/types"
)

type captureCompleter struct {
	system string
	user   string
	text   string
	err    error
}

func (c *captureCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	c.system = systemPrompt
	c.user = userPrompt
	return c.text, c.err
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func TestRecommendEmptyPortfolio(t *testing.T) {
	st := openTestStore(t)
	a := New(st, &captureCompleter{text: "unused"})

	_, err := a.Recommend(context.Background())
	if !errors.Is(err, ErrEmptyPortfolio) {
		t.Errorf("expected ErrEmptyPortfolio, got %v", err)
	}
}

func TestRecommendBuildsPortfolioPrompt(t *testing.T) {
	st := openTestStore(t)
	holdings := []types.Holding{
		{Ticker: "SBER", Name: "Sberbank", AssetType: "stock", Currency: "RUB",
			Qty: 100, InvestedValue: 1000, CurrentValue: 1500, PnlValue: 500, PnlPct: 50, SharePct: 75},
		{Ticker: "FXUS", Name: "US Equity ETF", AssetType: "etf", Currency: "USD",
			Qty: 10, InvestedValue: 600, CurrentValue: 500, PnlValue: -100, PnlPct: -16.7, SharePct: 25},
	}
	if err := st.ReplaceHoldings(context.Background(), "test", holdings); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := &captureCompleter{text: "- Diversify beyond a single stock."}
	a := New(st, c)

	got, err := a.Recommend(context.Background())
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got != c.text {
		t.Errorf("recommendations = %q", got)
	}
	if !strings.Contains(c.system, "financial advisor") {
		t.Errorf("system prompt = %q", c.system)
	}
	if !strings.Contains(c.user, "Total Holdings: 2") {
		t.Error("prompt missing holdings total")
	}
	if !strings.Contains(c.user, "Total Invested: 1600.00 RUB") {
		t.Error("prompt missing invested total")
	}
	if !strings.Contains(c.user, `"ticker": "SBER"`) {
		t.Error("prompt missing top holdings JSON")
	}
	// Largest position listed first.
	if strings.Index(c.user, "SBER") > strings.Index(c.user, "FXUS") {
		t.Error("top holdings should be ordered by value descending")
	}
}

func TestRecommendPassesCompleterErrorThrough(t *testing.T) {
	st := openTestStore(t)
	if err := st.ReplaceHoldings(context.Background(), "test", []types.Holding{
		{Ticker: "SBER", Qty: 1, Currency: "RUB"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	wantErr := errors.New("upstream exploded")
	a := New(st, &captureCompleter{err: wantErr})

	_, err := a.Recommend(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want passthrough", err)
	}
}
