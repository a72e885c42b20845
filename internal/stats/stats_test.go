package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"portfolio-intel/internal/store"
	"portfolio-intel/internal/types"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func TestComputeEmptyPortfolio(t *testing.T) {
	st := openTestStore(t)

	got, err := Compute(context.Background(), st)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got.TotalHoldings != 0 || got.TotalPnlPct != 0 || got.LastSync != nil {
		t.Errorf("empty portfolio stats = %+v", got)
	}
	if len(got.ByAssetType) != 0 || len(got.ByCurrency) != 0 {
		t.Error("breakdowns should be empty maps")
	}
}

func TestComputeTotalsAndBreakdowns(t *testing.T) {
	st := openTestStore(t)
	older := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	holdings := []types.Holding{
		{Ticker: "SBER", AsOf: newer, AssetType: "stock", Currency: "RUB",
			InvestedValue: 1000, CurrentValue: 1200, PnlValue: 200},
		{Ticker: "GAZP", AsOf: older, AssetType: "stock", Currency: "RUB",
			InvestedValue: 500, CurrentValue: 400, PnlValue: -100},
		{Ticker: "FXUS", AsOf: older, AssetType: "etf", Currency: "USD",
			InvestedValue: 500, CurrentValue: 400, PnlValue: -100},
	}
	if err := st.ReplaceHoldings(context.Background(), "test", holdings); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := Compute(context.Background(), st)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if got.TotalHoldings != 3 {
		t.Errorf("total_holdings = %d", got.TotalHoldings)
	}
	if got.TotalInvestedValue != 2000 || got.TotalCurrentValue != 2000 {
		t.Errorf("totals = %v invested, %v current", got.TotalInvestedValue, got.TotalCurrentValue)
	}
	if got.TotalPnlValue != 0 || got.TotalPnlPct != 0 {
		t.Errorf("pnl = %v (%v%%)", got.TotalPnlValue, got.TotalPnlPct)
	}
	if got.LastSync == nil || !got.LastSync.Equal(newer) {
		t.Errorf("last_sync = %v, want %v", got.LastSync, newer)
	}

	stock := got.ByAssetType["stock"]
	if stock.Count != 2 || stock.Value != 1600 || stock.Pct != 66.7 || stock.ValuePct != 80 {
		t.Errorf("stock breakdown = %+v", stock)
	}
	etf := got.ByAssetType["etf"]
	if etf.Count != 1 || etf.Pct != 33.3 || etf.ValuePct != 20 {
		t.Errorf("etf breakdown = %+v", etf)
	}

	rub := got.ByCurrency["RUB"]
	if rub.Count != 2 || rub.Pct != 66.7 {
		t.Errorf("RUB count breakdown = %+v", rub)
	}
	usd := got.ByCurrencyValue["USD"]
	if usd.Value != 400 || usd.Pct != 20 {
		t.Errorf("USD value breakdown = %+v", usd)
	}
}
