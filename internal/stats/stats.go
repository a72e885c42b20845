// Package stats computes aggregate portfolio views from stored holdings.
package stats

import (
	"context"
	"math"

	"portfolio-intel/internal/store"
	"portfolio-intel/internal/types"
)

// Compute aggregates all holdings into portfolio-level totals with
// per-asset-type and per-currency breakdowns. Percentages are rounded to
// one decimal place.
func Compute(ctx context.Context, st *store.Store) (*types.PortfolioStats, error) {
	holdings, err := st.AllHoldings(ctx)
	if err != nil {
		return nil, err
	}

	out := &types.PortfolioStats{
		ByAssetType:     map[string]types.TypeBreakdown{},
		ByCurrency:      map[string]types.CountBreakdown{},
		ByCurrencyValue: map[string]types.ValueBreakdown{},
	}
	if len(holdings) == 0 {
		return out, nil
	}

	var totalInvested, totalCurrent, totalPnl float64
	typeCounts := map[string]int{}
	typeValues := map[string]float64{}
	currencyCounts := map[string]int{}
	currencyValues := map[string]float64{}

	for _, h := range holdings {
		totalInvested += h.InvestedValue
		totalCurrent += h.CurrentValue
		totalPnl += h.PnlValue
		typeCounts[h.AssetType]++
		typeValues[h.AssetType] += h.CurrentValue
		currencyCounts[h.Currency]++
		currencyValues[h.Currency] += h.CurrentValue

		if out.LastSync == nil || h.AsOf.After(*out.LastSync) {
			asOf := h.AsOf
			out.LastSync = &asOf
		}
	}

	out.TotalHoldings = len(holdings)
	out.TotalInvestedValue = totalInvested
	out.TotalCurrentValue = totalCurrent
	out.TotalPnlValue = totalPnl
	if totalInvested > 0 {
		out.TotalPnlPct = totalPnl / totalInvested * 100
	}

	total := float64(len(holdings))
	for assetType, count := range typeCounts {
		out.ByAssetType[assetType] = types.TypeBreakdown{
			Count:    count,
			Value:    typeValues[assetType],
			Pct:      round1(float64(count) / total * 100),
			ValuePct: round1(pctOf(typeValues[assetType], totalCurrent)),
		}
	}
	for currency, count := range currencyCounts {
		out.ByCurrency[currency] = types.CountBreakdown{
			Count: count,
			Pct:   round1(float64(count) / total * 100),
		}
	}
	for currency, value := range currencyValues {
		out.ByCurrencyValue[currency] = types.ValueBreakdown{
			Value: value,
			Pct:   round1(pctOf(value, totalCurrent)),
		}
	}

	return out, nil
}

func pctOf(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return value / total * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
