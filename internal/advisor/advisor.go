// Package advisor generates portfolio-level recommendations from the
// aggregate holdings picture.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"portfolio-intel/internal/interfaces"
	"portfolio-intel/internal/stats"
	"portfolio-intel/internal/store"
	"portfolio-intel/internal/types"
)

const systemPrompt = "You are an experienced financial advisor specializing in portfolio analysis and investment recommendations. Provide clear, actionable advice."

// ErrEmptyPortfolio reports a recommendations request against an empty
// portfolio.
var ErrEmptyPortfolio = errors.New("no holdings found in portfolio")

// Advisor asks the model for portfolio-wide recommendations.
type Advisor struct {
	store     *store.Store
	completer interfaces.Completer
}

// New creates an Advisor.
func New(st *store.Store, completer interfaces.Completer) *Advisor {
	return &Advisor{store: st, completer: completer}
}

type typeDistribution struct {
	Count      int     `json:"count"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type currencyDistribution struct {
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type topHolding struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	AssetType    string  `json:"asset_type"`
	Currency     string  `json:"currency"`
	Quantity     float64 `json:"quantity"`
	CurrentValue float64 `json:"current_value"`
	PnlPct       float64 `json:"pnl_pct"`
	SharePct     float64 `json:"share_pct"`
}

// Recommend produces recommendations for the current portfolio. The
// completer's error taxonomy passes through untouched so callers can map
// timeouts and transport failures to the right responses.
func (a *Advisor) Recommend(ctx context.Context) (string, error) {
	holdings, err := a.store.AllHoldings(ctx)
	if err != nil {
		return "", err
	}
	if len(holdings) == 0 {
		return "", ErrEmptyPortfolio
	}

	summary, err := stats.Compute(ctx, a.store)
	if err != nil {
		return "", err
	}

	prompt := buildPrompt(summary, holdings)
	return a.completer.Complete(ctx, systemPrompt, prompt)
}

func buildPrompt(summary *types.PortfolioStats, holdings []types.Holding) string {
	typeDist := make(map[string]typeDistribution, len(summary.ByAssetType))
	for assetType, b := range summary.ByAssetType {
		typeDist[assetType] = typeDistribution{Count: b.Count, Value: b.Value, Percentage: b.ValuePct}
	}
	currencyDist := make(map[string]currencyDistribution, len(summary.ByCurrencyValue))
	for currency, b := range summary.ByCurrencyValue {
		currencyDist[currency] = currencyDistribution{Value: b.Value, Percentage: b.Pct}
	}

	sorted := make([]types.Holding, len(holdings))
	copy(sorted, holdings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CurrentValue > sorted[j].CurrentValue
	})
	if len(sorted) > 10 {
		sorted = sorted[:10]
	}
	top := make([]topHolding, 0, len(sorted))
	for _, h := range sorted {
		top = append(top, topHolding{
			Ticker:       h.Ticker,
			Name:         h.Name,
			AssetType:    h.AssetType,
			Currency:     h.Currency,
			Quantity:     h.Qty,
			CurrentValue: h.CurrentValue,
			PnlPct:       h.PnlPct,
			SharePct:     h.SharePct,
		})
	}

	typeJSON, _ := json.MarshalIndent(typeDist, "", "  ")
	currencyJSON, _ := json.MarshalIndent(currencyDist, "", "  ")
	topJSON, _ := json.MarshalIndent(top, "", "  ")

	return fmt.Sprintf(`You are a financial advisor analyzing a portfolio. Based on the following portfolio data, provide actionable recommendations.

Portfolio Summary:
- Total Holdings: %d
- Total Invested: %.2f RUB
- Current Value: %.2f RUB
- Total P&L: %.2f RUB (%.2f%%)

Asset Type Distribution:
%s

Currency Distribution:
%s

Top 10 Holdings by Value:
%s

Please provide:
1. Overall portfolio assessment (2-3 sentences)
2. Diversification analysis and recommendations
3. Risk assessment
4. Specific actionable recommendations (3-5 items)
5. Areas of concern or opportunities

Format your response in clear, concise bullet points. Be specific and actionable.`,
		summary.TotalHoldings,
		summary.TotalInvestedValue,
		summary.TotalCurrentValue,
		summary.TotalPnlValue, summary.TotalPnlPct,
		typeJSON, currencyJSON, topJSON)
}
