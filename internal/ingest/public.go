package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"portfolio-intel/internal/api"
	"portfolio-intel/internal/logger"
	"portfolio-intel/internal/store"
	"portfolio-intel/internal/types"
)

// SourcePublic marks holdings scraped from a public portfolio page.
const SourcePublic = "intellinvest_public"

var (
	portfolioIDRe = regexp.MustCompile(`/public-portfolio/(\d+)`)
	tickerRe      = regexp.MustCompile(`ticker:\s*"([A-Z0-9.]+)"`)
	nameRe        = regexp.MustCompile(`(?:name|shortname):\s*"([^"]+)"`)
	qtyRe         = regexp.MustCompile(`(?:qty|quantity|openPositionQty):\s*([\d.]+)`)
	costRe        = regexp.MustCompile(`(?:currCost|currentValue):\s*"([^"]+)"`)
	numberRe      = regexp.MustCompile(`[\d.]+`)
)

var usTickers = map[string]bool{
	"AAPL": true, "MSFT": true, "GOOGL": true, "GOOG": true, "AMZN": true,
	"TSLA": true, "META": true, "NVDA": true, "NFLX": true, "LRN": true,
	"SPY": true, "QQQ": true, "VTI": true, "VOO": true,
}

var cryptoTickers = map[string]bool{
	"BTC": true, "ETH": true, "TON": true, "USDT": true, "BNB": true,
	"XLM": true, "ADA": true, "SOL": true, "DOGE": true,
}

// PublicFetcher scrapes holdings from public portfolio pages. The pages
// embed their data in minified scripts, so extraction is pattern-based
// with an HTML-table fallback.
type PublicFetcher struct {
	client *api.Client
}

// NewPublicFetcher creates a scraper with browser-like headers.
func NewPublicFetcher() *PublicFetcher {
	return &PublicFetcher{
		client: api.NewClient(
			api.WithTimeout(30*time.Second),
			api.WithLogging(true),
		),
	}
}

// ExtractPortfolioID pulls the numeric portfolio id out of a public
// portfolio URL, or returns "" when the URL has none.
func ExtractPortfolioID(url string) string {
	m := portfolioIDRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// Fetch downloads and parses the page at url into holdings.
func (f *PublicFetcher) Fetch(ctx context.Context, url string) ([]types.Holding, error) {
	resp, err := f.client.GETWithRetry(ctx, url, nil, api.BrowserHeaders())
	if err != nil {
		return nil, fmt.Errorf("error fetching portfolio data: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("error parsing portfolio page: %w", err)
	}

	asOf := time.Now()
	var holdings []types.Holding

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		script := s.Text()
		if !strings.Contains(script, "ticker") {
			return true
		}
		holdings = parseHoldingsFromScript(script, asOf)
		return len(holdings) == 0
	})

	if len(holdings) == 0 {
		holdings = parseHoldingsFromTables(doc, asOf)
	}

	return holdings, nil
}

// parseHoldingsFromScript extracts holdings from embedded JavaScript. The
// data is minified, so tickers, names, quantities and values are collected
// separately and matched by position.
func parseHoldingsFromScript(script string, asOf time.Time) []types.Holding {
	tickers := dedupe(captureAll(tickerRe, script))
	names := captureAll(nameRe, script)
	quantities := captureAll(qtyRe, script)
	costs := captureAll(costRe, script)

	var holdings []types.Holding
	for i, ticker := range tickers {
		if len(ticker) < 2 {
			continue
		}
		h := types.Holding{
			AsOf:      asOf,
			Source:    SourcePublic,
			Ticker:    ticker,
			AssetType: "unknown",
			Currency:  currencyForTicker(ticker),
		}
		if i < len(names) {
			h.Name = strings.TrimSpace(names[i])
		}
		if i < len(quantities) {
			h.Qty, _ = strconv.ParseFloat(quantities[i], 64)
		}
		if i < len(costs) {
			h.CurrentValue = parseCurrency(costs[i])
		}
		holdings = append(holdings, h)
	}
	return holdings
}

// parseHoldingsFromTables reads holdings out of an HTML table whose header
// mentions tickers (Russian or English).
func parseHoldingsFromTables(doc *goquery.Document, asOf time.Time) []types.Holding {
	var holdings []types.Holding

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header := strings.ToLower(table.Find("tr").First().Text())
		if !strings.Contains(header, "тикер") && !strings.Contains(header, "ticker") {
			return true
		}

		table.Find("tr").Each(func(row int, tr *goquery.Selection) {
			if row == 0 {
				return
			}
			cells := tr.Find("td, th").Map(func(_ int, td *goquery.Selection) string {
				return strings.TrimSpace(td.Text())
			})
			if len(cells) < 3 || cells[0] == "" {
				return
			}
			ticker := cells[0]
			holdings = append(holdings, types.Holding{
				AsOf:      asOf,
				Source:    SourcePublic,
				Ticker:    ticker,
				Name:      cells[1],
				Qty:       number(cells[2]),
				AssetType: "unknown",
				Currency:  currencyForTicker(ticker),
			})
		})
		return false
	})

	return holdings
}

// SyncFromPublicURL scrapes the page at url and replaces all previously
// scraped holdings with the new set.
func SyncFromPublicURL(ctx context.Context, st *store.Store, fetcher *PublicFetcher, url string) (*types.SyncResult, error) {
	holdings, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return &types.SyncResult{
			Status:  "error",
			Message: "No holdings found in public portfolio. The page structure may have changed or data is not accessible. Please try exporting the portfolio and using the file upload instead.",
			Source:  SourcePublic,
		}, nil
	}

	if err := st.ReplaceHoldings(ctx, SourcePublic, holdings); err != nil {
		return nil, err
	}

	asOf := holdings[0].AsOf
	logger.Info(ctx, "Portfolio synced", "source", SourcePublic, "holdings", len(holdings), "url", url)
	return &types.SyncResult{
		Status: "success",
		Count:  len(holdings),
		AsOf:   &asOf,
		Source: SourcePublic,
	}, nil
}

func captureAll(re *regexp.Regexp, s string) []string {
	matches := re.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// currencyForTicker guesses an instrument's base currency from its symbol.
func currencyForTicker(ticker string) string {
	upper := strings.ToUpper(ticker)
	switch {
	case usTickers[upper], cryptoTickers[upper]:
		return "USD"
	case strings.HasSuffix(upper, ".ME"), strings.HasSuffix(upper, ".RM"), strings.HasSuffix(upper, ".RT"):
		return "RUB"
	case strings.HasSuffix(upper, ".DE"), strings.HasSuffix(upper, ".FR"),
		strings.HasSuffix(upper, ".NL"), strings.HasSuffix(upper, ".IT"), strings.HasSuffix(upper, ".ES"):
		return "EUR"
	case strings.Contains(upper, "USD"):
		return "USD"
	case strings.Contains(upper, "EUR"):
		return "EUR"
	default:
		return "RUB"
	}
}

// parseCurrency reads the numeric part of a value like "RUB 1234.56".
func parseCurrency(value string) float64 {
	m := numberRe.FindString(value)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}
