// Package analyzer runs the per-holding news analysis step: fetch news,
// ask the model, extract sentiment, persist the outcome.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"portfolio-intel/internal/interfaces"
	"portfolio-intel/internal/logger"
	"portfolio-intel/internal/sentiment"
	"portfolio-intel/internal/store"
	"portfolio-intel/internal/types"
)

// Analyzer analyzes one holding at a time. Failures are recorded against
// the analysis row and the batch job, never returned to the caller.
type Analyzer struct {
	store     *store.Store
	fetcher   interfaces.Fetcher
	completer interfaces.Completer
	cfg       *store.Config
}

// New creates an Analyzer.
func New(st *store.Store, fetcher interfaces.Fetcher, completer interfaces.Completer, cfg *store.Config) *Analyzer {
	return &Analyzer{store: st, fetcher: fetcher, completer: completer, cfg: cfg}
}

// Analyze processes a single holding for a batch job. It returns true when
// the analysis completed, false when it was recorded as failed.
func (a *Analyzer) Analyze(ctx context.Context, holding types.Holding, jobID uint) bool {
	ticker := strings.ToUpper(holding.Ticker)
	logger.Info(ctx, "Starting analysis", "ticker", ticker, "name", holding.Name)

	if _, err := a.store.MarkAnalysisPending(ctx, ticker, &holding.ID); err != nil {
		logger.ErrorWithErr(ctx, "Failed to mark analysis pending", err, "ticker", ticker)
		a.fail(ctx, ticker, jobID, err.Error())
		return false
	}

	articles := a.fetcher.Fetch(ctx, ticker, a.cfg.News.MaxArticles)
	if len(articles) == 0 {
		logger.Warn(ctx, "No news found", "ticker", ticker)
		a.fail(ctx, ticker, jobID, fmt.Sprintf("No recent news found for %s", ticker))
		return false
	}
	logger.Info(ctx, "Fetched news", "ticker", ticker, "articles", len(articles))

	prompt := BuildPrompt(holding, articles, a.cfg.News.PromptArticles)
	analysisText, err := a.completer.Complete(ctx, a.cfg.LLM.System, prompt)
	if err != nil {
		a.fail(ctx, ticker, jobID, err.Error())
		return false
	}

	label, ok := sentiment.Extract(analysisText)
	if !ok {
		label = sentiment.Neutral
	}
	logger.Sentiment(ctx, ticker, label, len(articles))

	if err := a.store.CompleteAnalysis(ctx, ticker, analysisText, &label, articles); err != nil {
		logger.ErrorWithErr(ctx, "Failed to save analysis", err, "ticker", ticker)
		a.fail(ctx, ticker, jobID, err.Error())
		return false
	}
	if err := a.store.RecordItemSuccess(ctx, jobID); err != nil {
		logger.ErrorWithErr(ctx, "Failed to update job counters", err, "job_id", jobID)
	}
	return true
}

func (a *Analyzer) fail(ctx context.Context, ticker string, jobID uint, msg string) {
	if err := a.store.FailAnalysis(ctx, ticker, msg); err != nil {
		logger.ErrorWithErr(ctx, "Failed to record analysis failure", err, "ticker", ticker)
	}
	if err := a.store.RecordItemFailure(ctx, jobID); err != nil {
		logger.ErrorWithErr(ctx, "Failed to update job counters", err, "job_id", jobID)
	}
}

// BuildPrompt renders the user prompt: the position details followed by a
// digest of the most recent articles.
func BuildPrompt(holding types.Holding, articles []types.Article, promptArticles int) string {
	if promptArticles <= 0 {
		promptArticles = 5
	}
	if len(articles) > promptArticles {
		articles = articles[:promptArticles]
	}

	digests := make([]string, 0, len(articles))
	for i, art := range articles {
		summary := art.Summary
		if summary == "" {
			summary = "No summary available"
		}
		source := art.Source
		if source == "" {
			source = "Unknown"
		}
		published := art.Published
		if published == "" {
			published = "Unknown"
		}
		digests = append(digests, fmt.Sprintf(
			"Article %d:\nTitle: %s\nSummary: %s\nSource: %s\nPublished: %s",
			i+1, art.Title, summary, source, published))
	}

	return fmt.Sprintf(`You are a financial analyst. Analyze the following news articles about %s (%s) and provide actionable investment recommendations.

Current Portfolio Position:
- Ticker: %s
- Company: %s
- Quantity: %g
- Average Price: %g %s
- Current Value: %g %s
- P&L: %g %s (%.2f%%)
- Share of Portfolio: %.2f%%

Recent News Articles:
%s

Please provide:
1. **Summary of News**: Brief overview of the key news and events (2-3 sentences)
2. **Sentiment Analysis**: Overall sentiment (positive/negative/neutral) with reasoning
3. **Key Risks**: Identify any risks or concerns mentioned in the news
4. **Key Opportunities**: Identify any opportunities or positive developments
5. **Action Recommendation**: Specific recommendation (Hold/Buy more/Sell/Reduce position) with reasoning
6. **Price Impact**: Expected short-term price impact based on the news
7. **Timeline**: When to review this position again

Format your response in clear markdown with headings and bullet points. Be specific and actionable.`,
		strings.ToUpper(holding.Ticker), holding.Name,
		holding.Ticker,
		holding.Name,
		holding.Qty,
		holding.AvgPrice, holding.Currency,
		holding.CurrentValue, holding.Currency,
		holding.PnlValue, holding.Currency, holding.PnlPct,
		holding.SharePct,
		strings.Join(digests, "\n\n"))
}
