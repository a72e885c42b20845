package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-intel/internal/advisor"
	"portfolio-intel/internal/analyzer"
	"portfolio-intel/internal/batch"
	"portfolio-intel/internal/llm"
)

// GetNews fetches live news for a ticker without analyzing it.
func (h *Handlers) GetNews(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))

	articles := h.fetcher.Fetch(c.Request.Context(), ticker, h.cfg.News.MaxArticles)
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"ticker":   ticker,
		"articles": articles,
		"count":    len(articles),
	})
}

// AnalyzeNews runs a one-shot analysis for a single holding. The result is
// returned directly and never persisted.
func (h *Handlers) AnalyzeNews(c *gin.Context) {
	ctx := c.Request.Context()
	ticker := strings.ToUpper(c.Param("ticker"))

	holding, err := h.store.HoldingByTicker(ctx, ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if holding == nil {
		available, _ := h.store.AllHoldings(ctx)
		tickers := make([]string, 0, 10)
		for _, a := range available {
			if len(tickers) == 10 {
				break
			}
			tickers = append(tickers, a.Ticker)
		}
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "Holding with ticker " + ticker + " not found in portfolio. Available tickers: " + strings.Join(tickers, ", "),
		})
		return
	}

	articles := h.fetcher.Fetch(ctx, ticker, h.cfg.News.MaxArticles)
	if len(articles) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"status":  "error",
			"message": "No recent news found for " + ticker + ". Please try again later.",
		})
		return
	}

	prompt := analyzer.BuildPrompt(*holding, articles, h.cfg.News.PromptArticles)
	analysis, err := h.completer.Complete(ctx, h.cfg.LLM.System, prompt)
	if err != nil {
		completionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"ticker": ticker,
		"holding": gin.H{
			"ticker":        holding.Ticker,
			"name":          holding.Name,
			"current_value": holding.CurrentValue,
			"pnl_pct":       holding.PnlPct,
			"share_pct":     holding.SharePct,
		},
		"news_count":    len(articles),
		"news_articles": articles,
		"analysis":      analysis,
	})
}

// GetNewsAnalysis returns the saved analysis for a ticker.
func (h *Handlers) GetNewsAnalysis(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))

	analysis, err := h.store.AnalysisByTicker(c.Request.Context(), ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if analysis == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "No analysis found for " + ticker,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "success",
		"ticker":          analysis.Ticker,
		"created_at":      analysis.CreatedAt,
		"analysis_status": analysis.Status,
		"news_count":      analysis.NewsCount,
		"news_articles":   analysis.Articles(),
		"analysis":        analysis.Analysis,
		"sentiment":       analysis.Sentiment,
		"error_message":   analysis.ErrorMessage,
	})
}

// StartBatchAnalysis kicks off portfolio-wide analysis in the background.
func (h *Handlers) StartBatchAnalysis(c *gin.Context) {
	job, err := h.orchestrator.Start(c.Request.Context())
	if err != nil {
		var already *batch.ErrAlreadyRunning
		if errors.As(err, &already) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "error",
				"message": "Batch job is already running",
				"job_id":  already.JobID,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Batch analysis started",
		"job_id":  job.ID,
	})
}

// GetBatchStatus reports the most recent batch job.
func (h *Handlers) GetBatchStatus(c *gin.Context) {
	snapshot, err := h.orchestrator.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  "no_job",
			"message": "No batch job found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"job":    snapshot,
	})
}

// GetRecommendations asks the model for portfolio-level advice.
func (h *Handlers) GetRecommendations(c *gin.Context) {
	recommendations, err := h.advisor.Recommend(c.Request.Context())
	if err != nil {
		if errors.Is(err, advisor.ErrEmptyPortfolio) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "error",
				"message": "No portfolio data available. Please sync your portfolio first.",
			})
			return
		}
		completionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "success",
		"recommendations": recommendations,
	})
}

// completionError maps the LLM error taxonomy to HTTP responses.
func completionError(c *gin.Context, err error) {
	var upstream *llm.UpstreamError
	var transport *llm.TransportError
	switch {
	case errors.Is(err, llm.ErrAPIKeyMissing):
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "OPENROUTER_API_KEY environment variable is not set"})
	case errors.Is(err, llm.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"detail": "Request to AI service timed out. Please try again."})
	case errors.As(err, &transport):
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	case errors.As(err, &upstream):
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}
