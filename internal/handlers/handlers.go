// Package handlers exposes the HTTP API: portfolio queries, sync
// imports, news lookups and analysis jobs.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-intel/internal/advisor"
	"portfolio-intel/internal/batch"
	"portfolio-intel/internal/ingest"
	"portfolio-intel/internal/interfaces"
	"portfolio-intel/internal/stats"
	"portfolio-intel/internal/store"
	"portfolio-intel/internal/types"
)

// Handlers bundles the dependencies behind the HTTP API.
type Handlers struct {
	store         *store.Store
	cfg           *store.Config
	fetcher       interfaces.Fetcher
	completer     interfaces.Completer
	orchestrator  *batch.Orchestrator
	advisor       *advisor.Advisor
	publicFetcher *ingest.PublicFetcher
}

// New creates the handler set.
func New(st *store.Store, cfg *store.Config, fetcher interfaces.Fetcher, completer interfaces.Completer,
	orchestrator *batch.Orchestrator, adv *advisor.Advisor, publicFetcher *ingest.PublicFetcher) *Handlers {
	return &Handlers{
		store:         st,
		cfg:           cfg,
		fetcher:       fetcher,
		completer:     completer,
		orchestrator:  orchestrator,
		advisor:       adv,
		publicFetcher: publicFetcher,
	}
}

// Register wires all routes onto the router.
func (h *Handlers) Register(r *gin.Engine) {
	r.GET("/api", h.APIInfo)
	r.GET("/holdings", h.GetHoldings)
	r.GET("/holdings/:ticker", h.GetHoldingByTicker)
	r.GET("/stats", h.GetStats)

	r.POST("/sync", h.SyncFromFile)
	r.POST("/sync/path", h.SyncFromPath)
	r.POST("/sync/public", h.SyncFromPublicURL)

	r.GET("/news/:ticker", h.GetNews)
	r.POST("/analyze-news/:ticker", h.AnalyzeNews)
	r.GET("/news-analysis/:ticker", h.GetNewsAnalysis)

	r.POST("/batch-analyze-news", h.StartBatchAnalysis)
	r.GET("/batch-analyze-news/status", h.GetBatchStatus)

	r.POST("/recommendations", h.GetRecommendations)
}

// APIInfo lists the available endpoints.
func (h *Handlers) APIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Portfolio API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"holdings":          "/holdings",
			"holding_by_ticker": "/holdings/{ticker}",
			"stats":             "/stats",
			"sync":              "/sync",
		},
	})
}

// GetHoldings returns holdings with optional filters, each annotated with
// its ticker's stored sentiment.
func (h *Handlers) GetHoldings(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	holdings, err := h.store.ListHoldings(c.Request.Context(), store.HoldingFilter{
		Skip:      skip,
		Limit:     limit,
		AssetType: c.Query("asset_type"),
		Currency:  c.Query("currency"),
		Ticker:    c.Query("ticker"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(holdings) == 0 {
		c.JSON(http.StatusOK, []types.HoldingView{})
		return
	}

	tickers := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		tickers = append(tickers, strings.ToUpper(holding.Ticker))
	}
	sentiments, err := h.store.SentimentsByTicker(c.Request.Context(), tickers)
	if err != nil {
		// Holdings are still useful without sentiment.
		sentiments = map[string]*string{}
	}

	views := make([]types.HoldingView, 0, len(holdings))
	for _, holding := range holdings {
		views = append(views, types.HoldingView{
			Holding:   holding,
			Sentiment: sentiments[strings.ToUpper(holding.Ticker)],
		})
	}
	c.JSON(http.StatusOK, views)
}

// GetHoldingByTicker returns the most recent holding for a ticker.
func (h *Handlers) GetHoldingByTicker(c *gin.Context) {
	ticker := c.Param("ticker")

	holding, err := h.store.HoldingByTicker(c.Request.Context(), ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if holding == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Holding with ticker " + ticker + " not found"})
		return
	}
	c.JSON(http.StatusOK, holding)
}

// GetStats returns aggregate portfolio statistics.
func (h *Handlers) GetStats(c *gin.Context) {
	portfolioStats, err := stats.Compute(c.Request.Context(), h.store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, portfolioStats)
}
