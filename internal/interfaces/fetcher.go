package interfaces

import (
	"context"

	"portfolio-intel/internal/types"
)

// Fetcher retrieves recent news articles for a ticker. Implementations are
// best-effort: source failures degrade to fewer or zero articles, never an
// error.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string, maxArticles int) []types.Article
}
