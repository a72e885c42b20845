package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"portfolio-intel/internal/store"
)

const scriptPage = `<html><head><script>
var data = {rows:[
{ticker:"SBER",name:"Sberbank",quantity:100,currCost:"RUB 27000.50"},
{ticker:"AAPL",name:"Apple Inc",quantity:5,currCost:"USD 900"},
{ticker:"SBER",name:"duplicate entry"}
]};
</script></head><body></body></html>`

const tablePage = `<html><body><table>
<tr><th>Тикер</th><th>Название</th><th>Количество</th></tr>
<tr><td>GAZP</td><td>Газпром</td><td>50</td></tr>
<tr><td>BTC</td><td>Bitcoin</td><td>0,5</td></tr>
</table></body></html>`

func servePage(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestExtractPortfolioID(t *testing.T) {
	if got := ExtractPortfolioID("https://intelinvest.ru/public-portfolio/757008/"); got != "757008" {
		t.Errorf("id = %q", got)
	}
	if got := ExtractPortfolioID("https://example.com/other"); got != "" {
		t.Errorf("id = %q, want empty", got)
	}
}

func TestFetchFromEmbeddedScript(t *testing.T) {
	url := servePage(t, scriptPage)
	f := NewPublicFetcher()

	holdings, err := f.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(holdings) != 2 {
		t.Fatalf("got %d holdings, want 2 (duplicate ticker dropped)", len(holdings))
	}

	sber := holdings[0]
	if sber.Ticker != "SBER" || sber.Name != "Sberbank" || sber.Qty != 100 {
		t.Errorf("first holding = %+v", sber)
	}
	if sber.CurrentValue != 27000.50 {
		t.Errorf("current value = %v", sber.CurrentValue)
	}
	if sber.Currency != "RUB" {
		t.Errorf("SBER currency = %q", sber.Currency)
	}
	if holdings[1].Currency != "USD" {
		t.Errorf("AAPL currency = %q", holdings[1].Currency)
	}
	if sber.Source != SourcePublic {
		t.Errorf("source = %q", sber.Source)
	}
}

func TestFetchFallsBackToTable(t *testing.T) {
	url := servePage(t, tablePage)
	f := NewPublicFetcher()

	holdings, err := f.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(holdings) != 2 {
		t.Fatalf("got %d holdings, want 2", len(holdings))
	}
	if holdings[0].Ticker != "GAZP" || holdings[0].Qty != 50 {
		t.Errorf("first row = %+v", holdings[0])
	}
	if holdings[1].Qty != 0.5 {
		t.Errorf("comma decimal parsed as %v", holdings[1].Qty)
	}
	if holdings[1].Currency != "USD" {
		t.Errorf("BTC currency = %q", holdings[1].Currency)
	}
}

func TestSyncFromPublicURLEmptyPage(t *testing.T) {
	url := servePage(t, "<html><body>nothing here</body></html>")
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	res, err := SyncFromPublicURL(context.Background(), st, NewPublicFetcher(), url)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Status != "error" || res.Count != 0 {
		t.Errorf("result = %+v, want error status", res)
	}
}

func TestSyncFromPublicURLStores(t *testing.T) {
	url := servePage(t, scriptPage)
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	res, err := SyncFromPublicURL(context.Background(), st, NewPublicFetcher(), url)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Status != "success" || res.Count != 2 {
		t.Fatalf("result = %+v", res)
	}

	all, err := st.AllHoldings(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("stored = %d holdings", len(all))
	}
}
