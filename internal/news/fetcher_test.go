package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func rssBody(titles ...string) string {
	items := ""
	for _, title := range titles {
		items += fmt.Sprintf(`<item>
			<title>%s</title>
			<description>&lt;a href="https://example.com"&gt;%s summary&lt;/a&gt;</description>
			<link>https://example.com/article</link>
			<pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
		</item>`, title, title)
	}
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>feed</title>` + items + `</channel></rss>`
}

func rssServer(t *testing.T, titles ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody(titles...))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPrimaryOnly(t *testing.T) {
	primary := rssServer(t, "Acme beats estimates", "Acme raises guidance")

	f := NewFetcherWithSources(5*time.Second, []FeedSource{
		{Name: "Primary", URLTemplate: primary.URL + "?s=%s"},
	})

	articles := f.Fetch(context.Background(), "acme", 10)
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Source != "Primary" {
		t.Errorf("expected source Primary, got %s", articles[0].Source)
	}
	if articles[0].Title != "Acme beats estimates" {
		t.Errorf("unexpected title %q", articles[0].Title)
	}
	if articles[0].Summary != "Acme beats estimates summary" {
		t.Errorf("expected HTML-stripped summary, got %q", articles[0].Summary)
	}
}

func TestFetchSecondaryTopUpDedupes(t *testing.T) {
	primary := rssServer(t, "Story A", "Story B")
	secondary := rssServer(t, "Story B", "Story C", "Story D")

	f := NewFetcherWithSources(5*time.Second, []FeedSource{
		{Name: "Primary", URLTemplate: primary.URL + "?s=%s"},
		{Name: "Secondary", URLTemplate: secondary.URL + "?s=%s"},
	})

	articles := f.Fetch(context.Background(), "ACME", 10)
	if len(articles) != 4 {
		t.Fatalf("expected 4 deduplicated articles, got %d", len(articles))
	}

	titles := map[string]int{}
	for _, a := range articles {
		titles[a.Title]++
	}
	if titles["Story B"] != 1 {
		t.Errorf("expected Story B exactly once, got %d", titles["Story B"])
	}
}

func TestFetchTruncatesToMax(t *testing.T) {
	primary := rssServer(t, "One", "Two", "Three", "Four", "Five")

	f := NewFetcherWithSources(5*time.Second, []FeedSource{
		{Name: "Primary", URLTemplate: primary.URL + "?s=%s"},
	})

	articles := f.Fetch(context.Background(), "ACME", 3)
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}
}

func TestFetchSecondarySkippedWhenPrimaryFull(t *testing.T) {
	primary := rssServer(t, "One", "Two")

	secondaryCalled := false
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondaryCalled = true
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody("Other"))
	}))
	defer secondary.Close()

	f := NewFetcherWithSources(5*time.Second, []FeedSource{
		{Name: "Primary", URLTemplate: primary.URL + "?s=%s"},
		{Name: "Secondary", URLTemplate: secondary.URL + "?s=%s"},
	})

	articles := f.Fetch(context.Background(), "ACME", 2)
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if secondaryCalled {
		t.Error("secondary source should not be queried when primary fills the quota")
	}
}

func TestFetchSourceFailureDegradesToEmpty(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	dead.Close() // connection refused from here on

	secondary := rssServer(t, "Fallback story")

	f := NewFetcherWithSources(2*time.Second, []FeedSource{
		{Name: "Primary", URLTemplate: dead.URL + "?s=%s"},
		{Name: "Secondary", URLTemplate: secondary.URL + "?s=%s"},
	})

	articles := f.Fetch(context.Background(), "ACME", 5)
	if len(articles) != 1 {
		t.Fatalf("expected 1 article from the surviving source, got %d", len(articles))
	}
	if articles[0].Title != "Fallback story" {
		t.Errorf("unexpected title %q", articles[0].Title)
	}

	// All sources down still yields an empty result, not an error.
	f = NewFetcherWithSources(2*time.Second, []FeedSource{
		{Name: "Primary", URLTemplate: dead.URL + "?s=%s"},
	})
	if got := f.Fetch(context.Background(), "ACME", 5); len(got) != 0 {
		t.Errorf("expected no articles from a dead source, got %d", len(got))
	}
}
