package sentiment

import "testing"

func TestExtractExplicitMarkers(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"colon positive", "Overall Sentiment: Positive based on strong earnings", Positive},
		{"uppercase", "SENTIMENT: BULLISH outlook for the quarter", Positive},
		{"surrounded", "Analysts disagree, but overall sentiment: optimistic. Risks remain.", Positive},
		{"negative", "Sentiment: Negative, recommend Sell", Negative},
		{"bearish", "The sentiment bearish tone dominates coverage", Negative},
		{"neutral", "Sentiment: neutral with no strong catalysts", Neutral},
		{"mixed", "sentiment: mixed across sources", Neutral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Extract(tc.text)
			if !ok {
				t.Fatal("expected a classification")
			}
			if got != tc.want {
				t.Errorf("Extract(%q) = %s, want %s", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractActionFallback(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"buy", "Recommendation: buy more shares on the dip", Positive},
		{"increase", "Consider an increase in the position size", Positive},
		{"sell", "We advise investors to sell into strength", Negative},
		{"reduce", "It may be prudent to reduce exposure", Negative},
		{"hold", "Our view: hold the current position", Neutral},
		{"maintain", "Investors should maintain their allocation", Neutral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Extract(tc.text)
			if !ok {
				t.Fatal("expected a classification")
			}
			if got != tc.want {
				t.Errorf("Extract(%q) = %s, want %s", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractExplicitBeatsAction(t *testing.T) {
	// Explicit sentiment wins even when an opposite action verb appears.
	got, ok := Extract("Sentiment: negative. Still, some say buy the dip.")
	if !ok || got != Negative {
		t.Errorf("got %s (ok=%v), want %s", got, ok, Negative)
	}

	got, ok = Extract("Sentiment: positive overall, though some may sell to lock gains.")
	if !ok || got != Positive {
		t.Errorf("got %s (ok=%v), want %s", got, ok, Positive)
	}
}

func TestExtractNoKeywordsDefaultsNeutral(t *testing.T) {
	got, ok := Extract("The company reported quarterly results this week.")
	if !ok {
		t.Fatal("expected a classification")
	}
	if got != Neutral {
		t.Errorf("got %s, want %s", got, Neutral)
	}
}

func TestExtractEmptyText(t *testing.T) {
	if _, ok := Extract(""); ok {
		t.Error("empty text must not classify")
	}
}
