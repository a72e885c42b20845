// Package sentiment derives a coarse sentiment label from free-form LLM
// analysis text. Explicit sentiment language is more reliable than inferring
// sentiment from an action verb, so it is checked first and wins on any match.
package sentiment

import (
	"regexp"
	"strings"
)

// Sentiment labels.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

var (
	explicitPositive = regexp.MustCompile(`sentiment[:\s]*(positive|bullish|optimistic|favorable)`)
	explicitNegative = regexp.MustCompile(`sentiment[:\s]*(negative|bearish|pessimistic|unfavorable)`)
	explicitNeutral  = regexp.MustCompile(`sentiment[:\s]*(neutral|mixed)`)

	actionPositive = regexp.MustCompile(`(buy|buy more|increase|add)`)
	actionNegative = regexp.MustCompile(`(sell|reduce|decrease|exit)`)
	actionNeutral  = regexp.MustCompile(`(hold|maintain|keep)`)
)

// Extract classifies analysis text as positive, negative or neutral. It is
// total: any non-empty text yields a label, defaulting to neutral. Empty
// text returns ok=false, meaning there is nothing to classify (distinct
// from a determined neutral).
func Extract(text string) (label string, ok bool) {
	if text == "" {
		return "", false
	}

	lower := strings.ToLower(text)

	switch {
	case explicitPositive.MatchString(lower):
		return Positive, true
	case explicitNegative.MatchString(lower):
		return Negative, true
	case explicitNeutral.MatchString(lower):
		return Neutral, true
	}

	switch {
	case actionPositive.MatchString(lower):
		return Positive, true
	case actionNegative.MatchString(lower):
		return Negative, true
	case actionNeutral.MatchString(lower):
		return Neutral, true
	}

	return Neutral, true
}
