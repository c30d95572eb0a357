// Package language classifies incoming messages as Italian or English.
//
// The detector is a stopword-frequency heuristic, not a classifier: a message
// containing at least two tokens from a fixed English word list is tagged "en",
// everything else "it". Short Italian messages containing English cognates can
// misfire; that trade-off is accepted.
package language

import (
	"strings"

	"cesare-chatbot/internal/domain/model"
)

// englishMarkers are common English stopwords plus business terms that show up
// in visitor questions (tickets, schedule, parking).
var englishMarkers = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "is", "are", "was", "were", "what", "when", "where", "which",
		"who", "how", "why", "can", "could", "would", "should", "do", "does",
		"did", "will", "have", "has", "had", "you", "your", "there", "this",
		"that", "with", "from", "about", "please", "thanks", "thank", "hello",
		"hi", "much", "many", "time", "event", "ticket", "tickets", "price",
		"cost", "free", "parking", "schedule", "start", "open", "race", "cars",
	} {
		englishMarkers[w] = struct{}{}
	}
}

// Detect tags text as Italian or English. Deterministic and side-effect free.
func Detect(text string) model.Lang {
	hits := 0
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,;:!?\"'()[]")
		if _, ok := englishMarkers[tok]; ok {
			hits++
			if hits >= 2 {
				return model.LangEnglish
			}
		}
	}
	return model.LangItalian
}
