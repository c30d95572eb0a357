package language

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cesare-chatbot/internal/domain/model"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		text string
		want model.Lang
	}{
		{"italian question", "Quando si svolge il rally?", model.LangItalian},
		{"english question", "When does the rally start?", model.LangEnglish},
		{"two english markers", "what time", model.LangEnglish},
		{"single cognate stays italian", "ho comprato un ticket", model.LangItalian},
		{"empty", "", model.LangItalian},
		{"punctuation stripped", "Where is the start?", model.LangEnglish},
		{"mixed case", "HOW MUCH is the ticket?", model.LangEnglish},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Detect(tc.text))
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	const msg = "dove posso comprare i biglietti?"
	first := Detect(msg)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Detect(msg))
	}
}
