package phonemizer

import (
	"strings"

	"github.com/neurlang/goruut/lib"
	"github.com/neurlang/goruut/models/requests"
)

var languages = map[string]string{
	"en": "English",
	"vi": "Vietnamese",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"pt": "Portuguese",
	"it": "Italian",
}

type Phonemizer struct {
	p    *lib.Phonemizer
	lang string
}

// New creates a phonemizer for the given ISO language code. Unknown
// codes fall back to English.
func New(lang string) *Phonemizer {
	name, ok := languages[lang]
	if !ok {
		name = "English"
	}
	return &Phonemizer{
		p:    lib.NewPhonemizer(nil),
		lang: name,
	}
}

func (ph *Phonemizer) Phonemize(text string) string {
	resp := ph.p.Sentence(requests.PhonemizeSentence{
		Language: ph.lang,
		Sentence: text,
	})

	var result strings.Builder
	for i, word := range resp.Words {
		if i > 0 {
			result.WriteString(" ")
		}
		result.WriteString(word.Phonetic)
	}
	return result.String()
}

func (ph *Phonemizer) Close() error {
	return nil
}
