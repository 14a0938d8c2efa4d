// Package preprocess normalizes raw input text into a form the
// synthesis backends handle well: plain words, expanded numbers, ASCII
// punctuation, collapsed whitespace.
package preprocess

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	urlRe        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	emailRe      = regexp.MustCompile(`\S+@\S+\.\S+`)
)

type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

func (p *Processor) Process(text string) string {
	text = norm.NFC.String(text)
	text = urlRe.ReplaceAllString(text, "")
	text = htmlTagRe.ReplaceAllString(text, "")
	text = emailRe.ReplaceAllString(text, "")
	text = expandAbbreviations(text)
	text = expandContractions(text)
	text = expandCurrency(text)
	text = expandTime(text)
	text = expandOrdinals(text)
	text = expandNumbers(text)
	text = normalizeQuotes(text)
	text = normalizePunctuation(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Titles and common abbreviations read badly when spelled out letter by
// letter, so they are expanded before synthesis.
var abbreviations = map[string]string{
	"Dr.":   "Doctor",
	"Mr.":   "Mister",
	"Mrs.":  "Missus",
	"Ms.":   "Miss",
	"Prof.": "Professor",
	"St.":   "Saint",
	"vs.":   "versus",
	"etc.":  "et cetera",
	"e.g.":  "for example",
	"i.e.":  "that is",
}

func expandAbbreviations(text string) string {
	for abbrev, expansion := range abbreviations {
		pattern := `(^|\s)` + regexp.QuoteMeta(abbrev) + `(\s|$)`
		re := regexp.MustCompile(pattern)
		text = re.ReplaceAllString(text, "${1}"+expansion+"${2}")
	}
	return text
}

var contractions = map[string]string{
	"won't":     "will not",
	"can't":     "cannot",
	"shan't":    "shall not",
	"let's":     "let us",
	"n't":       " not",
	"'re":       " are",
	"'ve":       " have",
	"'ll":       " will",
	"'m":        " am",
	"'d":        " would",
	"it's":      "it is",
	"he's":      "he is",
	"she's":     "she is",
	"that's":    "that is",
	"there's":   "there is",
	"what's":    "what is",
	"who's":     "who is",
	"isn't":     "is not",
	"aren't":    "are not",
	"wasn't":    "was not",
	"weren't":   "were not",
	"haven't":   "have not",
	"hasn't":    "has not",
	"hadn't":    "had not",
	"doesn't":   "does not",
	"don't":     "do not",
	"didn't":    "did not",
	"wouldn't":  "would not",
	"shouldn't": "should not",
	"couldn't":  "could not",
	"mustn't":   "must not",
}

// Ordered so multi-word forms win over the generic suffix rules.
var contractionOrder = []string{
	"won't", "can't", "shan't", "let's",
	"it's", "he's", "she's", "that's", "there's", "what's", "who's",
	"isn't", "aren't", "wasn't", "weren't", "haven't", "hasn't", "hadn't",
	"doesn't", "don't", "didn't", "wouldn't", "shouldn't", "couldn't",
	"mustn't",
	"n't", "'re", "'ve", "'ll", "'m", "'d",
}

func expandContractions(text string) string {
	lower := strings.ToLower(text)
	for _, contraction := range contractionOrder {
		lower = strings.ReplaceAll(lower, contraction, contractions[contraction])
	}
	if len(text) > 0 && unicode.IsUpper(rune(text[0])) {
		runes := []rune(lower)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	}
	return lower
}

func normalizeQuotes(text string) string {
	replacer := strings.NewReplacer(
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
		"«", `"`,
		"»", `"`,
	)
	return replacer.Replace(text)
}

func normalizePunctuation(text string) string {
	replacer := strings.NewReplacer(
		"—", ", ",
		"–", ", ",
		"…", "...",
		"•", ",",
	)
	return replacer.Replace(text)
}
