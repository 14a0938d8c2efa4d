// Package chunker splits input text into synthesis-sized pieces aligned
// to sentence boundaries.
package chunker

import (
	"regexp"
	"strings"

	"github.com/sentencizer/sentencizer"
)

// DefaultMaxLen bounds chunk size in characters. Longer chunks degrade
// synthesis quality and slow down inference disproportionately.
const DefaultMaxLen = 500

var whitespaceRe = regexp.MustCompile(`\s+`)

type segmenter interface {
	Segment(text string) []string
}

type Chunker struct {
	maxLen int
	seg    segmenter
}

func New(maxLen int) *Chunker {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Chunker{
		maxLen: maxLen,
		seg:    sentencizer.NewSegmenter("en"),
	}
}

func (c *Chunker) MaxLen() int {
	return c.maxLen
}

// Split breaks text into an ordered sequence of non-empty chunks, each
// at most MaxLen characters. Splits happen at sentence boundaries where
// possible, falling back to clause punctuation and then to whitespace.
// A single word longer than MaxLen is emitted whole rather than cut
// mid-word. Blank input yields nil.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}
	if len(text) <= c.maxLen {
		return []string{text}
	}

	var pieces []string
	for _, sentence := range c.seg.Segment(text) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if len(sentence) <= c.maxLen {
			pieces = append(pieces, sentence)
			continue
		}
		pieces = append(pieces, c.splitLong(sentence)...)
	}

	return c.pack(pieces)
}

// splitLong handles a single sentence that exceeds the limit: first at
// clause punctuation, then at whitespace.
func (c *Chunker) splitLong(sentence string) []string {
	clauses := splitClauses(sentence)
	if len(clauses) == 1 {
		return c.splitWords(sentence)
	}

	var out []string
	for _, clause := range c.pack(clauses) {
		if len(clause) <= c.maxLen {
			out = append(out, clause)
			continue
		}
		out = append(out, c.splitWords(clause)...)
	}
	return out
}

func (c *Chunker) splitWords(s string) []string {
	return c.pack(strings.Fields(s))
}

// pack greedily joins pieces with single spaces without exceeding
// maxLen. A piece that alone exceeds the limit becomes its own chunk.
func (c *Chunker) pack(pieces []string) []string {
	var chunks []string
	var b strings.Builder

	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(piece)
			continue
		}
		if b.Len()+1+len(piece) <= c.maxLen {
			b.WriteByte(' ')
			b.WriteString(piece)
			continue
		}
		chunks = append(chunks, b.String())
		b.Reset()
		b.WriteString(piece)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

func splitClauses(s string) []string {
	var clauses []string
	start := 0
	for i, r := range s {
		switch r {
		case ',', ';', ':':
			clause := strings.TrimSpace(s[start : i+1])
			if clause != "" {
				clauses = append(clauses, clause)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		clauses = append(clauses, tail)
	}
	return clauses
}
