package content

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/abhisek/speedlearn/internal/speed"
)

const (
	// maxWordRunes is the longest word kept intact when simplifying.
	maxWordRunes = 14

	// minSimplifiedRunes keeps very short lessons from being truncated to nothing.
	minSimplifiedRunes = 120

	elaborationMarker = "Going deeper:"
	challengeMarker   = "Challenge:"
)

// qualifiers are hedge words dropped when simplifying.
var qualifiers = map[string]bool{
	"very": true, "really": true, "quite": true, "rather": true, "somewhat": true,
	"fairly": true, "basically": true, "essentially": true, "actually": true,
	"extremely": true, "particularly": true, "relatively": true, "generally": true,
	"typically": true, "approximately": true, "significantly": true,
}

// simplifyParams controls simplification per speed.
type simplifyParams struct {
	sentencesPerParagraph int
	keep                  float64 // fraction of simplified length retained
}

var simplifyBySpeed = map[speed.Speed]simplifyParams{
	1: {sentencesPerParagraph: 1, keep: 0.6},
	2: {sentencesPerParagraph: 2, keep: 0.8},
}

// AdaptText rewrites lesson text for a speed: 1-2 simplify, 3 is unchanged,
// 4-5 append elaboration (5 also appends a challenge).
func AdaptText(text string, s speed.Speed, keyTerms []string) string {
	switch s {
	case 1, 2:
		p := simplifyBySpeed[s]
		return Simplify(text, p.sentencesPerParagraph, p.keep)
	case 4:
		return Elaborate(text, keyTerms, false)
	case 5:
		return Elaborate(text, keyTerms, true)
	default:
		return text
	}
}

// Simplify strips qualifier words, truncates very long words, breaks the
// text into short paragraphs and finally truncates the whole text to keep
// times its simplified length, at a word boundary.
func Simplify(text string, sentencesPerParagraph int, keep float64) string {
	sentences := splitSentences(text)
	for i, s := range sentences {
		sentences[i] = simplifySentence(s)
	}
	sentences = lo.Filter(sentences, func(s string, _ int) bool { return s != "" })

	var paragraphs []string
	for _, chunk := range lo.Chunk(sentences, max(sentencesPerParagraph, 1)) {
		paragraphs = append(paragraphs, strings.Join(chunk, " "))
	}
	out := strings.Join(paragraphs, "\n\n")

	n := utf8.RuneCountInString(out)
	limit := max(int(float64(n)*keep), minSimplifiedRunes)
	return truncateAtWord(out, limit)
}

// Elaborate appends an explanatory extension and optionally a challenge.
// Markers already present are not appended twice.
func Elaborate(text string, keyTerms []string, challenge bool) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(text))

	if !strings.Contains(text, elaborationMarker) {
		focus := "these ideas"
		if len(keyTerms) > 0 {
			focus = keyTerms[0]
		}
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf(
			"%s Think about how %s connects to something you have observed yourself. "+
				"Scientists test ideas like this by making a prediction, gathering evidence and checking whether the evidence agrees.",
			elaborationMarker, focus))
	}
	if challenge && !strings.Contains(text, challengeMarker) {
		b.WriteString("\n\n")
		b.WriteString(challengeMarker + " Design a simple experiment that could test one claim from this lesson. " +
			"What would you measure, and what result would show the claim is wrong?")
	}
	return b.String()
}

// Paragraphs splits text on blank lines.
func Paragraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// KeyTerms extracts up to n distinctive words (six letters or longer) in
// order of first appearance.
func KeyTerms(text string, n int) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	words = lo.Filter(words, func(w string, _ int) bool {
		return utf8.RuneCountInString(w) >= 6 && !qualifiers[w] && !stopWords[w]
	})
	words = lo.Uniq(words)
	if len(words) > n {
		words = words[:n]
	}
	return words
}

var stopWords = map[string]bool{
	"because": true, "through": true, "another": true, "between": true,
	"during": true, "without": true, "before": true, "should": true,
	"little": true, "things": true, "around": true, "inside": true,
}

func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			next := i + 1
			if next >= len(text) || text[next] == ' ' {
				out = append(out, strings.TrimSpace(text[start:next]))
				start = next
			}
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func simplifySentence(s string) string {
	fields := strings.Fields(s)
	kept := make([]string, 0, len(fields))
	for _, w := range fields {
		core := strings.ToLower(strings.TrimFunc(w, unicode.IsPunct))
		if qualifiers[core] {
			// Keep the sentence terminator if the dropped word carried it.
			if last, _ := utf8.DecodeLastRuneInString(w); isTerminator(last) && len(kept) > 0 {
				kept[len(kept)-1] += string(last)
			}
			continue
		}
		kept = append(kept, shortenWord(w))
	}
	if len(kept) == 0 {
		return ""
	}
	out := strings.Join(kept, " ")
	r, size := utf8.DecodeRuneInString(out)
	return string(unicode.ToUpper(r)) + out[size:]
}

// shortenWord truncates words longer than maxWordRunes, keeping trailing
// punctuation.
func shortenWord(w string) string {
	core := strings.TrimRightFunc(w, unicode.IsPunct)
	trail := w[len(core):]
	runes := []rune(core)
	if len(runes) <= maxWordRunes {
		return w
	}
	return string(runes[:maxWordRunes-1]) + "-" + trail
}

func truncateAtWord(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if i := strings.LastIndexAny(cut, " \n"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(cut, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSpace(r) }) + "..."
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
