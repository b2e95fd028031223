// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lexical

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Tokenizer turns raw text into vocabulary terms.
type Tokenizer struct {
	stopWords      bool
	minTokenLength int
}

// NewTokenizer returns a tokenizer. A minTokenLength below 1 is treated as 1.
func NewTokenizer(stopWords bool, minTokenLength int) Tokenizer {
	if minTokenLength < 1 {
		minTokenLength = 1
	}
	return Tokenizer{stopWords: stopWords, minTokenLength: minTokenLength}
}

// Tokenize lowercases text, splits it on anything that is not a letter or
// digit, and drops short tokens and (optionally) stop words. Compatibility
// forms are folded first so full-width and ligature characters match their
// plain equivalents.
func (t Tokenizer) Tokenize(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < t.minTokenLength {
			continue
		}
		if t.stopWords && isStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func isStopWord(w string) bool {
	_, ok := englishStopWords[w]
	return ok
}

// englishStopWords is a compact English function-word list. Content words
// are never listed, so overlap on them always counts.
var englishStopWords = toSet(`
a about above after again against all also am an and any are as at
be because been before being below between both but by
can cannot could
did do does doing done down during
each either else ever every
few for from further
had has have having he her here hers herself him himself his how however
i if in into is it its itself
just
least less
me might more most much must my myself
neither no nor not now
of off often on once only or other otherwise our ours ourselves out over own
per perhaps
rather
same several she should since so some such
than that the their theirs them themselves then there these they this those
though through thus to too
under until up upon us
very via
was we were what whatever when whenever where whereas whether which while who
whoever whom whose why will with within without would
yet you your yours yourself yourselves
`)

func toSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}
