package intent

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "to": {}, "for": {}, "of": {}, "in": {}, "on": {},
	"and": {}, "or": {}, "with": {}, "me": {}, "my": {}, "i": {}, "this": {}, "that": {},
	"is": {}, "are": {}, "be": {}, "please": {}, "can": {}, "you": {}, "could": {},
	"would": {}, "some": {}, "any": {}, "from": {}, "about": {}, "into": {}, "at": {},
	"by": {}, "it": {}, "need": {}, "want": {}, "help": {},
}

// Tokenize splits text into lowercase content words. Plural words are
// also indexed in singular form.
func Tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, w := range splitWords(text) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		tokens[w] = struct{}{}
		if s := NormalizeWord(w); s != w {
			tokens[s] = struct{}{}
		}
	}
	return tokens
}

// TermWords splits a keyword term into normalized words.
func TermWords(term string) []string {
	words := splitWords(term)
	for i, w := range words {
		words[i] = NormalizeWord(w)
	}
	return words
}

// NormalizeWord lowercases w and strips a simple plural suffix.
func NormalizeWord(w string) string {
	w = strings.ToLower(w)
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "ss"):
		return w
	case len(w) > 3 && strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
