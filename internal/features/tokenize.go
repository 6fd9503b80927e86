// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package features

import (
	"strings"
	"unicode"
)

// stopTerms lists common English terms excluded from the vocabulary. The
// list is short on purpose: IDF weighting already suppresses terms that
// appear everywhere in a scholarly corpus.
var stopTerms = map[string]bool{
	"a": true, "about": true, "after": true, "all": true, "also": true,
	"an": true, "and": true, "any": true, "are": true, "as": true,
	"at": true, "based": true, "be": true, "been": true, "between": true,
	"both": true, "but": true, "by": true, "can": true, "could": true,
	"does": true, "during": true, "each": true, "for": true, "from": true,
	"has": true, "have": true, "here": true, "how": true, "however": true,
	"in": true, "into": true, "is": true, "it": true, "its": true,
	"may": true, "more": true, "most": true, "new": true, "no": true,
	"not": true, "of": true, "on": true, "one": true, "or": true,
	"other": true, "our": true, "over": true, "paper": true, "present": true,
	"propose": true, "proposed": true, "results": true, "show": true,
	"some": true, "study": true, "such": true, "than": true, "that": true,
	"the": true, "their": true, "these": true, "this": true, "those": true,
	"through": true, "to": true, "two": true, "under": true, "used": true,
	"using": true, "was": true, "we": true, "were": true, "when": true,
	"which": true, "while": true, "with": true, "within": true, "without": true,
}

// tokenize lowercases text, splits on non-alphanumeric runes, and drops
// stop terms, bare numbers, and tokens shorter than minLen.
func tokenize(text string, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var tokens []string
	for _, f := range fields {
		if len(f) < minLen || stopTerms[f] || isNumeric(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
