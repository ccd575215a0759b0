// Package scoring provides the pure keyword-overlap scorer used by both the
// hybrid ranker and the urgency engine.
package scoring

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it on any non-alphanumeric rune.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// tokenSet returns the distinct lowercase tokens of text.
func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// containsKeyword reports whether a single keyword is present in the text.
// Single-word keywords match on token membership; multi-word keywords match
// when every one of their tokens is present.
func containsKeyword(tokens map[string]struct{}, keyword string) bool {
	parts := Tokenize(keyword)
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if _, ok := tokens[part]; !ok {
			return false
		}
	}
	return true
}

// Overlap computes the fraction of distinct keywords present in text,
// bounded to [0,1]. Empty text or an empty keyword set scores 0.
func Overlap(text string, keywords []string) float64 {
	if strings.TrimSpace(text) == "" || len(keywords) == 0 {
		return 0
	}
	tokens := tokenSet(text)

	distinct := make(map[string]struct{}, len(keywords))
	hits := 0
	for _, keyword := range keywords {
		normalized := strings.ToLower(strings.TrimSpace(keyword))
		if normalized == "" {
			continue
		}
		if _, seen := distinct[normalized]; seen {
			continue
		}
		distinct[normalized] = struct{}{}
		if containsKeyword(tokens, normalized) {
			hits++
		}
	}
	if len(distinct) == 0 {
		return 0
	}
	return float64(hits) / float64(len(distinct))
}

// ContainsAny reports whether any of the keywords is present in text. The
// urgency engine uses this as the critical-hit signal, separate from the
// graded overlap score.
func ContainsAny(text string, keywords []string) bool {
	if strings.TrimSpace(text) == "" || len(keywords) == 0 {
		return false
	}
	tokens := tokenSet(text)
	for _, keyword := range keywords {
		if containsKeyword(tokens, strings.ToLower(strings.TrimSpace(keyword))) {
			return true
		}
	}
	return false
}
