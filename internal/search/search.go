package search

import (
	"strings"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

// Hit is a matching message and its position in the searched slice.
type Hit struct {
	Index   int
	Message parse.Message
}

// Messages returns the messages whose body contains keyword, in their
// input order. Matching is case-insensitive unless caseSensitive is set.
func Messages(msgs []parse.Message, keyword string, caseSensitive bool) []parse.Message {
	hits := Find(msgs, keyword, caseSensitive)
	out := make([]parse.Message, len(hits))
	for i, h := range hits {
		out[i] = h.Message
	}
	return out
}

// Find is Messages that also reports where each match sits in msgs.
func Find(msgs []parse.Message, keyword string, caseSensitive bool) []Hit {
	match := func(body string) bool { return strings.Contains(body, keyword) }
	if !caseSensitive {
		k := strings.ToLower(keyword)
		match = func(body string) bool { return strings.Contains(strings.ToLower(body), k) }
	}

	var hits []Hit
	for i, m := range msgs {
		if match(m.Body) {
			hits = append(hits, Hit{Index: i, Message: m})
		}
	}
	return hits
}

// Snippet extracts an excerpt around the first occurrence of query in text,
// wrapping the match in >>> and <<< markers.
func Snippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := -1
	if query != "" {
		idx = strings.Index(lower, qLower)
	}
	// lowercasing can change byte lengths; fall back to the head then
	if idx < 0 || len(lower) != len(text) {
		// no match, return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	// find rune position of idx
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
