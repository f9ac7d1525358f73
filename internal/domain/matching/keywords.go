package matching

import (
	"regexp"
	"strings"
)

var reWord = regexp.MustCompile(`[\p{L}\p{N}']+`)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {}, "all": {},
	"any": {}, "can": {}, "had": {}, "her": {}, "was": {}, "one": {}, "our": {}, "out": {},
	"has": {}, "have": {}, "his": {}, "how": {}, "its": {}, "may": {}, "new": {}, "now": {},
	"see": {}, "who": {}, "did": {}, "get": {}, "got": {}, "him": {}, "she": {}, "too": {},
	"use": {}, "that": {}, "this": {}, "with": {}, "from": {}, "they": {}, "them": {}, "then": {},
	"there": {}, "their": {}, "what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "about": {}, "into": {}, "just": {},
	"like": {}, "some": {}, "very": {}, "really": {}, "been": {}, "being": {}, "were": {},
	"your": {}, "yours": {}, "also": {}, "because": {}, "these": {}, "those": {}, "than": {},
	"clip": {}, "video": {}, "shows": {}, "showing": {}, "shot": {}, "scene": {}, "frames": {},
	"visuals": {}, "related": {}, "analysis": {}, "failed": {}, "mp4": {}, "mov": {},
}

// Keywords returns the set of content words in text: lowercased, stopwords
// and short tokens removed, plural "s" folded.
func Keywords(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range reWord.FindAllString(strings.ToLower(text), -1) {
		w = strings.Trim(w, "'")
		if i := strings.Index(w, "'"); i >= 0 {
			w = w[:i]
		}
		if len([]rune(w)) < 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out[stem(w)] = struct{}{}
	}
	return out
}

func stem(w string) string {
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return strings.TrimSuffix(w, "s")
	}
	return w
}

// overlap counts the keywords of a that also appear in b.
func overlap(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
