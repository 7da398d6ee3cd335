package concepts

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var wordPattern = regexp.MustCompile(`\b[a-z]{4,}\b`)

// stopWords are skipped when ranking important words. Most entries are
// shorter than four letters and can never match; they are kept so the set
// reads as a plain English stop list.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "must": true,
	"can": true, "this": true, "that": true, "these": true, "those": true,
	"there": true, "where": true, "when": true, "which": true, "who": true,
	"why": true, "how": true, "what": true, "it": true, "its": true,
	"they": true, "them": true, "their": true, "also": true, "such": true,
	"into": true, "through": true, "during": true, "before": true,
	"after": true, "above": true, "below": true, "between": true,
	"among": true, "include": true, "includes": true,
}

// ImportantWords returns the lower-cased words of at least four letters that
// are not stop words, most frequent first. Ties keep first-occurrence order.
// At most limit words are returned.
func ImportantWords(text string, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if stopWords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if limit >= 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}

// titleCase capitalises the first letter of every word.
// A Caser is stateful, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

// splitSentences splits text on '.' and drops empty pieces.
func splitSentences(text string) []string {
	var sentences []string
	for _, s := range strings.Split(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// dedupe removes case-insensitive duplicates, keeping the first spelling.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
