// Package concepts turns raw prose into a main topic, ranked main concepts
// and per-concept subconcepts using plain text heuristics.
package concepts

import (
	"regexp"
	"strings"

	"github.com/ritzau/concept-mapper/pkg/logging"
)

// DefaultTopic is used when no topic can be derived from the text.
const DefaultTopic = "Main Topic"

// Options tunes how much the extractor keeps.
type Options struct {
	MaxConcepts       int // main branches
	MaxSubconcepts    int // subconcepts per main branch
	SentenceWindow    int // related sentences scanned per main concept
	WordsPerSentence  int // important words taken from each related sentence
	MaxImportantWords int
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		MaxConcepts:       8,
		MaxSubconcepts:    5,
		SentenceWindow:    3,
		WordsPerSentence:  2,
		MaxImportantWords: 10,
	}
}

var (
	topicPattern  = regexp.MustCompile(`(?im)^([^,\n]+?)[ \t]+(?:is|are|involves|means)\b`)
	headerPattern = regexp.MustCompile(`(?m)^([A-Za-z][^:\n]{2,30}):`)
	enumPattern   = regexp.MustCompile(`(?m)^\d+\.[ \t]*([A-Za-z][^.\n]{5,50})`)
	bulletPattern = regexp.MustCompile(`(?m)^[•\-*][ \t]*([A-Za-z][^.\n]{5,50})`)

	phrasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b([A-Z][a-z]+[ \t]+[A-Z][a-z]+)\b`),
		regexp.MustCompile(`(?i)\b(the[ \t]+[a-z]+[ \t]+[a-z]+)\b`),
		regexp.MustCompile(`(?i)\b([a-z]+[ \t]+process)\b`),
		regexp.MustCompile(`(?i)\b([a-z]+[ \t]+system)\b`),
		regexp.MustCompile(`(?i)\b([a-z]+[ \t]+method)\b`),
	}
)

// Result is everything extracted from one text snapshot.
type Result struct {
	Topic       string
	Concepts    []string
	Subconcepts map[string][]string
}

// Lookup returns the subconcepts recorded for a main concept.
func (r Result) Lookup(concept string) []string {
	return r.Subconcepts[concept]
}

// Extractor derives concepts from text. It holds no state besides its
// options and is safe for concurrent use.
type Extractor struct {
	opts Options
}

// NewExtractor creates an extractor. Non-positive option values fall back to
// the defaults.
func NewExtractor(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.MaxConcepts <= 0 {
		opts.MaxConcepts = def.MaxConcepts
	}
	if opts.MaxSubconcepts <= 0 {
		opts.MaxSubconcepts = def.MaxSubconcepts
	}
	if opts.SentenceWindow <= 0 {
		opts.SentenceWindow = def.SentenceWindow
	}
	if opts.WordsPerSentence <= 0 {
		opts.WordsPerSentence = def.WordsPerSentence
	}
	if opts.MaxImportantWords <= 0 {
		opts.MaxImportantWords = def.MaxImportantWords
	}
	return &Extractor{opts: opts}
}

// Options returns the effective options.
func (e *Extractor) Options() Options {
	return e.opts
}

// Extract runs the whole extraction for one text snapshot.
func (e *Extractor) Extract(text, title string) Result {
	res := Result{
		Topic:       e.MainTopic(text, title),
		Concepts:    e.MainConcepts(text),
		Subconcepts: make(map[string][]string),
	}
	subCount := 0
	for _, c := range res.Concepts {
		subs := e.Subconcepts(text, c)
		res.Subconcepts[c] = subs
		subCount += len(subs)
	}

	if len(res.Concepts) == 0 {
		logging.Debug("extraction degraded: no concepts found", "textLength", len(text), "topic", res.Topic)
	} else {
		logging.Debug("extracted concepts", "topic", res.Topic, "concepts", len(res.Concepts), "subconcepts", subCount)
	}
	return res
}

// MainTopic picks the label of the center node. A non-empty title wins.
// Otherwise the subject of a "<phrase> is/are/involves/means" first sentence
// is used, then the most frequent important word.
func (e *Extractor) MainTopic(text, title string) string {
	if title != "" {
		return title
	}

	if sentences := splitSentences(text); len(sentences) > 0 {
		if m := topicPattern.FindStringSubmatch(sentences[0]); m != nil {
			if topic := strings.TrimSpace(m[1]); topic != "" {
				return topic
			}
		}
	}

	if words := ImportantWords(text, e.opts.MaxImportantWords); len(words) > 0 {
		return titleCase(words[0])
	}
	return DefaultTopic
}

// MainConcepts collects candidate branch labels from section headers,
// enumerated items, bullets and noun phrases, in that order. Labels are
// title-cased, deduplicated case-insensitively and capped at MaxConcepts.
// Text without any structural or phrase candidates falls back to its most
// frequent important words.
func (e *Extractor) MainConcepts(text string) []string {
	var candidates []string
	for _, p := range []*regexp.Regexp{headerPattern, enumPattern, bulletPattern} {
		candidates = append(candidates, captures(p, text)...)
	}
	candidates = append(candidates, nounPhrases(text)...)

	if len(candidates) == 0 {
		for _, w := range ImportantWords(text, e.opts.MaxImportantWords) {
			candidates = append(candidates, titleCase(w))
		}
	}

	concepts := dedupe(candidates)
	if len(concepts) > e.opts.MaxConcepts {
		concepts = concepts[:e.opts.MaxConcepts]
	}
	return concepts
}

// Subconcepts finds supporting terms for a main concept in the sentences that
// mention it. When no sentence contains the whole concept, sentences
// containing any of its words are used instead.
func (e *Extractor) Subconcepts(text, concept string) []string {
	needle := strings.ToLower(strings.TrimSpace(concept))
	if needle == "" {
		return []string{}
	}

	sentences := splitSentences(text)
	var related []string
	for _, s := range sentences {
		if strings.Contains(strings.ToLower(s), needle) {
			related = append(related, s)
		}
	}
	if len(related) == 0 {
		words := strings.Fields(needle)
		for _, s := range sentences {
			lower := strings.ToLower(s)
			for _, w := range words {
				if strings.Contains(lower, w) {
					related = append(related, s)
					break
				}
			}
		}
	}

	if len(related) > e.opts.SentenceWindow {
		related = related[:e.opts.SentenceWindow]
	}

	var terms []string
	for _, s := range related {
		words := ImportantWords(s, e.opts.MaxImportantWords)
		if len(words) > e.opts.WordsPerSentence {
			words = words[:e.opts.WordsPerSentence]
		}
		for _, w := range words {
			if w != needle {
				terms = append(terms, w)
			}
		}
	}

	terms = dedupe(terms)
	if len(terms) > e.opts.MaxSubconcepts {
		terms = terms[:e.opts.MaxSubconcepts]
	}
	subs := make([]string, len(terms))
	for i, t := range terms {
		subs[i] = titleCase(t)
	}
	return subs
}

// nounPhrases applies the phrase patterns in order and keeps the first
// occurrence of every phrase.
func nounPhrases(text string) []string {
	var phrases []string
	for _, p := range phrasePatterns {
		phrases = append(phrases, captures(p, text)...)
	}
	return dedupe(phrases)
}

func captures(p *regexp.Regexp, text string) []string {
	var out []string
	for _, m := range p.FindAllStringSubmatch(text, -1) {
		if s := strings.TrimSpace(m[1]); s != "" {
			out = append(out, titleCase(s))
		}
	}
	return out
}
