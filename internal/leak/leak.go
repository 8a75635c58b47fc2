// Package leak flags strings in a translated locale that still look like
// base-locale (English) text.
//
// The check is a heuristic: it counts how many whitespace-separated tokens
// appear in a small dictionary of frequent base-locale words. It is advisory
// and makes no claim to detect every untranslated string.
package leak

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Thresholds tune when a string is flagged.
type Thresholds struct {
	// MinTokens is the smallest token count considered.
	MinTokens int
	// MatchRatio is the dictionary-hit ratio that must be exceeded.
	MatchRatio float64
}

// DefaultThresholds flags strings of at least four tokens where more than a
// fifth are dictionary words.
var DefaultThresholds = Thresholds{MinTokens: 4, MatchRatio: 0.2}

// Checker decides whether a string is untranslated base-locale text.
// Detector is the stock implementation; a language-identification model can
// replace it without touching the validators.
type Checker interface {
	IsLeak(text string) bool
}

// Detector holds a case-folded dictionary and an exact-match allowlist.
// It is immutable and safe for concurrent use.
type Detector struct {
	dictionary map[string]struct{}
	allowlist  map[string]struct{}
	thresholds Thresholds
}

// Result describes one evaluation.
type Result struct {
	Tokens  int
	Matches int
	Ratio   float64
	Leaked  bool
	// Allowlisted is set when the exact string is on the allowlist.
	Allowlisted bool
}

// New builds a detector.
func New(dictionary, allowlist []string, t Thresholds) *Detector {
	d := &Detector{
		dictionary: make(map[string]struct{}, len(dictionary)),
		allowlist:  make(map[string]struct{}, len(allowlist)),
		thresholds: t,
	}
	for _, w := range dictionary {
		d.dictionary[fold(w)] = struct{}{}
	}
	for _, s := range allowlist {
		d.allowlist[s] = struct{}{}
	}

	return d
}

// Thresholds returns the configured thresholds.
func (d *Detector) Thresholds() Thresholds { return d.thresholds }

// Check evaluates text.
func (d *Detector) Check(text string) Result {
	if _, ok := d.allowlist[text]; ok {
		return Result{Allowlisted: true}
	}

	tokens := Tokenize(text)
	res := Result{Tokens: len(tokens)}
	if res.Tokens == 0 {
		return res
	}

	for _, tok := range tokens {
		if _, ok := d.dictionary[bare(tok)]; ok {
			res.Matches++
		}
	}
	res.Ratio = float64(res.Matches) / float64(res.Tokens)
	res.Leaked = res.Tokens >= d.thresholds.MinTokens && res.Ratio > d.thresholds.MatchRatio

	return res
}

// IsLeak reports whether text is flagged.
func (d *Detector) IsLeak(text string) bool {
	return d.Check(text).Leaked
}

// Detect is the stateless form of Detector.IsLeak.
func Detect(text string, dictionary, allowlist []string, t Thresholds) bool {
	return New(dictionary, allowlist, t).IsLeak(text)
}

// Tokenize splits on whitespace and case-folds each token. Every field
// counts, punctuation included.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, fold(f))
	}

	return out
}

// bare trims surrounding punctuation for the dictionary lookup.
func bare(tok string) string {
	return strings.TrimFunc(tok, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func fold(s string) string {
	return cases.Fold().String(s)
}
