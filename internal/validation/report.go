// Package validation checks calculator content before it is published.
//
// Two validators run over a loaded snapshot: the translation validator
// compares every locale section with the base locale, and the registration
// validator checks that each calculator names a registered component. Both
// produce a Report whose issues are sorted deterministically so identical
// input always yields an identical report.
package validation

import (
	"sort"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Kind classifies an issue.
type Kind string

const (
	KindMissingKey            Kind = "missing-key"
	KindExtraKey              Kind = "extra-key"
	KindLeak                  Kind = "leak"
	KindEmptyValue            Kind = "empty-value"
	KindUnregisteredComponent Kind = "unregistered-component"
	KindMissingLocale         Kind = "missing-locale"
	KindUnreferencedComponent Kind = "unreferenced-component"
)

// Issue is one finding.
type Issue struct {
	Severity Severity `json:"severity" yaml:"severity"`
	// Subject is the calculator slug, label bundle, or component id.
	Subject string `json:"subject" yaml:"subject"`
	Locale  string `json:"locale,omitempty" yaml:"locale,omitempty"`
	Kind    Kind   `json:"kind" yaml:"kind"`
	Key     string `json:"key,omitempty" yaml:"key,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// Stats summarises a run.
type Stats struct {
	FilesChecked   int `json:"filesChecked" yaml:"filesChecked"`
	TotalKeys      int `json:"totalKeys" yaml:"totalKeys"`
	MissingKeys    int `json:"missingKeys" yaml:"missingKeys"`
	ExtraKeys      int `json:"extraKeys" yaml:"extraKeys"`
	Leaks          int `json:"englishLeaks" yaml:"englishLeaks"`
	EmptyValues    int `json:"emptyValues" yaml:"emptyValues"`
	MissingLocales int `json:"missingLocales" yaml:"missingLocales"`
	Unregistered   int `json:"unregisteredComponents" yaml:"unregisteredComponents"`
	Critical       int `json:"critical" yaml:"critical"`
	Warnings       int `json:"warnings" yaml:"warnings"`
}

// Report is the sorted result of one or more validators.
type Report struct {
	Issues []Issue `json:"issues" yaml:"issues"`
	Stats  Stats   `json:"stats" yaml:"stats"`
}

// Failed reports whether any issue is critical.
func (r *Report) Failed() bool {
	return r.Stats.Critical > 0
}

// Critical returns the critical issues in report order.
func (r *Report) Critical() []Issue { return r.filter(SeverityCritical) }

// Warnings returns the warning issues in report order.
func (r *Report) Warnings() []Issue { return r.filter(SeverityWarning) }

// Infos returns the informational issues in report order.
func (r *Report) Infos() []Issue { return r.filter(SeverityInfo) }

func (r *Report) filter(s Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}

	return out
}

// Merge combines reports, dropping identical issues and recounting the
// issue-derived statistics. Validators walk the same files, so the file count
// is the largest seen rather than a sum.
func Merge(reports ...*Report) *Report {
	merged := &Report{}
	seen := make(map[Issue]struct{})
	for _, r := range reports {
		if r == nil {
			continue
		}
		for _, issue := range r.Issues {
			if _, dup := seen[issue]; dup {
				continue
			}
			seen[issue] = struct{}{}
			merged.Issues = append(merged.Issues, issue)
		}
		if r.Stats.FilesChecked > merged.Stats.FilesChecked {
			merged.Stats.FilesChecked = r.Stats.FilesChecked
		}
		merged.Stats.TotalKeys += r.Stats.TotalKeys
	}
	merged.finish()

	return merged
}

// add appends an issue.
func (r *Report) add(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

// finish sorts issues and derives the counters from them.
func (r *Report) finish() {
	sort.SliceStable(r.Issues, func(i, j int) bool {
		a, b := r.Issues[i], r.Issues[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Locale != b.Locale {
			return a.Locale < b.Locale
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}

		return a.Message < b.Message
	})

	s := &r.Stats
	s.MissingKeys, s.ExtraKeys, s.Leaks, s.EmptyValues = 0, 0, 0, 0
	s.MissingLocales, s.Unregistered, s.Critical, s.Warnings = 0, 0, 0, 0
	for _, issue := range r.Issues {
		switch issue.Kind {
		case KindMissingKey:
			s.MissingKeys++
		case KindExtraKey:
			s.ExtraKeys++
		case KindLeak:
			s.Leaks++
		case KindEmptyValue:
			s.EmptyValues++
		case KindMissingLocale:
			s.MissingLocales++
		case KindUnregisteredComponent:
			s.Unregistered++
		}
		switch issue.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityWarning:
			s.Warnings++
		}
	}
}
