package app

import (
	"fmt"

	"github.com/quick-calculator/calcdir/internal/validation"
)

// Scope selects which validators run.
type Scope string

const (
	ScopeAll          Scope = ""
	ScopeTranslations Scope = "translations"
	ScopeComponents   Scope = "components"
)

// ParseScope accepts "", "all", "translations" and "components".
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "all":
		return ScopeAll, nil
	case string(ScopeTranslations):
		return ScopeTranslations, nil
	case string(ScopeComponents):
		return ScopeComponents, nil
	default:
		return "", fmt.Errorf("unknown validation scope %q (expected translations or components)", s)
	}
}

// Validate runs the selected validators over the snapshot and merges their
// reports. Issues found by both validators are reported once.
func (s *Snapshot) Validate(scope Scope) *validation.Report {
	records := s.Store.Records()
	var reports []*validation.Report

	if scope == ScopeAll || scope == ScopeTranslations {
		reports = append(reports, validation.ValidateTranslations(records, s.Bundles, s.Policy, s.Leaks))
	}
	if scope == ScopeAll || scope == ScopeComponents {
		reports = append(reports,
			validation.ValidateRegistrations(records, s.Registry, s.Policy.Base()),
			validation.Unreferenced(records, s.Registry),
		)
	}

	return validation.Merge(reports...)
}

// TextOptions returns the report rendering limits from configuration.
func (s *Snapshot) TextOptions() validation.TextOptions {
	opts := validation.DefaultTextOptions
	if s.Config.Validation.MaxListed > 0 {
		opts.MaxListed = s.Config.Validation.MaxListed
	}
	if s.Config.Validation.MaxListedExtra > 0 {
		opts.MaxListedExtra = s.Config.Validation.MaxListedExtra
	}

	return opts
}
