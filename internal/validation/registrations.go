package validation

import (
	"fmt"

	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/registry"
)

// ValidateRegistrations checks that each record's base-locale section names
// a registered component.
func ValidateRegistrations(records []*content.Record, reg *registry.Registry, base string) *Report {
	report := &Report{}

	for _, record := range records {
		report.Stats.FilesChecked++

		if _, ok := record.Locale(base); !ok {
			report.add(Issue{
				Severity: SeverityCritical,
				Subject:  record.Slug,
				Locale:   base,
				Kind:     KindMissingLocale,
				Message:  "cannot validate - missing base-locale section",
			})

			continue
		}

		if !record.HasComponentField(base) || record.ComponentID == "" {
			report.add(Issue{
				Severity: SeverityCritical,
				Subject:  record.Slug,
				Locale:   base,
				Kind:     KindMissingKey,
				Key:      "component",
				Message:  "no component field in base-locale section",
			})

			continue
		}

		if !reg.Has(record.ComponentID) {
			report.add(Issue{
				Severity: SeverityCritical,
				Subject:  record.Slug,
				Locale:   base,
				Kind:     KindUnregisteredComponent,
				Key:      "component",
				Message:  fmt.Sprintf("component %q used by %s is not registered", record.ComponentID, record.Slug),
			})
		}
	}

	report.finish()

	return report
}

// Unreferenced reports registered components that no record uses. The
// issues are informational and never fail a run.
func Unreferenced(records []*content.Record, reg *registry.Registry) *Report {
	used := make(map[string]struct{}, len(records))
	for _, record := range records {
		if record.ComponentID != "" {
			used[record.ComponentID] = struct{}{}
		}
	}

	report := &Report{}
	for _, id := range reg.IDs() {
		if _, ok := used[id]; ok {
			continue
		}
		report.add(Issue{
			Severity: SeverityInfo,
			Subject:  id,
			Kind:     KindUnreferencedComponent,
			Message:  "registered but not used by any calculator",
		})
	}
	report.finish()

	return report
}
