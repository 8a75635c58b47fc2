package validation

import (
	"fmt"

	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/leak"
	"github.com/quick-calculator/calcdir/internal/locale"
)

// BundleSubject names label-bundle issues in a report.
const BundleSubject = "labels/" + content.BundleFile

// TranslationValidator compares locale sections against the base locale.
type TranslationValidator struct {
	policy *locale.Policy
	leaks  leak.Checker
}

// NewTranslationValidator creates a validator. A nil checker disables the
// leak heuristic.
func NewTranslationValidator(policy *locale.Policy, leaks leak.Checker) *TranslationValidator {
	return &TranslationValidator{policy: policy, leaks: leaks}
}

// ValidateTranslations is the functional form of TranslationValidator.Validate.
func ValidateTranslations(records []*content.Record, bundles content.Bundles, policy *locale.Policy, leaks leak.Checker) *Report {
	return NewTranslationValidator(policy, leaks).Validate(records, bundles)
}

// Validate checks every record and label bundle. Records are never modified.
func (v *TranslationValidator) Validate(records []*content.Record, bundles content.Bundles) *Report {
	report := &Report{}

	for _, record := range records {
		report.Stats.FilesChecked++
		sections := make(map[string]map[string]any, len(record.Locales))
		for code, lc := range record.Locales {
			if lc != nil {
				sections[code] = lc.Raw
			}
		}
		v.check(report, record.Slug, sections)
	}

	if len(bundles) > 0 {
		report.Stats.FilesChecked++
		sections := make(map[string]map[string]any, len(bundles))
		for code, doc := range bundles {
			sections[code] = doc
		}
		v.check(report, BundleSubject, sections)
	}

	report.finish()

	return report
}

// check validates one subject's locale sections.
func (v *TranslationValidator) check(report *Report, subject string, sections map[string]map[string]any) {
	base := v.policy.Base()

	baseDoc, ok := sections[base]
	if !ok {
		report.add(Issue{
			Severity: SeverityCritical,
			Subject:  subject,
			Locale:   base,
			Kind:     KindMissingLocale,
			Message:  "cannot validate - missing base-locale section",
		})

		return
	}

	baseFlat := Flatten(baseDoc)
	baseKeys := Keys(baseDoc)
	report.Stats.TotalKeys += len(baseKeys)
	v.checkEmpty(report, subject, base, baseFlat)

	for _, code := range v.policy.NonBase() {
		doc, present := sections[code]
		if !present {
			if severity, required := v.requirement(code, subject); required {
				report.add(Issue{
					Severity: severity,
					Subject:  subject,
					Locale:   code,
					Kind:     KindMissingLocale,
					Message:  fmt.Sprintf("missing %s section", code),
				})
			}

			continue
		}

		flat := Flatten(doc)
		missing, extra := Diff(baseKeys, Keys(doc))
		for _, key := range missing {
			report.add(Issue{
				Severity: SeverityCritical,
				Subject:  subject,
				Locale:   code,
				Kind:     KindMissingKey,
				Key:      key,
				Message:  "missing key",
			})
		}
		for _, key := range extra {
			report.add(Issue{
				Severity: SeverityWarning,
				Subject:  subject,
				Locale:   code,
				Kind:     KindExtraKey,
				Key:      key,
				Message:  "extra key not in base locale",
			})
		}

		v.checkEmpty(report, subject, code, flat)
		v.checkLeaks(report, subject, code, flat)
	}
}

// requirement returns the severity of a missing section, and false when the
// section is not expected at all.
func (v *TranslationValidator) requirement(code, subject string) (Severity, bool) {
	if v.policy.IsGlobal(code) {
		return SeverityCritical, true
	}
	if subject == BundleSubject || v.policy.Allowlisted(subject) {
		return SeverityWarning, true
	}

	return "", false
}

func (v *TranslationValidator) checkEmpty(report *Report, subject, code string, flat map[string]any) {
	for key, value := range flat {
		if isEmpty(value) {
			report.add(Issue{
				Severity: SeverityWarning,
				Subject:  subject,
				Locale:   code,
				Kind:     KindEmptyValue,
				Key:      key,
				Message:  "empty value",
			})
		}
	}
}

func (v *TranslationValidator) checkLeaks(report *Report, subject, code string, flat map[string]any) {
	if v.leaks == nil {
		return
	}
	for key, value := range flat {
		stringsIn(key, value, func(path, text string) {
			if v.leaks.IsLeak(text) {
				report.add(Issue{
					Severity: SeverityCritical,
					Subject:  subject,
					Locale:   code,
					Kind:     KindLeak,
					Key:      path,
					Message:  fmt.Sprintf("possible untranslated text: %q", text),
				})
			}
		})
	}
}
