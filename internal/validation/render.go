package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// TextOptions caps how many keys of one kind are listed per subject and
// locale in text output. The report itself always keeps every issue.
type TextOptions struct {
	MaxListed      int
	MaxListedExtra int
}

// DefaultTextOptions lists up to ten missing and five extra keys.
var DefaultTextOptions = TextOptions{MaxListed: 10, MaxListedExtra: 5}

// Formats accepted by Render.
var Formats = []string{"text", "json", "yaml"}

// Render writes the report in the named format.
func Render(w io.Writer, r *Report, format string, opts TextOptions) error {
	switch format {
	case "", "text":
		return RenderText(w, r, opts)
	case "json":
		return RenderJSON(w, r)
	case "yaml":
		return RenderYAML(w, r)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(r)
}

// RenderYAML writes the report as YAML.
func RenderYAML(w io.Writer, r *Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return err
	}

	return encoder.Close()
}

// RenderText writes errors, then warnings, then statistics.
func RenderText(w io.Writer, r *Report, opts TextOptions) error {
	if opts.MaxListed <= 0 {
		opts.MaxListed = DefaultTextOptions.MaxListed
	}
	if opts.MaxListedExtra <= 0 {
		opts.MaxListedExtra = DefaultTextOptions.MaxListedExtra
	}

	ew := &errWriter{w: w}

	if critical := r.Critical(); len(critical) > 0 {
		ew.printf("❌ Errors (%d):\n", len(critical))
		writeCapped(ew, critical, opts)
		ew.printf("\n")
	}

	if warnings := r.Warnings(); len(warnings) > 0 {
		ew.printf("⚠️  Warnings (%d):\n", len(warnings))
		writeCapped(ew, warnings, opts)
		ew.printf("\n")
	}

	if infos := r.Infos(); len(infos) > 0 {
		ew.printf("ℹ️  Info (%d):\n", len(infos))
		for _, issue := range infos {
			ew.printf("  • %s: %s\n", issue.Subject, issue.Message)
		}
		ew.printf("\n")
	}

	if ew.err != nil {
		return ew.err
	}

	ew.printf("📊 Statistics:\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	s := r.Stats
	rows := []struct {
		label string
		value int
	}{
		{"Files checked", s.FilesChecked},
		{"Total keys", s.TotalKeys},
		{"Missing keys", s.MissingKeys},
		{"Extra keys", s.ExtraKeys},
		{"English leaks", s.Leaks},
		{"Empty values", s.EmptyValues},
		{"Missing locales", s.MissingLocales},
		{"Unregistered components", s.Unregistered},
		{"Critical", s.Critical},
		{"Warnings", s.Warnings},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s:\t%d\n", row.label, row.value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if r.Failed() {
		ew.printf("\n❌ Validation failed with %d critical issue(s)\n", s.Critical)
	} else {
		ew.printf("\n✅ Validation passed\n")
	}

	return ew.err
}

// writeCapped lists issues, truncating runs of missing or extra keys that
// share a subject and locale.
func writeCapped(ew *errWriter, issues []Issue, opts TextOptions) {
	for i := 0; i < len(issues); {
		issue := issues[i]
		limit := 0
		switch issue.Kind {
		case KindMissingKey:
			limit = opts.MaxListed
		case KindExtraKey:
			limit = opts.MaxListedExtra
		}

		if limit == 0 {
			ew.printf("  • %s\n", describe(issue))
			i++

			continue
		}

		j := i
		for j < len(issues) && sameGroup(issues[j], issue) {
			j++
		}
		group := issues[i:j]
		ew.printf("  • %s [%s] %s (%d):\n", issue.Subject, issue.Locale, issue.Kind, len(group))
		for k, g := range group {
			if k == limit {
				ew.printf("      ... and %d more\n", len(group)-limit)

				break
			}
			ew.printf("      - %s\n", g.Key)
		}
		i = j
	}
}

func sameGroup(a, b Issue) bool {
	return a.Subject == b.Subject && a.Locale == b.Locale && a.Kind == b.Kind
}

func describe(issue Issue) string {
	out := issue.Subject
	if issue.Locale != "" {
		out += " [" + issue.Locale + "]"
	}
	out += " " + string(issue.Kind)
	if issue.Key != "" {
		out += " " + issue.Key
	}

	return out + ": " + issue.Message
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
