// Package locale defines which locales a calculator is published in.
//
// Global locales are required for every calculator. Extended locales are
// published only for slugs on the allowlist. A Policy is immutable once built.
package locale

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Policy holds the ordered locale sets and the extended-locale allowlist.
type Policy struct {
	base      string
	global    []string
	extended  []string
	allowlist map[string]struct{}
}

// NewPolicy builds a policy. Order of global and extended is preserved and
// drives every enumeration downstream.
func NewPolicy(base string, global, extended, allowlist []string) (*Policy, error) {
	p := &Policy{
		base:      base,
		global:    append([]string(nil), global...),
		extended:  append([]string(nil), extended...),
		allowlist: make(map[string]struct{}, len(allowlist)),
	}

	if !p.IsGlobal(base) {
		return nil, fmt.Errorf("base locale %q is not a global locale", base)
	}
	for _, code := range extended {
		if p.IsGlobal(code) {
			return nil, fmt.Errorf("locale %q is both global and extended", code)
		}
	}
	for _, slug := range allowlist {
		p.allowlist[slug] = struct{}{}
	}

	return p, nil
}

// Base returns the base (source) locale.
func (p *Policy) Base() string { return p.base }

// Global returns the locales every calculator must provide.
func (p *Policy) Global() []string { return append([]string(nil), p.global...) }

// Extended returns the locales limited to allowlisted slugs.
func (p *Policy) Extended() []string { return append([]string(nil), p.extended...) }

// All returns global then extended locales.
func (p *Policy) All() []string {
	out := make([]string, 0, len(p.global)+len(p.extended))
	out = append(out, p.global...)

	return append(out, p.extended...)
}

// NonBase returns every locale except the base, in policy order.
func (p *Policy) NonBase() []string {
	out := make([]string, 0, len(p.global)+len(p.extended))
	for _, code := range p.All() {
		if code != p.base {
			out = append(out, code)
		}
	}

	return out
}

// IsGlobal reports whether code is a global locale.
func (p *Policy) IsGlobal(code string) bool { return contains(p.global, code) }

// IsExtended reports whether code is an extended locale.
func (p *Policy) IsExtended(code string) bool { return contains(p.extended, code) }

// Known reports whether code is any configured locale.
func (p *Policy) Known(code string) bool { return p.IsGlobal(code) || p.IsExtended(code) }

// Allowlisted reports whether slug may be published in the extended locales.
func (p *Policy) Allowlisted(slug string) bool {
	_, ok := p.allowlist[slug]

	return ok
}

// Allowlist returns the allowlisted slugs, sorted.
func (p *Policy) Allowlist() []string {
	out := make([]string, 0, len(p.allowlist))
	for slug := range p.allowlist {
		out = append(out, slug)
	}
	sort.Strings(out)

	return out
}

// Supports reports whether the (locale, slug) pair is published.
func (p *Policy) Supports(code, slug string) bool {
	if p.IsGlobal(code) {
		return true
	}

	return p.IsExtended(code) && p.Allowlisted(slug)
}

// LocalesFor returns the locales slug is published in, in policy order.
func (p *Policy) LocalesFor(slug string) []string {
	if p.Allowlisted(slug) {
		return p.All()
	}

	return p.Global()
}

// regionOverrides pins the region used in page metadata where the
// likely-subtag default differs from the market served.
var regionOverrides = map[string]string{
	"pt": "PT",
}

// InLanguage returns the BCP 47 tag with region used for schema.org
// inLanguage, such as "es-ES".
func InLanguage(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()

	if r, ok := regionOverrides[base.String()]; ok {
		if region, err := language.ParseRegion(r); err == nil {
			if t, err := language.Compose(base, region); err == nil {
				return t.String()
			}
		}
	}

	region, _ := tag.Region()
	t, err := language.Compose(base, region)
	if err != nil {
		return code
	}

	return t.String()
}

// DisplayName returns the language's name in itself, such as "español".
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}

	return code
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
