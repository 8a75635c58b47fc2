// Package paths enumerates the (locale, slug) pages to publish.
package paths

import (
	"sort"

	"github.com/quick-calculator/calcdir/internal/locale"
)

// Path is one publishable page.
type Path struct {
	Locale string `json:"locale" yaml:"locale"`
	Slug   string `json:"slug" yaml:"slug"`
}

// All returns every global locale crossed with every slug, locale-major in
// policy order with slugs sorted.
func All(policy *locale.Policy, slugs []string) []Path {
	sorted := sortedCopy(slugs)
	global := policy.Global()

	out := make([]Path, 0, len(global)*len(sorted))
	for _, code := range global {
		for _, slug := range sorted {
			out = append(out, Path{Locale: code, Slug: slug})
		}
	}

	return out
}

// Extended returns the extended locales crossed with the allowlisted slugs
// that exist. It is never folded into All.
func Extended(policy *locale.Policy, slugs []string) []Path {
	var eligible []string
	for _, slug := range sortedCopy(slugs) {
		if policy.Allowlisted(slug) {
			eligible = append(eligible, slug)
		}
	}

	extended := policy.Extended()
	out := make([]Path, 0, len(extended)*len(eligible))
	for _, code := range extended {
		for _, slug := range eligible {
			out = append(out, Path{Locale: code, Slug: slug})
		}
	}

	return out
}

// Published returns All followed by Extended.
func Published(policy *locale.Policy, slugs []string) []Path {
	return append(All(policy, slugs), Extended(policy, slugs)...)
}

// Supported reports whether a request for (code, slug) should be served.
// Slug existence is checked by the caller.
func Supported(policy *locale.Policy, code, slug string) bool {
	return policy.Supports(code, slug)
}

// ByLocale groups paths by locale, keeping order within each group.
func ByLocale(paths []Path) map[string][]Path {
	out := make(map[string][]Path)
	for _, p := range paths {
		out[p.Locale] = append(out[p.Locale], p)
	}

	return out
}

func sortedCopy(slugs []string) []string {
	out := append([]string(nil), slugs...)
	sort.Strings(out)

	return out
}
