// Package seo derives page metadata and structured data for a calculator in
// one locale. Everything here is a pure function of its inputs.
package seo

import (
	"strings"

	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/locale"
)

// XDefault is the hreflang value of the fallback alternate.
const XDefault = "x-default"

// Site carries the site-wide settings used to build URLs and fallbacks.
type Site struct {
	BaseURL            string
	Name               string
	BaseLocaleAtRoot   bool
	DefaultTitle       string
	DefaultDescription string
}

// Alternate is one hreflang link.
type Alternate struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// Metadata is the head-level description of one page.
type Metadata struct {
	Locale       string      `json:"locale"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	CanonicalURL string      `json:"canonical"`
	Alternates   []Alternate `json:"alternates"`
	InLanguage   string      `json:"inLanguage"`
}

// Generate builds the metadata for record in code. Alternates list every
// global locale in policy order, then x-default pointing at the base-locale
// URL, then the extended locales only when the slug is allowlisted.
func Generate(record *content.Record, code string, policy *locale.Policy, site Site) Metadata {
	var seoTitle, title, metaDescription, summary string
	if lc, ok := content.GetLocale(record, code); ok {
		seoTitle = strings.TrimSpace(lc.SEOTitle)
		title = strings.TrimSpace(lc.Title)
		metaDescription = strings.TrimSpace(lc.MetaDescription)
		summary = strings.TrimSpace(lc.Summary)
	}

	md := Metadata{
		Locale:       code,
		Title:        firstNonEmpty(seoTitle, title, site.DefaultTitle),
		Description:  firstNonEmpty(metaDescription, summary, site.DefaultDescription),
		CanonicalURL: PageURL(site, policy, code, record.Slug),
		InLanguage:   locale.InLanguage(code),
	}

	for _, g := range policy.Global() {
		md.Alternates = append(md.Alternates, Alternate{Hreflang: g, Href: PageURL(site, policy, g, record.Slug)})
	}
	md.Alternates = append(md.Alternates, Alternate{Hreflang: XDefault, Href: PageURL(site, policy, policy.Base(), record.Slug)})

	if policy.Allowlisted(record.Slug) {
		for _, e := range policy.Extended() {
			md.Alternates = append(md.Alternates, Alternate{Hreflang: e, Href: PageURL(site, policy, e, record.Slug)})
		}
	}

	return md
}

// Alternate returns the alternate for hreflang.
func (m Metadata) Alternate(hreflang string) (Alternate, bool) {
	for _, a := range m.Alternates {
		if a.Hreflang == hreflang {
			return a, true
		}
	}

	return Alternate{}, false
}

// PageURL returns the absolute URL of a calculator page.
func PageURL(site Site, policy *locale.Policy, code, slug string) string {
	return strings.TrimRight(site.BaseURL, "/") + PagePath(site, policy, code, slug)
}

// PagePath returns the site-relative path of a calculator page.
func PagePath(site Site, policy *locale.Policy, code, slug string) string {
	return LocalePrefix(site, policy, code) + "/" + slug
}

// CategoryURL returns the absolute URL of a category index page.
func CategoryURL(site Site, policy *locale.Policy, code string, category content.Category) string {
	return strings.TrimRight(site.BaseURL, "/") + CategoryPath(site, policy, code, category)
}

// CategoryPath returns the site-relative path of a category index page.
func CategoryPath(site Site, policy *locale.Policy, code string, category content.Category) string {
	return LocalePrefix(site, policy, code) + "/categories/" + string(category)
}

// LocalePrefix is "" for the base locale served at the root, else "/<code>".
func LocalePrefix(site Site, policy *locale.Policy, code string) string {
	if site.BaseLocaleAtRoot && code == policy.Base() {
		return ""
	}

	return "/" + code
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
