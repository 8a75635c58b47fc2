package renderer

import (
	"context"
	"io"
	"sort"

	"github.com/a-h/templ"

	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/locale"
	"github.com/quick-calculator/calcdir/internal/seo"
)

// IndexEntry links one calculator from a locale home page.
type IndexEntry struct {
	Slug     string
	Title    string
	Summary  string
	Category content.Category
	URL      string
}

// IndexGroup is one category section of a locale home page.
type IndexGroup struct {
	Category content.Category
	Name     string
	// URL is the site-relative path of the category page.
	URL     string
	Entries []IndexEntry
}

// IndexPage is a locale home page.
type IndexPage struct {
	Locale    string
	Title     string
	URL       string
	Groups    []IndexGroup
	Languages []seo.Alternate
}

// Index builds the home page of a locale: every calculator published in the
// locale that has content for it, grouped by category.
func (r *Renderer) Index(ctx context.Context, code string) (*IndexPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.policy.Known(code) {
		return nil, errors.NewNotFoundError(errors.ErrCodeLocaleNotFound, "unknown locale").WithLocale(code)
	}

	byCategory := r.entries(code)

	page := &IndexPage{
		Locale: code,
		Title:  seo.HomeName(code),
		URL:    r.homeURL(code),
	}
	for _, cat := range content.Categories {
		entries := byCategory[cat]
		if len(entries) == 0 {
			continue
		}
		page.Groups = append(page.Groups, IndexGroup{
			Category: cat,
			Name:     seo.CategoryName(code, cat),
			URL:      seo.CategoryPath(r.site, r.policy, code, cat),
			Entries:  entries,
		})
	}
	for _, other := range r.policy.Global() {
		page.Languages = append(page.Languages, seo.Alternate{Hreflang: other, Href: r.homeURL(other)})
	}

	return page, nil
}

// entries lists every calculator published in code that has content for it,
// grouped by category and sorted by title.
func (r *Renderer) entries(code string) map[content.Category][]IndexEntry {
	byCategory := make(map[content.Category][]IndexEntry)
	for _, slug := range r.store.Slugs() {
		e, ok := r.entry(code, slug)
		if !ok {
			continue
		}
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}
	for _, entries := range byCategory {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Title != entries[j].Title {
				return entries[i].Title < entries[j].Title
			}

			return entries[i].Slug < entries[j].Slug
		})
	}

	return byCategory
}

// entry describes slug in code, if it is published there with content.
func (r *Renderer) entry(code, slug string) (IndexEntry, bool) {
	record, err := r.store.Lookup(slug)
	if err != nil || !r.policy.Supports(code, record.Slug) {
		return IndexEntry{}, false
	}
	lc, ok := content.GetLocale(record, code)
	if !ok {
		return IndexEntry{}, false
	}

	return IndexEntry{
		Slug:     record.Slug,
		Title:    lc.Title,
		Summary:  lc.Summary,
		Category: record.Category,
		URL:      seo.PagePath(r.site, r.policy, code, record.Slug),
	}, true
}

// HomeURL returns the absolute URL of a locale's home page.
func (r *Renderer) HomeURL(code string) string { return r.homeURL(code) }

func (r *Renderer) homeURL(code string) string {
	return r.site.BaseURL + seo.LocalePrefix(r.site, r.policy, code) + "/"
}

// Len returns the number of calculators listed.
func (p *IndexPage) Len() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Entries)
	}

	return n
}

// Document renders the home page as a complete HTML document.
func (p *IndexPage) Document(head ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf("<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n<meta charset=\"utf-8\">\n", esc(p.Locale))
		ew.printf("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		ew.printf("<title>%s</title>\n", esc(p.Title))
		ew.printf("<link rel=\"canonical\" href=\"%s\">\n", esc(p.URL))
		for _, alt := range p.Languages {
			ew.printf("<link rel=\"alternate\" hreflang=\"%s\" href=\"%s\">\n", esc(alt.Hreflang), esc(alt.Href))
		}
		if ew.err != nil {
			return ew.err
		}
		for _, c := range head {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}

		ew.printf("</head>\n<body>\n<nav class=\"languages\">")
		for _, alt := range p.Languages {
			ew.printf("<a href=\"%s\" hreflang=\"%s\">%s</a>", esc(alt.Href), esc(alt.Hreflang), esc(locale.DisplayName(alt.Hreflang)))
		}
		ew.printf("</nav>\n<main>\n<h1>%s</h1>\n", esc(p.Title))
		for _, g := range p.Groups {
			ew.printf("<section class=\"category\" id=\"%s\">\n<h2><a href=\"%s\">%s</a></h2>\n", esc(string(g.Category)), esc(g.URL), esc(g.Name))
			writeEntries(ew, g.Entries)
			ew.printf("</section>\n")
		}
		ew.printf("</main>\n</body>\n</html>\n")

		return ew.err
	})
}

func writeEntries(ew *errWriter, entries []IndexEntry) {
	ew.printf("<ul>\n")
	for _, e := range entries {
		ew.printf("<li><a href=\"%s\">%s</a>", esc(e.URL), esc(e.Title))
		if e.Summary != "" {
			ew.printf(" <span>%s</span>", esc(e.Summary))
		}
		ew.printf("</li>\n")
	}
	ew.printf("</ul>\n")
}
