package renderer

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/locale"
	"github.com/quick-calculator/calcdir/internal/seo"
)

// CategoryPage lists the calculators of one category in one locale.
type CategoryPage struct {
	Locale   string
	Category content.Category
	Title    string
	URL      string
	HomeURL  string
	Entries  []IndexEntry
	// Languages links the same category in every other locale that lists it.
	Languages []seo.Alternate
}

// Category builds the index page of category in code. A category with no
// calculators published in code is not found.
func (r *Renderer) Category(ctx context.Context, code string, category content.Category) (*CategoryPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.policy.Known(code) {
		return nil, errors.NewNotFoundError(errors.ErrCodeLocaleNotFound, "unknown locale").WithLocale(code)
	}

	entries := r.entries(code)[category]
	if len(entries) == 0 {
		return nil, errors.NewNotFoundError(errors.ErrCodeCategoryNotFound, "no calculators in category").
			WithSubject(string(category)).
			WithLocale(code)
	}

	page := &CategoryPage{
		Locale:   code,
		Category: category,
		Title:    seo.CategoryName(code, category),
		URL:      seo.CategoryURL(r.site, r.policy, code, category),
		HomeURL:  r.homeURL(code),
		Entries:  entries,
	}
	for _, other := range r.policy.All() {
		if len(r.entries(other)[category]) == 0 {
			continue
		}
		page.Languages = append(page.Languages, seo.Alternate{
			Hreflang: other,
			Href:     seo.CategoryURL(r.site, r.policy, other, category),
		})
	}

	return page, nil
}

// Categories returns the categories with at least one calculator published
// in code, in display order.
func (r *Renderer) Categories(code string) []content.Category {
	byCategory := r.entries(code)

	var out []content.Category
	for _, cat := range content.Categories {
		if len(byCategory[cat]) > 0 {
			out = append(out, cat)
		}
	}

	return out
}

// Document renders the category page as a complete HTML document.
func (p *CategoryPage) Document(head ...templ.Component) templ.Component {
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
		ew.printf("</nav>\n<main class=\"category\" data-category=\"%s\">\n", esc(string(p.Category)))
		ew.printf("<a class=\"home\" href=\"%s\">%s</a>\n<h1>%s</h1>\n", esc(p.HomeURL), esc(seo.HomeName(p.Locale)), esc(p.Title))
		writeEntries(ew, p.Entries)
		ew.printf("</main>\n</body>\n</html>\n")

		return ew.err
	})
}
