package renderer

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/a-h/templ"

	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/locale"
)

// Document renders the page as a complete HTML document. Extra components
// are written at the end of <head>.
func (p *Page) Document(head ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ld, err := p.Schema.JSON()
		if err != nil {
			return fmt.Errorf("encoding structured data: %w", err)
		}

		ew := &errWriter{w: w}
		ew.printf("<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n", esc(p.Locale))
		ew.printf("<meta charset=\"utf-8\">\n")
		ew.printf("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		ew.printf("<title>%s</title>\n", esc(p.Metadata.Title))
		ew.printf("<meta name=\"description\" content=\"%s\">\n", esc(p.Metadata.Description))
		ew.printf("<link rel=\"canonical\" href=\"%s\">\n", esc(p.Metadata.CanonicalURL))
		for _, alt := range p.Metadata.Alternates {
			ew.printf("<link rel=\"alternate\" hreflang=\"%s\" href=\"%s\">\n", esc(alt.Hreflang), esc(alt.Href))
		}
		ew.printf("<meta property=\"og:title\" content=\"%s\">\n", esc(p.Metadata.Title))
		ew.printf("<meta property=\"og:url\" content=\"%s\">\n", esc(p.Metadata.CanonicalURL))
		ew.printf("<meta property=\"og:locale\" content=\"%s\">\n", esc(p.Metadata.InLanguage))
		ew.printf("<script type=\"application/ld+json\">%s</script>\n", ld)
		if ew.err != nil {
			return ew.err
		}
		for _, c := range head {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}

		ew.printf("</head>\n<body>\n<main class=\"calculator-page\" data-slug=\"%s\">\n", esc(p.Slug))
		ew.printf("<nav class=\"languages\">")
		for _, alt := range p.Metadata.Alternates {
			if alt.Hreflang == "x-default" {
				continue
			}
			ew.printf("<a hreflang=\"%s\" href=\"%s\">%s</a>", esc(alt.Hreflang), esc(alt.Href), esc(locale.DisplayName(alt.Hreflang)))
		}
		ew.printf("</nav>\n")
		ew.printf("<h1>%s</h1>\n", esc(p.Content.Title))
		if p.Content.Summary != "" {
			ew.printf("<p class=\"summary\">%s</p>\n", esc(p.Content.Summary))
		}
		if ew.err != nil {
			return ew.err
		}

		if err := p.renderComponent(ctx, w); err != nil {
			return err
		}

		writeSEOContent(ew, p.Content.SEOContent)
		if len(p.Related) > 0 {
			ew.printf("\n<aside class=\"related\">\n<h2>%s</h2>\n", esc(RelatedHeading(p.Locale)))
			writeEntries(ew, p.Related)
			ew.printf("</aside>")
		}
		ew.printf("\n</main>\n</body>\n</html>\n")

		return ew.err
	})
}

// renderComponent renders the calculator widget, turning a panic into an
// internal error so one broken widget cannot stop a build.
func (p *Page) renderComponent(ctx context.Context, w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewInternalError(errors.ErrCodeInternalError,
				fmt.Sprintf("component %s panicked: %v", p.ComponentID, r), nil).
				WithSubject(p.Slug).
				WithLocale(p.Locale)
		}
	}()

	return p.Component.Render(ctx, w)
}

// writeSEOContent renders the string entries of the seoContent block as
// Markdown in key order. Structured entries are left to the client.
func writeSEOContent(ew *errWriter, block map[string]any) {
	if len(block) == 0 {
		return
	}

	keys := make([]string, 0, len(block))
	for k := range block {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ew.printf("\n<article class=\"seo-content\">")
	for _, k := range keys {
		text, ok := block[k].(string)
		if !ok || text == "" {
			continue
		}
		rendered, err := RenderMarkdown(text)
		if err != nil {
			ew.printf("<div data-key=\"%s\"><p>%s</p></div>", esc(k), esc(text))

			continue
		}
		ew.printf("<div data-key=\"%s\">%s</div>", esc(k), rendered)
	}
	ew.printf("</article>")
}

// NotFoundDocument renders the page served for unknown or unpublished paths.
func NotFoundDocument(code, homeURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf("<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n<meta charset=\"utf-8\">\n", esc(code))
		ew.printf("<meta name=\"robots\" content=\"noindex\">\n<title>404 - Not Found</title>\n</head>\n")
		ew.printf("<body>\n<main class=\"not-found\"><h1>404</h1><p>This calculator does not exist in this language.</p>")
		ew.printf("<a href=\"%s\">Home</a></main>\n</body>\n</html>\n", esc(homeURL))

		return ew.err
	})
}

func esc(s string) string { return templ.EscapeString(s) }

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
