// Package renderer turns a (locale, slug) request into a renderable page.
//
// It is the request path: resolve the slug, load the record, check the
// locale policy, resolve the component and derive the metadata. Unknown
// slugs and unpublished locales are reported as not-found errors; an
// unregistered component still renders through the placeholder.
package renderer

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/locale"
	"github.com/quick-calculator/calcdir/internal/registry"
	"github.com/quick-calculator/calcdir/internal/seo"
)

// Page is a fully resolved calculator page.
type Page struct {
	Locale     string
	Slug       string
	Record     *content.Record
	Content    *content.LocaleContent
	Metadata   seo.Metadata
	Schema     seo.Graph
	Component  templ.Component
	Registered bool
	// ComponentID is the id named by the content, registered or not.
	ComponentID string
	Related     []IndexEntry
}

// Renderer resolves pages against one immutable snapshot.
type Renderer struct {
	store    *content.Store
	registry *registry.Registry
	policy   *locale.Policy
	site     seo.Site
	bundles  content.Bundles

	related      map[string][]string
	relatedLimit int
}

// New creates a renderer.
func New(store *content.Store, reg *registry.Registry, policy *locale.Policy, site seo.Site, bundles content.Bundles) *Renderer {
	return &Renderer{
		store:    store,
		registry: reg,
		policy:   policy,
		site:     site,
		bundles:  bundles,

		relatedLimit: DefaultRelatedLimit,
	}
}

// Render resolves (code, slug). It returns a not-found error for an unknown
// slug, a locale the slug is not published in, or a missing locale section.
func (r *Renderer) Render(ctx context.Context, code, slug string) (page *Page, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			page = nil
			err = errors.NewInternalError(errors.ErrCodeInternalError,
				fmt.Sprintf("rendering %s/%s panicked: %v", code, slug, p), nil)
		}
	}()

	record, err := r.store.Lookup(slug)
	if err != nil {
		return nil, err
	}

	if !r.policy.Supports(code, record.Slug) {
		return nil, errors.NewNotFoundError(errors.ErrCodeLocaleNotFound, "locale not published for this calculator").
			WithSubject(slug).
			WithLocale(code)
	}

	lc, ok := content.GetLocale(record, code)
	if !ok {
		return nil, errors.NewNotFoundError(errors.ErrCodeLocaleNotFound, "no content for locale").
			WithSubject(slug).
			WithLocale(code)
	}

	resolution := r.registry.Resolve(record.ComponentID)
	props := registry.Props{
		Slug:     record.Slug,
		Title:    lc.Title,
		Category: string(record.Category),
		Labels:   r.labels(code),
	}

	return &Page{
		Locale:      code,
		Slug:        record.Slug,
		Record:      record,
		Content:     lc,
		Metadata:    seo.Generate(record, code, r.policy, r.site),
		Schema:      seo.CalculatorSchema(record, code, r.policy, r.site),
		Component:   resolution.Calculator.Render(code, props),
		Registered:  resolution.Registered,
		ComponentID: record.ComponentID,
		Related:     r.Related(code, record.Slug),
	}, nil
}

// labels returns the calculator labels from the locale's bundle, if any.
func (r *Renderer) labels(code string) map[string]any {
	bundle, ok := r.bundles[code]
	if !ok {
		return nil
	}
	if calc, ok := bundle["calculator"].(map[string]any); ok {
		return calc
	}

	return bundle
}

// Site returns the site settings the renderer was built with.
func (r *Renderer) Site() seo.Site { return r.site }

// Policy returns the locale policy the renderer was built with.
func (r *Renderer) Policy() *locale.Policy { return r.policy }
