package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/quick-calculator/calcdir/internal/calculators"
	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/locale"
	"github.com/quick-calculator/calcdir/internal/registry"
	"github.com/quick-calculator/calcdir/internal/seo"
	"github.com/quick-calculator/calcdir/internal/testutils"
)

var testSite = seo.Site{
	BaseURL:            "https://quick-calculator.org",
	Name:               "Quick Calculator",
	BaseLocaleAtRoot:   true,
	DefaultTitle:       "Quick Calculator",
	DefaultDescription: "Free online calculators",
}

func record(t *testing.T, slug string, doc testutils.Document) *content.Record {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	r, err := content.Parse(slug, data)
	require.NoError(t, err)

	return r
}

func newRenderer(t *testing.T, allow []string, records ...*content.Record) *Renderer {
	t.Helper()
	store, err := content.NewStore(records, nil)
	require.NoError(t, err)

	b := registry.NewBuilder()
	require.NoError(t, calculators.Register(b))

	policy, err := locale.NewPolicy("en", testutils.GlobalLocales, testutils.ExtendedLocales, allow)
	require.NoError(t, err)

	bundles := content.Bundles{"es": {"calculator": map[string]any{"noscript": "Activa JavaScript."}}}

	return New(store, b.Build(), policy, testSite, bundles)
}

func renderString(t *testing.T, page *Page) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, page.Document().Render(context.Background(), &buf))

	return buf.String()
}

// Scenario A.
func TestRenderRegisteredCalculator(t *testing.T) {
	r := newRenderer(t, nil, record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", testutils.GlobalLocales...)))

	page, err := r.Render(context.Background(), "es", "bmi-calculator")
	require.NoError(t, err)

	assert.True(t, page.Registered)
	assert.Equal(t, "Calculadora de IMC", page.Content.Title)
	assert.Equal(t, "https://quick-calculator.org/es/bmi-calculator", page.Metadata.CanonicalURL)

	var langs []string
	for _, a := range page.Metadata.Alternates {
		langs = append(langs, a.Hreflang)
	}
	assert.ElementsMatch(t, []string{"en", "es", "pt", "fr", "x-default"}, langs)

	out := renderString(t, page)
	assert.Contains(t, out, `data-calculator="BMICalculator"`)
	assert.Contains(t, out, "Activa JavaScript.")
}

// Scenario B.
func TestRenderMissingLocaleIsNotFound(t *testing.T) {
	r := newRenderer(t, nil, record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en", "es", "pt")))

	page, err := r.Render(context.Background(), "fr", "bmi-calculator")
	assert.Nil(t, page)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

// Scenario C.
func TestRenderUnregisteredUsesPlaceholder(t *testing.T) {
	r := newRenderer(t, nil, record(t, "legacy-calculator", testutils.NewDocument("LegacyCalc", "math", testutils.GlobalLocales...)))

	page, err := r.Render(context.Background(), "en", "legacy-calculator")
	require.NoError(t, err)
	assert.False(t, page.Registered)
	assert.Equal(t, "LegacyCalc", page.ComponentID)
	assert.Contains(t, renderString(t, page), registry.PlaceholderMessage)
}

func TestRenderNotFoundCases(t *testing.T) {
	r := newRenderer(t, []string{"bmi-calculator"},
		record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en", "es", "pt", "fr", "de")),
		record(t, "tip-calculator", testutils.NewDocument("TipCalculator", "utility", "en", "es", "pt", "fr", "de")),
	)

	tests := []struct {
		name   string
		locale string
		slug   string
	}{
		{"unknown slug", "en", "nope-calculator"},
		{"unknown locale", "it", "bmi-calculator"},
		{"extended locale not allowlisted", "de", "tip-calculator"},
		{"allowlisted but section absent", "nl", "bmi-calculator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := r.Render(context.Background(), tt.locale, tt.slug)
			assert.Nil(t, page)
			assert.True(t, errors.IsNotFound(err), "got %v", err)
		})
	}

	page, err := r.Render(context.Background(), "de", "bmi-calculator")
	require.NoError(t, err)
	assert.Equal(t, "BMI-Rechner", page.Content.Title)
}

func TestRenderHonoursContext(t *testing.T) {
	r := newRenderer(t, nil, record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, "en", "bmi-calculator")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderRecoversFromPanickingCalculator(t *testing.T) {
	store, err := content.NewStore([]*content.Record{record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en"))}, nil)
	require.NoError(t, err)
	b := registry.NewBuilder()
	b.MustRegister("BMICalculator", registry.CalculatorFunc(func(string, registry.Props) templ.Component {
		panic("boom")
	}))
	policy, err := locale.NewPolicy("en", []string{"en"}, nil, nil)
	require.NoError(t, err)

	page, err := New(store, b.Build(), policy, testSite, nil).Render(context.Background(), "en", "bmi-calculator")
	assert.Nil(t, page)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInternal, errors.TypeOf(err))
}

func TestDocumentRecoversFromPanickingWidget(t *testing.T) {
	store, err := content.NewStore([]*content.Record{record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en"))}, nil)
	require.NoError(t, err)
	b := registry.NewBuilder()
	b.MustRegister("BMICalculator", registry.CalculatorFunc(func(string, registry.Props) templ.Component {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			panic("broken widget")
		})
	}))
	policy, err := locale.NewPolicy("en", []string{"en"}, nil, nil)
	require.NoError(t, err)

	page, err := New(store, b.Build(), policy, testSite, nil).Render(context.Background(), "en", "bmi-calculator")
	require.NoError(t, err)

	err = page.Document().Render(context.Background(), io.Discard)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInternal, errors.TypeOf(err))
	assert.Contains(t, err.Error(), "broken widget")
}

func TestDocumentHead(t *testing.T) {
	r := newRenderer(t, []string{"bmi-calculator"}, record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en", "es", "pt", "fr", "de", "nl")))
	page, err := r.Render(context.Background(), "en", "bmi-calculator")
	require.NoError(t, err)

	doc, err := html.Parse(strings.NewReader(renderString(t, page)))
	require.NoError(t, err)

	var (
		title     string
		canonical string
		hreflangs []string
		ldJSON    string
		htmlLang  string
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			attrs := map[string]string{}
			for _, a := range n.Attr {
				attrs[a.Key] = a.Val
			}
			switch n.Data {
			case "html":
				htmlLang = attrs["lang"]
			case "title":
				if n.FirstChild != nil {
					title = n.FirstChild.Data
				}
			case "link":
				switch attrs["rel"] {
				case "canonical":
					canonical = attrs["href"]
				case "alternate":
					hreflangs = append(hreflangs, attrs["hreflang"])
				}
			case "script":
				if attrs["type"] == "application/ld+json" && n.FirstChild != nil {
					ldJSON = n.FirstChild.Data
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	assert.Equal(t, "en", htmlLang)
	assert.Equal(t, "BMI Calculator", title)
	assert.Equal(t, "https://quick-calculator.org/bmi-calculator", canonical)
	assert.Equal(t, []string{"en", "es", "pt", "fr", "x-default", "de", "nl"}, hreflangs)

	var graph map[string]any
	require.NoError(t, json.Unmarshal([]byte(ldJSON), &graph))
	assert.Equal(t, "https://schema.org", graph["@context"])
}

func TestDocumentExtraHead(t *testing.T) {
	r := newRenderer(t, nil, record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en")))
	page, err := r.Render(context.Background(), "en", "bmi-calculator")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, page.Document(templ.Raw(`<script id="reload"></script>`)).Render(context.Background(), &buf))
	out := buf.String()
	assert.Less(t, strings.Index(out, `id="reload"`), strings.Index(out, "</head>"))
}

func TestNotFoundDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NotFoundDocument("es", "https://quick-calculator.org/es").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `lang="es"`)
	assert.Contains(t, buf.String(), "noindex")
}

func TestIndex(t *testing.T) {
	r := newRenderer(t, []string{"bmi-calculator"},
		record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en", "es", "pt", "fr", "de")),
		record(t, "tip-calculator", testutils.NewDocument("TipCalculator", "utility", "en", "es", "pt", "fr", "de")),
		record(t, "loan-calculator", testutils.NewDocument("LoanCalculator", "financial", "en", "pt", "fr")),
	)

	es, err := r.Index(context.Background(), "es")
	require.NoError(t, err)
	assert.Equal(t, 2, es.Len())
	assert.Equal(t, "https://quick-calculator.org/es/", es.URL)
	require.Len(t, es.Groups, 2)
	assert.Equal(t, content.CategoryHealth, es.Groups[0].Category)
	assert.Equal(t, "/es/bmi-calculator", es.Groups[0].Entries[0].URL)

	en, err := r.Index(context.Background(), "en")
	require.NoError(t, err)
	assert.Equal(t, 3, en.Len())
	assert.Equal(t, content.CategoryFinancial, en.Groups[0].Category)
	assert.Equal(t, "https://quick-calculator.org/", en.URL)

	de, err := r.Index(context.Background(), "de")
	require.NoError(t, err)
	require.Equal(t, 1, de.Len())
	assert.Equal(t, "bmi-calculator", de.Groups[0].Entries[0].Slug)

	_, err = r.Index(context.Background(), "it")
	assert.True(t, errors.IsNotFound(err))
}

func TestIndexDocument(t *testing.T) {
	r := newRenderer(t, nil, record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", testutils.GlobalLocales...)))
	page, err := r.Index(context.Background(), "fr")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, page.Document().Render(context.Background(), &buf))
	out := buf.String()

	assert.Contains(t, out, `<html lang="fr">`)
	assert.Contains(t, out, `href="/fr/bmi-calculator"`)
	assert.Contains(t, out, `hreflang="pt"`)
	_, err = html.Parse(strings.NewReader(out))
	require.NoError(t, err)
}

func TestDocumentRendersSEOContentMarkdown(t *testing.T) {
	doc := testutils.NewDocument("BMICalculator", "health", testutils.GlobalLocales...)
	doc["en"]["seoContent"] = map[string]any{
		"introduction": "Your **BMI** is a screening tool.\n\n- weight\n- height",
		"notes":        "<script>alert(1)</script>",
		"faqs":         []any{"ignored"},
	}
	r := newRenderer(t, nil, record(t, "bmi-calculator", doc))

	page, err := r.Render(context.Background(), "en", "bmi-calculator")
	require.NoError(t, err)
	out := renderString(t, page)

	assert.Contains(t, out, `<div data-key="introduction"><p>Your <strong>BMI</strong> is a screening tool.</p>`)
	assert.Contains(t, out, "<li>weight</li>")
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.NotContains(t, out, `data-key="faqs"`)
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("## Formula\n\nBMI = kg / m²")
	require.NoError(t, err)
	assert.Equal(t, "<h2 id=\"formula\">Formula</h2>\n<p>BMI = kg / m²</p>\n", string(out))
}

func TestCategory(t *testing.T) {
	r := newRenderer(t, []string{"bmi-calculator"},
		record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en", "es", "pt", "fr", "de")),
		record(t, "tdee-calculator", testutils.NewDocument("TDEECalculator", "health", "en", "es")),
		record(t, "tip-calculator", testutils.NewDocument("TipCalculator", "utility", "en", "es", "pt", "fr")),
	)

	es, err := r.Category(context.Background(), "es", content.CategoryHealth)
	require.NoError(t, err)
	assert.Equal(t, "https://quick-calculator.org/es/categories/health", es.URL)
	assert.Equal(t, "Calculadoras de Salud y Fitness", es.Title)
	assert.Len(t, es.Entries, 2)

	var langs []string
	for _, alt := range es.Languages {
		langs = append(langs, alt.Hreflang)
	}
	assert.Equal(t, []string{"en", "es", "pt", "fr", "de"}, langs)

	en, err := r.Category(context.Background(), "en", content.CategoryHealth)
	require.NoError(t, err)
	assert.Equal(t, "https://quick-calculator.org/categories/health", en.URL)

	_, err = r.Category(context.Background(), "de", content.CategoryUtility)
	assert.True(t, errors.IsNotFound(err))
	_, err = r.Category(context.Background(), "en", content.CategoryMath)
	assert.True(t, errors.IsNotFound(err))
	_, err = r.Category(context.Background(), "it", content.CategoryHealth)
	assert.True(t, errors.IsNotFound(err))

	assert.Equal(t, []content.Category{content.CategoryHealth}, r.Categories("de"))
	assert.Equal(t, []content.Category{content.CategoryHealth, content.CategoryUtility}, r.Categories("fr"))

	var buf bytes.Buffer
	require.NoError(t, es.Document().Render(context.Background(), &buf))
	out := buf.String()
	assert.Contains(t, out, `<link rel="canonical" href="https://quick-calculator.org/es/categories/health">`)
	assert.Contains(t, out, `href="/es/tdee-calculator"`)
	_, err = html.Parse(strings.NewReader(out))
	require.NoError(t, err)
}

func TestBreadcrumbCategoryIsServed(t *testing.T) {
	r := newRenderer(t, nil, record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", testutils.GlobalLocales...)))

	page, err := r.Render(context.Background(), "fr", "bmi-calculator")
	require.NoError(t, err)
	crumbs := seo.Breadcrumbs(page.Record, "fr", r.Policy(), r.Site(), page.Metadata)

	category, err := r.Category(context.Background(), "fr", page.Record.Category)
	require.NoError(t, err)
	assert.Equal(t, category.URL, crumbs[1].URL)
}

func TestRelated(t *testing.T) {
	r := newRenderer(t, []string{"bmi-calculator"},
		record(t, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en", "es", "pt", "fr", "de")),
		record(t, "tdee-calculator", testutils.NewDocument("TDEECalculator", "health", "en", "es")),
		record(t, "calorie-calculator", testutils.NewDocument("CalorieCalculator", "health", "en")),
		record(t, "tip-calculator", testutils.NewDocument("TipCalculator", "utility", "en", "es")),
	)

	slugs := func(entries []IndexEntry) []string {
		var out []string
		for _, e := range entries {
			out = append(out, e.Slug)
		}

		return out
	}

	assert.ElementsMatch(t, []string{"tdee-calculator", "calorie-calculator"}, slugs(r.Related("en", "bmi-calculator")))
	assert.Equal(t, []string{"tdee-calculator"}, slugs(r.Related("es", "bmi-calculator")))
	assert.Empty(t, r.Related("de", "bmi-calculator"))

	picked := r.WithRelated(map[string][]string{"bmi-calculator": {"tip-calculator", "missing-calculator", "calorie-calculator"}}, 2)
	assert.Equal(t, []string{"tip-calculator", "calorie-calculator"}, slugs(picked.Related("en", "bmi-calculator")))
	assert.Equal(t, []string{"tip-calculator", "tdee-calculator"}, slugs(picked.Related("es", "bmi-calculator")))

	assert.Empty(t, r.WithRelated(nil, 0).Related("en", "bmi-calculator"))
	assert.Empty(t, r.Related("en", "nope"))

	page, err := r.Render(context.Background(), "es", "bmi-calculator")
	require.NoError(t, err)
	out := renderString(t, page)
	assert.Contains(t, out, "<h2>Calculadoras Relacionadas</h2>")
	assert.Contains(t, out, `href="/es/tdee-calculator"`)
}
