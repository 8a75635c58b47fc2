package build

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/quick-calculator/calcdir/internal/calculators"
	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/locale"
	"github.com/quick-calculator/calcdir/internal/paths"
	"github.com/quick-calculator/calcdir/internal/registry"
	"github.com/quick-calculator/calcdir/internal/renderer"
	"github.com/quick-calculator/calcdir/internal/seo"
	"github.com/quick-calculator/calcdir/internal/testutils"
)

var testSite = seo.Site{
	BaseURL:          "https://quick-calculator.org",
	Name:             "Quick Calculator",
	BaseLocaleAtRoot: true,
}

func setup(t *testing.T, allow []string, docs map[string]testutils.Document) (*Generator, *content.Store) {
	t.Helper()
	dir := t.TempDir()
	for name, doc := range docs {
		testutils.WriteDocument(t, dir, name, doc)
	}

	store, err := content.LoadDir(context.Background(), dir, content.Options{})
	require.NoError(t, err)

	b := registry.NewBuilder()
	require.NoError(t, calculators.Register(b))

	policy, err := locale.NewPolicy("en", testutils.GlobalLocales, testutils.ExtendedLocales, allow)
	require.NoError(t, err)

	r := renderer.New(store, b.Build(), policy, testSite, nil)

	return NewGenerator(r, store.Slugs(), nil), store
}

func allLocales() []string {
	return append(append([]string(nil), testutils.GlobalLocales...), testutils.ExtendedLocales...)
}

func TestGenerateWritesEveryPublishedPage(t *testing.T) {
	g, _ := setup(t, []string{"bmi-calculator"}, map[string]testutils.Document{
		"bmi-calculator": testutils.NewDocument("BMICalculator", "health", allLocales()...),
		"tip-calculator": testutils.NewDocument("TipCalculator", "utility", testutils.GlobalLocales...),
	})
	out := t.TempDir()

	result, err := g.Generate(context.Background(), Options{OutputDir: out, Workers: 3, Sitemaps: true})
	require.NoError(t, err)
	assert.Empty(t, result.Failures)
	assert.Len(t, result.Pages, 10)

	for _, rel := range []string{
		"bmi-calculator/index.html",
		"es/bmi-calculator/index.html",
		"fr/tip-calculator/index.html",
		"de/bmi-calculator/index.html",
		"nl/bmi-calculator/index.html",
	} {
		assert.FileExists(t, filepath.Join(out, rel))
	}
	assert.NoFileExists(t, filepath.Join(out, "en", "bmi-calculator", "index.html"))
	assert.NoFileExists(t, filepath.Join(out, "de", "tip-calculator", "index.html"))

	assert.Equal(t, []paths.Path{
		{Locale: "en", Slug: "bmi-calculator"},
		{Locale: "en", Slug: "tip-calculator"},
	}, PathsFromPages(result.Pages)[:2])

	snap := g.Metrics().Snapshot()
	assert.EqualValues(t, 10, snap.Pages)
	assert.EqualValues(t, 0, snap.Failed)
}

func TestGeneratePageContent(t *testing.T) {
	g, _ := setup(t, nil, map[string]testutils.Document{
		"bmi-calculator": testutils.NewDocument("BMICalculator", "health", testutils.GlobalLocales...),
	})
	out := t.TempDir()

	_, err := g.Generate(context.Background(), Options{OutputDir: out, Workers: 1})
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(out, "es", "bmi-calculator", "index.html"))
	require.NoError(t, err)
	defer f.Close()

	doc, err := html.Parse(f)
	require.NoError(t, err)

	var canonical, lang string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				lang = attr(n, "lang")
			case "link":
				if attr(n, "rel") == "canonical" {
					canonical = attr(n, "href")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	assert.Equal(t, "es", lang)
	assert.Equal(t, "https://quick-calculator.org/es/bmi-calculator", canonical)
}

func TestGenerateSkipsFailingPaths(t *testing.T) {
	g, _ := setup(t, nil, map[string]testutils.Document{
		"bmi-calculator": testutils.NewDocument("BMICalculator", "health", "en", "es", "pt"),
		"tip-calculator": testutils.NewDocument("TipCalculator", "utility", testutils.GlobalLocales...),
	})
	out := t.TempDir()

	result, err := g.Generate(context.Background(), Options{OutputDir: out, Workers: 2, Sitemaps: true})
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "fr", result.Failures[0].Locale)
	assert.Equal(t, "bmi-calculator", result.Failures[0].Slug)
	assert.True(t, errors.IsNotFound(result.Failures[0].Err))
	assert.Len(t, result.Pages, 7)
	assert.FileExists(t, filepath.Join(out, "fr", "tip-calculator", "index.html"))

	data, err := os.ReadFile(filepath.Join(out, SitemapFile("fr")))
	require.NoError(t, err)
	urls, err := SitemapURLs(data)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://quick-calculator.org/fr/",
		"https://quick-calculator.org/fr/categories/utility",
		"https://quick-calculator.org/fr/tip-calculator",
	}, urls)
}

func TestGenerateSurvivesPanickingWidget(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteDocument(t, dir, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", testutils.GlobalLocales...))
	testutils.WriteDocument(t, dir, "tip-calculator", testutils.NewDocument("TipCalculator", "utility", testutils.GlobalLocales...))
	store, err := content.LoadDir(context.Background(), dir, content.Options{})
	require.NoError(t, err)

	b := registry.NewBuilder()
	b.MustRegister("BMICalculator", registry.CalculatorFunc(func(string, registry.Props) templ.Component {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			panic("broken widget")
		})
	}))
	policy, err := locale.NewPolicy("en", testutils.GlobalLocales, nil, nil)
	require.NoError(t, err)
	g := NewGenerator(renderer.New(store, b.Build(), policy, testSite, nil), store.Slugs(), nil)

	out := t.TempDir()
	result, err := g.Generate(context.Background(), Options{OutputDir: out, Workers: 2})
	require.NoError(t, err)

	require.Len(t, result.Failures, len(testutils.GlobalLocales))
	for _, f := range result.Failures {
		assert.Equal(t, "bmi-calculator", f.Slug)
		assert.Equal(t, errors.ErrorTypeInternal, errors.TypeOf(f.Err))
	}
	assert.Len(t, result.Pages, len(testutils.GlobalLocales))
	assert.FileExists(t, filepath.Join(out, "de", "tip-calculator", "index.html"))
	assert.NoFileExists(t, filepath.Join(out, "bmi-calculator", "index.html"))
}

func TestGenerateSitemaps(t *testing.T) {
	g, _ := setup(t, []string{"bmi-calculator"}, map[string]testutils.Document{
		"bmi-calculator": testutils.NewDocument("BMICalculator", "health", allLocales()...),
		"tip-calculator": testutils.NewDocument("TipCalculator", "utility", allLocales()...),
	})
	out := t.TempDir()
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	result, err := g.Generate(context.Background(), Options{OutputDir: out, Workers: 2, Sitemaps: true, LastModified: stamp})
	require.NoError(t, err)

	for _, code := range allLocales() {
		assert.Contains(t, result.Files, SitemapFile(code))
	}

	data, err := os.ReadFile(filepath.Join(out, SitemapFile("en")))
	require.NoError(t, err)
	urls, err := SitemapURLs(data)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://quick-calculator.org/",
		"https://quick-calculator.org/categories/health",
		"https://quick-calculator.org/categories/utility",
		"https://quick-calculator.org/bmi-calculator",
		"https://quick-calculator.org/tip-calculator",
	}, urls)
	assert.Contains(t, string(data), "<lastmod>2026-03-01</lastmod>")

	data, err = os.ReadFile(filepath.Join(out, SitemapFile("de")))
	require.NoError(t, err)
	urls, err = SitemapURLs(data)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://quick-calculator.org/de/",
		"https://quick-calculator.org/de/categories/health",
		"https://quick-calculator.org/de/bmi-calculator",
	}, urls)

	index, err := os.ReadFile(filepath.Join(out, SitemapIndexFile))
	require.NoError(t, err)
	assert.Contains(t, string(index), "<sitemapindex")
	assert.Contains(t, string(index), "https://quick-calculator.org/sitemap-nl.xml")

	robots, err := os.ReadFile(filepath.Join(out, RobotsFile))
	require.NoError(t, err)
	assert.Contains(t, string(robots), "Sitemap: https://quick-calculator.org/sitemap.xml")
}

func TestGenerateCategoryPages(t *testing.T) {
	g, _ := setup(t, []string{"bmi-calculator"}, map[string]testutils.Document{
		"bmi-calculator": testutils.NewDocument("BMICalculator", "health", allLocales()...),
		"tip-calculator": testutils.NewDocument("TipCalculator", "utility", allLocales()...),
	})
	out := t.TempDir()

	_, err := g.Generate(context.Background(), Options{OutputDir: out, Workers: 2})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "categories", "health", "index.html"))
	assert.FileExists(t, filepath.Join(out, "es", "categories", "utility", "index.html"))
	assert.FileExists(t, filepath.Join(out, "nl", "categories", "health", "index.html"))
	assert.NoFileExists(t, filepath.Join(out, "nl", "categories", "utility", "index.html"))

	page, err := os.ReadFile(filepath.Join(out, "pt", "bmi-calculator", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `"item":"https://quick-calculator.org/pt/categories/health"`)

	data, err := os.ReadFile(filepath.Join(out, "pt", "categories", "health", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `href="/pt/bmi-calculator"`)
}

func TestCategoryFile(t *testing.T) {
	assert.Equal(t, filepath.Join("categories", "math", "index.html"), CategoryFile(testSite, "en", "en", content.CategoryMath))
	assert.Equal(t, filepath.Join("de", "categories", "math", "index.html"), CategoryFile(testSite, "en", "de", content.CategoryMath))
}

func TestGenerateWithoutSitemaps(t *testing.T) {
	g, _ := setup(t, nil, map[string]testutils.Document{
		"bmi-calculator": testutils.NewDocument("BMICalculator", "health", testutils.GlobalLocales...),
	})
	out := t.TempDir()

	result, err := g.Generate(context.Background(), Options{OutputDir: out})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"index.html", "es/index.html", "pt/index.html", "fr/index.html",
		"categories/health/index.html", "es/categories/health/index.html",
		"pt/categories/health/index.html", "fr/categories/health/index.html",
		NotFoundFile, ManifestFile,
	}, result.Files)
	assert.NoFileExists(t, filepath.Join(out, SitemapIndexFile))
	assert.FileExists(t, filepath.Join(out, NotFoundFile))
}

func TestGenerateManifest(t *testing.T) {
	g, _ := setup(t, nil, map[string]testutils.Document{
		"bmi-calculator": testutils.NewDocument("BMICalculator", "health", "en", "es", "pt"),
	})
	out := t.TempDir()

	_, err := g.Generate(context.Background(), Options{OutputDir: out, Workers: 1})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, ManifestFile))
	require.NoError(t, err)
	m, err := ReadManifest(data)
	require.NoError(t, err)

	require.Len(t, m.Pages, 3)
	for _, p := range m.Pages {
		assert.NotEmpty(t, p.Hash)
		assert.Positive(t, p.Size)
	}
	require.Len(t, m.Failures, 1)
	assert.Equal(t, "fr", m.Failures[0].Locale)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "generatedAt")
}

func TestGenerateIsDeterministic(t *testing.T) {
	docs := map[string]testutils.Document{
		"bmi-calculator": testutils.NewDocument("BMICalculator", "health", testutils.GlobalLocales...),
		"tip-calculator": testutils.NewDocument("TipCalculator", "utility", testutils.GlobalLocales...),
		"legacy":         testutils.NewDocument("LegacyCalc", "math", testutils.GlobalLocales...),
	}
	g, _ := setup(t, nil, docs)
	stamp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	outA, outB := t.TempDir(), t.TempDir()
	_, err := g.Generate(context.Background(), Options{OutputDir: outA, Workers: 4, Sitemaps: true, LastModified: stamp})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), Options{OutputDir: outB, Workers: 1, Sitemaps: true, LastModified: stamp})
	require.NoError(t, err)

	for _, name := range []string{ManifestFile, SitemapIndexFile, SitemapFile("es"), "legacy/index.html"} {
		a, err := os.ReadFile(filepath.Join(outA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(outB, name))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), name)
	}
}

func TestGenerateCancelled(t *testing.T) {
	g, _ := setup(t, nil, map[string]testutils.Document{
		"bmi-calculator": testutils.NewDocument("BMICalculator", "health", testutils.GlobalLocales...),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, Options{OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateRequiresOutputDir(t *testing.T) {
	g, _ := setup(t, nil, map[string]testutils.Document{
		"bmi-calculator": testutils.NewDocument("BMICalculator", "health", "en"),
	})

	_, err := g.Generate(context.Background(), Options{})
	assert.True(t, errors.IsConfigError(err))
}

func TestPageFile(t *testing.T) {
	p := paths.Path{Locale: "en", Slug: "bmi-calculator"}
	assert.Equal(t, filepath.Join("bmi-calculator", "index.html"), PageFile(testSite, "en", p))

	site := testSite
	site.BaseLocaleAtRoot = false
	assert.Equal(t, filepath.Join("en", "bmi-calculator", "index.html"), PageFile(site, "en", p))
}

func TestHomeFile(t *testing.T) {
	assert.Equal(t, "index.html", HomeFile(testSite, "en", "en"))
	assert.Equal(t, filepath.Join("de", "index.html"), HomeFile(testSite, "en", "de"))
}

func TestGenerateHomePages(t *testing.T) {
	g, _ := setup(t, []string{"bmi-calculator"}, map[string]testutils.Document{
		"bmi-calculator": testutils.NewDocument("BMICalculator", "health", allLocales()...),
		"tip-calculator": testutils.NewDocument("TipCalculator", "utility", allLocales()...),
	})
	out := t.TempDir()

	_, err := g.Generate(context.Background(), Options{OutputDir: out, Workers: 2})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "de", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `href="/de/bmi-calculator"`)
	assert.NotContains(t, string(data), "tip-calculator")

	data, err = os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `href="/tip-calculator"`)
}

func TestHasher(t *testing.T) {
	h := NewHasher()
	assert.Equal(t, h.Sum([]byte("abc")), h.Sum([]byte("abc")))
	assert.NotEqual(t, h.Sum([]byte("abc")), h.Sum([]byte("abd")))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}
