package seo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/locale"
)

var site = Site{
	BaseURL:            "https://quick-calculator.org",
	Name:               "Quick Calculator",
	BaseLocaleAtRoot:   true,
	DefaultTitle:       "Quick Calculator",
	DefaultDescription: "Free online calculators",
}

func testPolicy(t *testing.T) *locale.Policy {
	t.Helper()
	p, err := locale.NewPolicy("en", []string{"en", "es", "pt", "fr"}, []string{"de", "nl"}, []string{"loan-calculator"})
	require.NoError(t, err)

	return p
}

func bmiRecord(t *testing.T) *content.Record {
	t.Helper()
	record, err := content.Parse("bmi-calculator", []byte(`{
		"en": {"title": "BMI Calculator", "seoTitle": "BMI Calculator - Body Mass Index", "metaDescription": "Work out your BMI.", "category": "health", "component": "BMICalculator"},
		"es": {"title": "Calculadora de IMC", "summary": "Calcula tu IMC.", "category": "health", "component": "BMICalculator"},
		"pt": {"title": "", "category": "health", "component": "BMICalculator"}
	}`))
	require.NoError(t, err)

	return record
}

func hreflangs(md Metadata) []string {
	var out []string
	for _, a := range md.Alternates {
		out = append(out, a.Hreflang)
	}

	return out
}

func TestGenerateNotAllowlisted(t *testing.T) {
	md := Generate(bmiRecord(t), "es", testPolicy(t), site)

	assert.Equal(t, "Calculadora de IMC", md.Title, "falls back to title")
	assert.Equal(t, "Calcula tu IMC.", md.Description, "falls back to summary")
	assert.Equal(t, "https://quick-calculator.org/es/bmi-calculator", md.CanonicalURL)
	assert.Equal(t, "es-ES", md.InLanguage)
	assert.Equal(t, []string{"en", "es", "pt", "fr", "x-default"}, hreflangs(md))

	xd, ok := md.Alternate(XDefault)
	require.True(t, ok)
	assert.Equal(t, "https://quick-calculator.org/bmi-calculator", xd.Href)

	en, ok := md.Alternate("en")
	require.True(t, ok)
	assert.Equal(t, xd.Href, en.Href)

	_, ok = md.Alternate("de")
	assert.False(t, ok)
}

func TestGenerateAllowlisted(t *testing.T) {
	record := bmiRecord(t)
	record.Slug = "loan-calculator"

	md := Generate(record, "de", testPolicy(t), site)
	assert.Equal(t, []string{"en", "es", "pt", "fr", "x-default", "de", "nl"}, hreflangs(md))

	de, _ := md.Alternate("de")
	assert.Equal(t, "https://quick-calculator.org/de/loan-calculator", de.Href)
	assert.Equal(t, de.Href, md.CanonicalURL)
}

func TestTitleAndDescriptionFallbacks(t *testing.T) {
	record := bmiRecord(t)

	en := Generate(record, "en", testPolicy(t), site)
	assert.Equal(t, "BMI Calculator - Body Mass Index", en.Title)
	assert.Equal(t, "Work out your BMI.", en.Description)

	pt := Generate(record, "pt", testPolicy(t), site)
	assert.Equal(t, site.DefaultTitle, pt.Title)
	assert.Equal(t, site.DefaultDescription, pt.Description)

	fr := Generate(record, "fr", testPolicy(t), site)
	assert.Equal(t, site.DefaultTitle, fr.Title, "absent section uses site defaults")
}

func TestPrefixedBaseLocale(t *testing.T) {
	prefixed := site
	prefixed.BaseLocaleAtRoot = false

	md := Generate(bmiRecord(t), "en", testPolicy(t), prefixed)
	assert.Equal(t, "https://quick-calculator.org/en/bmi-calculator", md.CanonicalURL)
	xd, _ := md.Alternate(XDefault)
	assert.Equal(t, md.CanonicalURL, xd.Href)
}

func TestCategoryNames(t *testing.T) {
	assert.Equal(t, "Calculadoras de Salud y Fitness", CategoryName("es", content.CategoryHealth))
	assert.Equal(t, "Calculadoras de Conversión", CategoryName("es", content.CategoryConversion))
	assert.Equal(t, "Autres Calculateurs", CategoryName("fr", content.CategoryOther))
	assert.Equal(t, "Conversion Calculators", CategoryName("en", content.CategoryConversion))
	assert.Equal(t, "Conversion Calculators", CategoryName("it", content.CategoryConversion))

	for _, cat := range content.Categories {
		for _, code := range []string{"en", "es", "pt", "fr", "de", "nl"} {
			_, ok := categoryNames[cat][code]
			assert.True(t, ok, "%s has no %s label", cat, code)
		}
	}
	assert.Equal(t, "Accueil", HomeName("fr"))
	assert.Equal(t, "Home", HomeName("it"))
}

func TestCalculatorSchema(t *testing.T) {
	graph := CalculatorSchema(bmiRecord(t), "es", testPolicy(t), site)

	data, err := graph.JSON()
	require.NoError(t, err)

	var decoded struct {
		Context string           `json:"@context"`
		Graph   []map[string]any `json:"@graph"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "https://schema.org", decoded.Context)
	require.Len(t, decoded.Graph, 3)

	types := []any{decoded.Graph[0]["@type"], decoded.Graph[1]["@type"], decoded.Graph[2]["@type"]}
	assert.Equal(t, []any{"WebPage", "WebApplication", "BreadcrumbList"}, types)
	assert.Equal(t, "es-ES", decoded.Graph[0]["inLanguage"])
	assert.Equal(t, "HealthApplication", decoded.Graph[1]["applicationCategory"])

	items := decoded.Graph[2]["itemListElement"].([]any)
	require.Len(t, items, 3)
	first := items[0].(map[string]any)
	second := items[1].(map[string]any)
	third := items[2].(map[string]any)
	assert.Equal(t, "Inicio", first["name"])
	assert.Equal(t, "https://quick-calculator.org/es", first["item"])
	assert.Equal(t, "https://quick-calculator.org/es/categories/health", second["item"])
	assert.Equal(t, "Calculadora de IMC", third["name"])
	assert.EqualValues(t, 3, third["position"])
}

func TestBreadcrumbsAtRoot(t *testing.T) {
	record := bmiRecord(t)
	md := Generate(record, "en", testPolicy(t), site)
	crumbs := Breadcrumbs(record, "en", testPolicy(t), site, md)

	assert.Equal(t, "https://quick-calculator.org/", crumbs[0].URL)
	assert.Equal(t, "https://quick-calculator.org/categories/health", crumbs[1].URL)
	assert.Equal(t, "BMI Calculator", crumbs[2].Name)
}
