// Package testutils builds throwaway content trees for tests.
package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quick-calculator/calcdir/internal/config"
)

// Section is one locale's content in a test document.
type Section map[string]any

// Document is a test calculator document keyed by locale.
type Document map[string]Section

// Locales used by the standard fixtures.
var (
	GlobalLocales   = []string{"en", "es", "pt", "fr"}
	ExtendedLocales = []string{"de", "nl"}
)

// translations holds a plausible title per locale so fixtures do not trip
// the leak heuristic.
var translations = map[string][2]string{
	"en": {"BMI Calculator", "Calculate your body mass index from weight and height."},
	"es": {"Calculadora de IMC", "Calcula tu índice de masa corporal a partir del peso y la altura."},
	"pt": {"Calculadora de IMC", "Calcule o seu índice de massa corporal a partir do peso e da altura."},
	"fr": {"Calculateur d'IMC", "Calculez votre indice de masse corporelle à partir du poids et de la taille."},
	"de": {"BMI-Rechner", "Berechnen Sie Ihren Body-Mass-Index aus Gewicht und Größe."},
	"nl": {"BMI-rekenmachine", "Bereken uw body mass index op basis van gewicht en lengte."},
}

// NewDocument returns a well-formed document with a section for each locale.
// Every section has the same key set.
func NewDocument(component, category string, locales ...string) Document {
	doc := make(Document, len(locales))
	for _, code := range locales {
		t, ok := translations[code]
		if !ok {
			t = translations["en"]
		}
		doc[code] = Section{
			"title":           t[0],
			"seoTitle":        t[0],
			"metaDescription": t[1],
			"summary":         t[1],
			"category":        category,
			"component":       component,
			"seoContent": map[string]any{
				"introduction": t[1],
				"faqs":         []any{t[0]},
			},
		}
	}

	return doc
}

// CreateTempProject creates a temporary project with content and label
// directories and returns its root.
func CreateTempProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	for _, dir := range []string{"content", "locales", "dist"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	return root
}

// WriteDocument writes doc as <dir>/<name>.json and returns the path.
func WriteDocument(t *testing.T, dir, name string, doc any) string {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)

	path := filepath.Join(dir, name+".json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}

// WriteRaw writes raw bytes as <dir>/<name>.
func WriteRaw(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	return path
}

// WriteAllowlist writes the extended-locale allowlist document and returns its path.
func WriteAllowlist(t *testing.T, dir string, slugs ...string) string {
	t.Helper()

	return WriteDocument(t, dir, "DE_NL_SELECTED_CALCULATORS", map[string]any{"calculators": slugs})
}

// WriteBundle writes <labelsDir>/<locale>/common.json.
func WriteBundle(t *testing.T, labelsDir, locale string, doc map[string]any) {
	t.Helper()
	dir := filepath.Join(labelsDir, locale)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	WriteDocument(t, dir, "common", doc)
}

// CreateTestConfig returns a configuration pointing at a project created by
// CreateTempProject, with every default filled in.
func CreateTestConfig(t *testing.T, projectDir string) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Site: config.SiteConfig{
			BaseURL:            "https://quick-calculator.org",
			Name:               "Quick Calculator",
			BaseLocaleAtRoot:   true,
			DefaultTitle:       "Quick Calculator",
			DefaultDescription: "Free online calculators",
		},
		Content: config.ContentConfig{
			Dir:       filepath.Join(projectDir, "content"),
			LabelsDir: filepath.Join(projectDir, "locales"),
			Aliases:   map[string]string{},
		},
		Locales: config.LocalesConfig{
			Base:     "en",
			Global:   append([]string(nil), GlobalLocales...),
			Extended: append([]string(nil), ExtendedLocales...),
		},
		Validation: config.ValidationConfig{
			MinTokens:      4,
			MatchRatio:     0.2,
			MaxListed:      10,
			MaxListedExtra: 5,
			Dictionary:     append([]string(nil), config.DefaultDictionary...),
			Allowlist:      append([]string(nil), config.DefaultAllowlist...),
		},
		Build: config.BuildConfig{
			OutputDir: filepath.Join(projectDir, "dist"),
			Workers:   2,
			Sitemaps:  true,
		},
		Server: config.ServerConfig{Host: "localhost", Port: 0},
		Log:    config.LogConfig{Level: "info", Format: "text"},
	}
	require.NoError(t, cfg.Validate())

	return cfg
}
