package content

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/testutils"
)

func TestParse(t *testing.T) {
	data := []byte(`{
		"en": {"title": "BMI Calculator", "seoTitle": "BMI Calculator - Free", "category": "health",
		       "component": "BMICalculator", "seoContent": {"faqs": [{"q": "What?"}]}, "custom": 3},
		"es": {"title": "Calculadora de IMC", "metaDescription": null}
	}`)

	record, err := Parse("bmi-calculator", data)
	require.NoError(t, err)

	assert.Equal(t, "bmi-calculator", record.Slug)
	assert.Equal(t, CategoryHealth, record.Category)
	assert.Equal(t, "BMICalculator", record.ComponentID)
	assert.Equal(t, []string{"en", "es"}, record.LocaleCodes())

	en, ok := GetLocale(record, "en")
	require.True(t, ok)
	assert.Equal(t, "BMI Calculator - Free", en.SEOTitle)
	assert.Contains(t, en.SEOContent, "faqs")
	assert.EqualValues(t, 3, en.Raw["custom"])

	es, ok := record.Locale("es")
	require.True(t, ok)
	assert.Empty(t, es.MetaDescription)
	assert.Contains(t, es.Raw, "metaDescription")

	_, ok = GetLocale(record, "fr")
	assert.False(t, ok)
	_, ok = GetLocale(nil, "en")
	assert.False(t, ok)

	assert.True(t, record.HasComponentField("en"))
	assert.False(t, record.HasComponentField("es"))
}

func TestParseCategoryDefaults(t *testing.T) {
	record, err := Parse("tip-calculator", []byte(`{"en": {"title": "Tip"}}`))
	require.NoError(t, err)
	assert.Equal(t, CategoryOther, record.Category)
	assert.Empty(t, record.ComponentID)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code string
	}{
		{"truncated json", `{"en": {"title": "x"`, errors.ErrCodeMalformedDocument},
		{"trailing data", `{"en": {}} {}`, errors.ErrCodeMalformedDocument},
		{"not an object", `["en"]`, errors.ErrCodeSchemaViolation},
		{"empty object", `{}`, errors.ErrCodeSchemaViolation},
		{"section not object", `{"en": "BMI"}`, errors.ErrCodeSchemaViolation},
		{"title not string", `{"en": {"title": 42}}`, errors.ErrCodeSchemaViolation},
		{"seoContent not object", `{"en": {"seoContent": "text"}}`, errors.ErrCodeSchemaViolation},
		{"bad locale key", `{"English": {"title": "x"}}`, errors.ErrCodeSchemaViolation},
		{"unknown category", `{"en": {"category": "astrology"}}`, errors.ErrCodeUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := Parse("broken", []byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, record)
			assert.True(t, errors.IsParseError(err), "got %v", err)

			var ce *errors.CalcError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, "broken", ce.Subject)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteDocument(t, dir, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en", "es"))
	testutils.WriteDocument(t, dir, "word-counter", testutils.NewDocument("WordCounter", "utility", "en"))
	testutils.WriteRaw(t, dir, "notes.txt", "ignored")
	testutils.WriteRaw(t, dir, ".hidden.json", "{")

	store, err := LoadDir(context.Background(), dir, Options{
		Aliases: map[string]string{"word-counter-calculator": "word-counter"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, dir, store.Dir())
	assert.Equal(t, []string{"bmi-calculator", "word-counter"}, store.Filenames())
	assert.Equal(t, []string{"bmi-calculator", "word-counter-calculator"}, store.Slugs())

	records := store.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "bmi-calculator", records[0].Filename)
	assert.Equal(t, "word-counter-calculator", records[1].Slug)

	record, err := store.Lookup("word-counter-calculator")
	require.NoError(t, err)
	assert.Equal(t, "word-counter", record.Filename)

	_, err = store.Load("missing")
	assert.True(t, errors.IsNotFound(err))

	_, err = store.Lookup("word-counter")
	assert.True(t, errors.IsNotFound(err))
}

func TestLoadDirFailsFast(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteDocument(t, dir, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en"))
	testutils.WriteRaw(t, dir, "loan-calculator.json", `{"en": {"title": `)

	store, err := LoadDir(context.Background(), dir, Options{})
	require.Error(t, err)
	assert.Nil(t, store)
	assert.True(t, errors.IsParseError(err))
	assert.Contains(t, err.Error(), "loan-calculator")
}

func TestLoadDirRejectsAliasCollision(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteDocument(t, dir, "word-counter", testutils.NewDocument("WordCounter", "utility", "en"))

	_, err := LoadDir(context.Background(), dir, Options{
		Aliases: map[string]string{"a": "word-counter", "b": "word-counter"},
	})
	assert.True(t, errors.IsAliasCollision(err))
}

func TestLoadDirMissingDirectory(t *testing.T) {
	_, err := LoadDir(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeIO, errors.TypeOf(err))
}

func TestLoadDirHonoursCancellation(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteDocument(t, dir, "bmi-calculator", testutils.NewDocument("BMICalculator", "health", "en"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadDir(ctx, dir, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStore(t *testing.T) {
	a, err := Parse("password-generator", []byte(`{"en": {"component": "PasswordGenerator"}}`))
	require.NoError(t, err)

	store, err := NewStore([]*Record{a}, map[string]string{"password-generator-calculator": "password-generator"})
	require.NoError(t, err)

	record, err := store.Lookup("password-generator-calculator")
	require.NoError(t, err)
	assert.Equal(t, "password-generator-calculator", record.Slug)
}

func TestLoadBundles(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteBundle(t, dir, "en", map[string]any{"buttons": map[string]any{"calculate": "Calculate"}})
	testutils.WriteBundle(t, dir, "es", map[string]any{"buttons": map[string]any{"calculate": "Calcular"}})

	bundles, err := LoadBundles(dir, []string{"en", "es", "fr"})
	require.NoError(t, err)
	assert.Len(t, bundles, 2)
	assert.Contains(t, bundles, "es")

	empty, err := LoadBundles("", []string{"en"})
	require.NoError(t, err)
	assert.Empty(t, empty)

}

func TestLoadBundlesMalformed(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteBundle(t, dir, "en", map[string]any{"title": "Home"})
	testutils.WriteRaw(t, filepath.Join(dir, "en"), BundleFile, "{oops")

	_, err := LoadBundles(dir, []string{"en"})
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
}
