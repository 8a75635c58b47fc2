package locale

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy("en",
		[]string{"en", "es", "pt", "fr"},
		[]string{"de", "nl"},
		[]string{"bmi-calculator", "loan-calculator"},
	)
	require.NoError(t, err)

	return p
}

func TestPolicyOrdering(t *testing.T) {
	p := newTestPolicy(t)

	assert.Equal(t, "en", p.Base())
	assert.Equal(t, []string{"en", "es", "pt", "fr", "de", "nl"}, p.All())
	assert.Len(t, p.All(), 6)
	assert.Equal(t, []string{"es", "pt", "fr", "de", "nl"}, p.NonBase())
	assert.Equal(t, []string{"bmi-calculator", "loan-calculator"}, p.Allowlist())
}

func TestPolicySupports(t *testing.T) {
	p := newTestPolicy(t)

	tests := []struct {
		locale string
		slug   string
		want   bool
	}{
		{"en", "average-calculator", true},
		{"fr", "average-calculator", true},
		{"de", "average-calculator", false},
		{"de", "bmi-calculator", true},
		{"nl", "loan-calculator", true},
		{"it", "bmi-calculator", false},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Supports(tt.locale, tt.slug))
		})
	}

	assert.Equal(t, []string{"en", "es", "pt", "fr"}, p.LocalesFor("average-calculator"))
	assert.Equal(t, p.All(), p.LocalesFor("bmi-calculator"))
}

func TestPolicyAccessorsReturnCopies(t *testing.T) {
	p := newTestPolicy(t)
	g := p.Global()
	g[0] = "xx"
	assert.Equal(t, "en", p.Global()[0])
}

func TestNewPolicyRejects(t *testing.T) {
	_, err := NewPolicy("de", []string{"en"}, []string{"de"}, nil)
	assert.Error(t, err)

	_, err = NewPolicy("en", []string{"en", "es"}, []string{"es"}, nil)
	assert.Error(t, err)
}

func TestInLanguage(t *testing.T) {
	expected := map[string]string{
		"en": "en-US",
		"es": "es-ES",
		"pt": "pt-PT",
		"fr": "fr-FR",
		"de": "de-DE",
		"nl": "nl-NL",
	}
	for code, tag := range expected {
		assert.Equal(t, tag, InLanguage(code), code)
	}
	assert.Equal(t, "!!", InLanguage("!!"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "español", DisplayName("es"))
	assert.Equal(t, "Deutsch", DisplayName("de"))
}

func TestParseAllowlist(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"json object", `{"calculators": ["loan-calculator", "bmi-calculator", "bmi-calculator"]}`, []string{"bmi-calculator", "loan-calculator"}},
		{"yaml object", "calculators:\n  - tip-calculator\n  - ' '\n", []string{"tip-calculator"}},
		{"bare list", `["a", "b"]`, []string{"a", "b"}},
		{"empty", ``, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAllowlist([]byte(tt.data))
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAllowlist([]byte(`"just a string"`))
	assert.Error(t, err)
}

func TestLoadAllowlist(t *testing.T) {
	got, err := LoadAllowlist("")
	require.NoError(t, err)
	assert.Empty(t, got)

	path := filepath.Join(t.TempDir(), "DE_NL_SELECTED_CALCULATORS.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"calculators":["bmi-calculator"]}`), 0o644))
	got, err = LoadAllowlist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bmi-calculator"}, got)

	_, err = LoadAllowlist(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
