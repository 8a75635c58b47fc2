package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quick-calculator/calcdir/internal/errors"
)

// ConfigFileName is the configuration file written by init and searched for
// by the CLI.
const ConfigFileName = ".calcdir.yml"

// InitService handles project initialization business logic
type InitService struct{}

// NewInitService creates a new initialization service
func NewInitService() *InitService {
	return &InitService{}
}

// InitOptions contains options for project initialization
type InitOptions struct {
	ProjectDir string
	// Minimal skips the example calculator and label bundles.
	Minimal bool
	// Force overwrites existing files.
	Force bool
	BaseURL string
}

// InitResult lists the files written, relative to the project directory.
type InitResult struct {
	Files []string
}

// InitProject lays out a calculator directory project: configuration, the
// content and label directories, an empty allowlist and, unless Minimal, an
// example calculator translated into every global locale.
func (s *InitService) InitProject(opts InitOptions) (*InitResult, error) {
	if opts.ProjectDir == "" {
		opts.ProjectDir = "."
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://example.com"
	}
	if err := os.MkdirAll(opts.ProjectDir, 0o755); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeWriteFailed, "cannot create project directory", err).
			WithSubject(opts.ProjectDir)
	}

	for _, dir := range []string{"content/calculators", "content/locales"} {
		path := filepath.Join(opts.ProjectDir, dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, errors.NewIOError(errors.ErrCodeWriteFailed, "failed to create directory", err).WithSubject(path)
		}
	}

	result := &InitResult{}
	w := &projectWriter{root: opts.ProjectDir, force: opts.Force, result: result}

	cfgData, err := yaml.Marshal(projectConfig(opts.BaseURL))
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError, "failed to encode configuration", err)
	}
	w.write(ConfigFileName, cfgData)
	w.writeJSON("content/DE_NL_SELECTED_CALCULATORS.json", map[string][]string{"calculators": {}})

	if !opts.Minimal {
		w.writeJSON("content/calculators/bmi-calculator.json", exampleCalculator())
		bundles := exampleBundles()
		for _, code := range exampleLocales {
			w.writeJSON(filepath.Join("content/locales", code, "common.json"), bundles[code])
		}
	}

	if w.err != nil {
		return nil, w.err
	}

	return result, nil
}

type projectWriter struct {
	root   string
	force  bool
	result *InitResult
	err    error
}

func (w *projectWriter) writeJSON(rel string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		w.err = errors.NewInternalError(errors.ErrCodeInternalError, "failed to encode "+rel, err)

		return
	}
	w.write(rel, append(data, '\n'))
}

// write skips existing files unless force is set.
func (w *projectWriter) write(rel string, data []byte) {
	if w.err != nil {
		return
	}
	path := filepath.Join(w.root, rel)
	if _, err := os.Stat(path); err == nil && !w.force {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.err = errors.NewIOError(errors.ErrCodeWriteFailed, "failed to create directory", err).WithSubject(filepath.Dir(path))

		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		w.err = errors.NewIOError(errors.ErrCodeWriteFailed, "failed to write file", err).WithSubject(path)

		return
	}
	w.result.Files = append(w.result.Files, filepath.ToSlash(rel))
}

// exampleLocales are the locales the example content is written in.
var exampleLocales = []string{"en", "es", "pt", "fr"}

func projectConfig(baseURL string) map[string]any {
	return map[string]any{
		"site": map[string]any{
			"base_url":            baseURL,
			"name":                "Quick Calculator",
			"base_locale_at_root": true,
		},
		"content": map[string]any{
			"dir":        "content/calculators",
			"labels_dir": "content/locales",
			"aliases":    map[string]string{},
		},
		"locales": map[string]any{
			"base":           "en",
			"global":         []string{"en", "es", "pt", "fr"},
			"extended":       []string{"de", "nl"},
			"allowlist_file": "content/DE_NL_SELECTED_CALCULATORS.json",
		},
		"build": map[string]any{
			"output_dir": "dist",
			"sitemaps":   true,
		},
		"server": map[string]any{
			"host": "localhost",
			"port": 8080,
		},
	}
}

func exampleCalculator() map[string]any {
	sections := map[string][3]string{
		"en": {"BMI Calculator", "BMI Calculator - Body Mass Index", "Calculate your body mass index from your weight and height."},
		"es": {"Calculadora de IMC", "Calculadora de IMC - Índice de Masa Corporal", "Calcula tu índice de masa corporal a partir de tu peso y altura."},
		"pt": {"Calculadora de IMC", "Calculadora de IMC - Índice de Massa Corporal", "Calcule o seu índice de massa corporal a partir do peso e da altura."},
		"fr": {"Calculateur d'IMC", "Calculateur d'IMC - Indice de Masse Corporelle", "Calculez votre indice de masse corporelle à partir de votre poids et de votre taille."},
	}

	doc := make(map[string]any, len(sections))
	for code, s := range sections {
		doc[code] = map[string]any{
			"title":           s[0],
			"seoTitle":        s[1],
			"metaDescription": s[2],
			"summary":         s[2],
			"category":        "health",
			"component":       "BMICalculator",
			"seoContent": map[string]any{
				"introduction": s[2],
			},
		}
	}

	return doc
}

func exampleBundles() map[string]map[string]any {
	noscript := map[string]string{
		"en": "Enable JavaScript to use this calculator.",
		"es": "Activa JavaScript para usar esta calculadora.",
		"pt": "Ative o JavaScript para usar esta calculadora.",
		"fr": "Activez JavaScript pour utiliser ce calculateur.",
	}

	out := make(map[string]map[string]any, len(noscript))
	for code, text := range noscript {
		out[code] = map[string]any{
			"calculator": map[string]any{"noscript": text},
		}
	}

	return out
}

// String summarises the result for the CLI.
func (r *InitResult) String() string {
	return fmt.Sprintf("%d files written", len(r.Files))
}
