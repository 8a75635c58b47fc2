// Package config provides configuration management for calcdir using Viper
// for loading from files, environment variables, and command-line flags.
//
// Values come from .calcdir.yml (or the file named by --config or
// CALCDIR_CONFIG_FILE) with CALCDIR_<SECTION>_<KEY> environment overrides.
// Every key has a default, so an empty configuration describes the standard
// six-locale directory.
package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Site       SiteConfig       `mapstructure:"site" yaml:"site"`
	Content    ContentConfig    `mapstructure:"content" yaml:"content"`
	Locales    LocalesConfig    `mapstructure:"locales" yaml:"locales"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation"`
	Build      BuildConfig      `mapstructure:"build" yaml:"build"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

type SiteConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Name    string `mapstructure:"name" yaml:"name"`
	// BaseLocaleAtRoot serves the base locale at /<slug> instead of /<base>/<slug>.
	BaseLocaleAtRoot   bool   `mapstructure:"base_locale_at_root" yaml:"base_locale_at_root"`
	DefaultTitle       string `mapstructure:"default_title" yaml:"default_title"`
	DefaultDescription string `mapstructure:"default_description" yaml:"default_description"`
}

type ContentConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir"`
	LabelsDir string `mapstructure:"labels_dir" yaml:"labels_dir"`
	// Aliases maps a public slug to a content filename that cannot be derived
	// from it.
	Aliases map[string]string `mapstructure:"aliases" yaml:"aliases"`
	// Related lists hand-picked related calculators per slug. Pages fill
	// the rest of RelatedLimit from the same category.
	Related      map[string][]string `mapstructure:"related" yaml:"related"`
	RelatedLimit int                 `mapstructure:"related_limit" yaml:"related_limit"`
}

type LocalesConfig struct {
	Base          string   `mapstructure:"base" yaml:"base"`
	Global        []string `mapstructure:"global" yaml:"global"`
	Extended      []string `mapstructure:"extended" yaml:"extended"`
	AllowlistFile string   `mapstructure:"allowlist_file" yaml:"allowlist_file"`
}

type ValidationConfig struct {
	MinTokens      int      `mapstructure:"min_tokens" yaml:"min_tokens"`
	MatchRatio     float64  `mapstructure:"match_ratio" yaml:"match_ratio"`
	MaxListed      int      `mapstructure:"max_listed" yaml:"max_listed"`
	MaxListedExtra int      `mapstructure:"max_listed_extra" yaml:"max_listed_extra"`
	Dictionary     []string `mapstructure:"dictionary" yaml:"dictionary"`
	Allowlist      []string `mapstructure:"allowlist" yaml:"allowlist"`
}

type BuildConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// Workers bounds build parallelism; zero means one per CPU.
	Workers  int  `mapstructure:"workers" yaml:"workers"`
	Sitemaps bool `mapstructure:"sitemaps" yaml:"sitemaps"`
}

type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	// WatchDelay is the debounce window for content changes.
	WatchDelay time.Duration `mapstructure:"watch_delay" yaml:"watch_delay"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultDictionary lists the high-frequency English words whose presence in
// a non-English string suggests untranslated text.
var DefaultDictionary = []string{
	"the", "and", "for", "with", "your", "this", "that", "from", "have", "will",
	"calculate", "calculator", "details", "summary", "results",
}

// DefaultAllowlist lists strings that are legitimately identical in every
// locale: brand names, acronyms, and currency codes.
var DefaultAllowlist = []string{
	"email", "online", "calculator", "EMI", "GPA", "BMI", "ROI", "APR", "URL",
	"HTML", "CSS", "JavaScript", "API", "ID", "GPS", "PDF", "Quick Calculator",
	"Google", "Facebook", "Twitter", "Instagram", "iOS", "Android", "Windows",
	"Mac", "Linux", "EUR", "USD", "GBP",
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://quick-calculator.org")
	v.SetDefault("site.name", "Quick Calculator")
	v.SetDefault("site.base_locale_at_root", true)
	v.SetDefault("site.default_title", "Quick Calculator")
	v.SetDefault("site.default_description", "Free online calculators")

	v.SetDefault("content.dir", "content/calculators")
	v.SetDefault("content.labels_dir", "")
	v.SetDefault("content.aliases", map[string]string{})
	v.SetDefault("content.related", map[string][]string{})
	v.SetDefault("content.related_limit", 6)

	v.SetDefault("locales.base", "en")
	v.SetDefault("locales.global", []string{"en", "es", "pt", "fr"})
	v.SetDefault("locales.extended", []string{"de", "nl"})
	v.SetDefault("locales.allowlist_file", "")

	v.SetDefault("validation.min_tokens", 4)
	v.SetDefault("validation.match_ratio", 0.2)
	v.SetDefault("validation.max_listed", 10)
	v.SetDefault("validation.max_listed_extra", 5)
	v.SetDefault("validation.dictionary", DefaultDictionary)
	v.SetDefault("validation.allowlist", DefaultAllowlist)

	v.SetDefault("build.output_dir", "dist")
	v.SetDefault("build.workers", 0)
	v.SetDefault("build.sitemaps", true)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.watch_delay", "200ms")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configError("", "unable to decode configuration", err)
	}

	// --log-level is bound under its own key by the root command.
	if v.IsSet("log-level") {
		cfg.Log.Level = v.GetString("log-level")
	}

	if cfg.Content.Aliases == nil {
		cfg.Content.Aliases = make(map[string]string)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SupportedLocales returns the global locales followed by the extended ones.
func (c *Config) SupportedLocales() []string {
	out := make([]string, 0, len(c.Locales.Global)+len(c.Locales.Extended))
	out = append(out, c.Locales.Global...)

	return append(out, c.Locales.Extended...)
}

// ResolvePaths makes relative file and directory settings relative to dir,
// normally the directory of the configuration file.
func (c *Config) ResolvePaths(dir string) {
	if dir == "" {
		return
	}
	for _, p := range []*string{
		&c.Content.Dir,
		&c.Content.LabelsDir,
		&c.Locales.AllowlistFile,
		&c.Build.OutputDir,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
