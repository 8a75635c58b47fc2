// Package app assembles an immutable snapshot of the calculator directory
// from configuration: the content store, the locale policy, the label
// bundles, the component registry and the renderer built over them.
//
// A snapshot is built once, fail-fast, and never mutated. The dev server
// swaps whole snapshots on reload.
package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/quick-calculator/calcdir/internal/calculators"
	"github.com/quick-calculator/calcdir/internal/config"
	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/leak"
	"github.com/quick-calculator/calcdir/internal/locale"
	"github.com/quick-calculator/calcdir/internal/logging"
	"github.com/quick-calculator/calcdir/internal/paths"
	"github.com/quick-calculator/calcdir/internal/registry"
	"github.com/quick-calculator/calcdir/internal/renderer"
	"github.com/quick-calculator/calcdir/internal/seo"
)

// Snapshot is one consistent view of content, policy and components.
type Snapshot struct {
	Config   *config.Config
	Store    *content.Store
	Registry *registry.Registry
	Policy   *locale.Policy
	Bundles  content.Bundles
	Renderer *renderer.Renderer
	Leaks    leak.Checker
	LoadedAt time.Time
}

// RegisterFunc populates a registry builder.
type RegisterFunc func(*registry.Builder) error

// Load builds a snapshot with the built-in calculator catalog.
func Load(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Snapshot, error) {
	return LoadWith(ctx, cfg, logger, calculators.Register)
}

// LoadWith builds a snapshot, registering components through register.
// Any unreadable or malformed input aborts the load.
func LoadWith(ctx context.Context, cfg *config.Config, logger logging.Logger, register RegisterFunc) (*Snapshot, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	log := logger.WithComponent("app")

	allowlist, err := locale.LoadAllowlist(cfg.Locales.AllowlistFile)
	if err != nil {
		return nil, err
	}

	policy, err := locale.NewPolicy(cfg.Locales.Base, cfg.Locales.Global, cfg.Locales.Extended, allowlist)
	if err != nil {
		return nil, err
	}

	store, err := content.LoadDir(ctx, cfg.Content.Dir, content.Options{
		BaseLocale: cfg.Locales.Base,
		Aliases:    cfg.Content.Aliases,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	var bundles content.Bundles
	if cfg.Content.LabelsDir != "" {
		bundles, err = content.LoadBundles(cfg.Content.LabelsDir, policy.All())
		if err != nil {
			return nil, err
		}
	}

	builder := registry.NewBuilder()
	if register != nil {
		if err := register(builder); err != nil {
			return nil, err
		}
	}
	reg := builder.Build()

	snap := &Snapshot{
		Config:   cfg,
		Store:    store,
		Registry: reg,
		Policy:   policy,
		Bundles:  bundles,
		Renderer: renderer.New(store, reg, policy, Site(cfg), bundles).
			WithRelated(cfg.Content.Related, cfg.Content.RelatedLimit),
		Leaks: leak.New(cfg.Validation.Dictionary, cfg.Validation.Allowlist, leak.Thresholds{
			MinTokens:  cfg.Validation.MinTokens,
			MatchRatio: cfg.Validation.MatchRatio,
		}),
		LoadedAt: time.Now(),
	}

	log.Info(ctx, "Snapshot loaded",
		"calculators", store.Len(),
		"components", reg.Count(),
		"allowlisted", len(policy.Allowlist()),
		"bundles", len(bundles))

	return snap, nil
}

// Site converts the site configuration for the SEO generator.
func Site(cfg *config.Config) seo.Site {
	return seo.Site{
		BaseURL:            cfg.Site.BaseURL,
		Name:               cfg.Site.Name,
		BaseLocaleAtRoot:   cfg.Site.BaseLocaleAtRoot,
		DefaultTitle:       cfg.Site.DefaultTitle,
		DefaultDescription: cfg.Site.DefaultDescription,
	}
}

// Paths returns every publishable path: global locales first, then the
// extended locales for allowlisted calculators.
func (s *Snapshot) Paths() []paths.Path {
	return paths.Published(s.Policy, s.Store.Slugs())
}

// InputDirs returns the distinct directories whose files feed a snapshot:
// content, label bundles and the directory holding the allowlist.
func InputDirs(cfg *config.Config) []string {
	allowlistDir := ""
	if cfg.Locales.AllowlistFile != "" {
		allowlistDir = filepath.Dir(cfg.Locales.AllowlistFile)
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, dir := range []string{cfg.Content.Dir, cfg.Content.LabelsDir, allowlistDir} {
		if dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	return dirs
}
