// Package build writes the static site: one HTML document per published
// (locale, slug) path, per-locale sitemaps, a sitemap index, robots.txt and
// a manifest of everything written.
//
// Pages are rendered by a bounded pool of workers. A path that fails is
// logged, recorded and skipped; its siblings continue.
package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/logging"
	"github.com/quick-calculator/calcdir/internal/paths"
	"github.com/quick-calculator/calcdir/internal/renderer"
	"github.com/quick-calculator/calcdir/internal/seo"
)

// Options configures a build.
type Options struct {
	OutputDir string
	// Workers bounds page rendering parallelism. Zero means GOMAXPROCS.
	Workers int
	// Sitemaps enables sitemap-<locale>.xml, sitemap.xml and robots.txt.
	Sitemaps bool
	// LastModified stamps sitemap entries. Zero means the build start time.
	LastModified time.Time
}

// PageResult describes one written page.
type PageResult struct {
	Locale   string        `json:"locale"`
	Slug     string        `json:"slug"`
	File     string        `json:"file"`
	URL      string        `json:"url"`
	Size     int64         `json:"size"`
	Hash     string        `json:"hash"`
	Duration time.Duration `json:"-"`
}

// Result is the outcome of Generate.
type Result struct {
	Pages    []PageResult
	Failures []errors.Failure
	// Files lists every non-page file written, relative to the output dir.
	Files    []string
	Duration time.Duration
}

// Generator renders every published path of a snapshot to disk.
type Generator struct {
	renderer *renderer.Renderer
	slugs    []string
	logger   logging.Logger
	metrics  *Metrics
	hasher   *Hasher
}

// NewGenerator creates a generator over the slugs known to r.
func NewGenerator(r *renderer.Renderer, slugs []string, logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Generator{
		renderer: r,
		slugs:    append([]string(nil), slugs...),
		logger:   logger.WithComponent("build"),
		metrics:  NewMetrics(),
		hasher:   NewHasher(),
	}
}

// Metrics returns the generator's running metrics.
func (g *Generator) Metrics() *Metrics { return g.metrics }

type task struct {
	path paths.Path
}

// Generate writes the site to opts.OutputDir. The returned error covers only
// conditions that stop the whole build (context cancellation, an unwritable
// output directory); per-page failures are in Result.Failures.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	if opts.OutputDir == "" {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "build output directory is empty")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeWriteFailed, "failed to create output directory", err).
			WithSubject(opts.OutputDir)
	}
	if opts.LastModified.IsZero() {
		opts.LastModified = start
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	policy := g.renderer.Policy()
	published := paths.Published(policy, g.slugs)
	g.logger.Info(ctx, "Starting build", "paths", len(published), "workers", workers, "output", opts.OutputDir)

	tasks := make(chan task)
	collector := errors.NewCollector()

	var (
		mu    sync.Mutex
		pages []PageResult
		wg    sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				page, err := g.buildPage(ctx, opts.OutputDir, t.path)
				g.metrics.Record(page.Size, page.Duration, err)
				if err != nil {
					g.logger.Warn(ctx, err, "Skipping page", "locale", t.path.Locale, "slug", t.path.Slug)
					collector.Add(t.path.Locale, t.path.Slug, err)

					continue
				}
				mu.Lock()
				pages = append(pages, page)
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, p := range published {
		select {
		case <-ctx.Done():
			break dispatch
		case tasks <- task{path: p}:
		}
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortPages(pages, policy.All())
	result := &Result{Pages: pages, Failures: collector.Failures()}

	homes, err := g.writeHomePages(ctx, opts.OutputDir, pages)
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, homes...)

	categories, err := g.writeCategoryPages(ctx, opts.OutputDir, pages)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		result.Files = append(result.Files, c.File)
	}

	if opts.Sitemaps {
		files, err := g.writeSitemaps(opts, pages, categories)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, files...)
	}

	if err := writeNotFound(opts.OutputDir, policy.Base(), g.renderer.HomeURL(policy.Base())); err != nil {
		return nil, err
	}
	result.Files = append(result.Files, NotFoundFile)

	if err := writeManifest(opts.OutputDir, result, opts.LastModified); err != nil {
		return nil, err
	}
	result.Files = append(result.Files, ManifestFile)

	result.Duration = time.Since(start)
	g.logger.Info(ctx, "Build finished",
		"pages", len(result.Pages),
		"failures", len(result.Failures),
		"duration", result.Duration)

	return result, nil
}

// buildPage renders one path and writes its index.html.
func (g *Generator) buildPage(ctx context.Context, outDir string, p paths.Path) (result PageResult, err error) {
	start := time.Now()
	result = PageResult{Locale: p.Locale, Slug: p.Slug}

	defer func() {
		if r := recover(); r != nil {
			err = errors.NewInternalError(errors.ErrCodeInternalError, fmt.Sprintf("building page panicked: %v", r), nil).
				WithSubject(p.Slug).
				WithLocale(p.Locale)
		}
	}()

	page, err := g.renderer.Render(ctx, p.Locale, p.Slug)
	if err != nil {
		return result, err
	}

	var buf bytes.Buffer
	if err := page.Document().Render(ctx, &buf); err != nil {
		return result, fmt.Errorf("rendering document: %w", err)
	}

	rel := PageFile(g.renderer.Site(), g.renderer.Policy().Base(), p)
	file := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return result, errors.NewIOError(errors.ErrCodeWriteFailed, "failed to create page directory", err).
			WithSubject(p.Slug).WithLocale(p.Locale)
	}
	if err := os.WriteFile(file, buf.Bytes(), 0o644); err != nil {
		return result, errors.NewIOError(errors.ErrCodeWriteFailed, "failed to write page", err).
			WithSubject(p.Slug).WithLocale(p.Locale)
	}

	result.File = filepath.ToSlash(rel)
	result.URL = page.Metadata.CanonicalURL
	result.Size = int64(buf.Len())
	result.Hash = g.hasher.Sum(buf.Bytes())
	result.Duration = time.Since(start)

	return result, nil
}

// writeHomePages writes index.html for every locale that has pages.
func (g *Generator) writeHomePages(ctx context.Context, outDir string, pages []PageResult) ([]string, error) {
	has := make(map[string]bool)
	for _, p := range pages {
		has[p.Locale] = true
	}

	var files []string
	for _, code := range g.renderer.Policy().All() {
		if !has[code] {
			continue
		}
		index, err := g.renderer.Index(ctx, code)
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := index.Document().Render(ctx, &buf); err != nil {
			return nil, fmt.Errorf("rendering %s home page: %w", code, err)
		}

		rel := HomeFile(g.renderer.Site(), g.renderer.Policy().Base(), code)
		file := filepath.Join(outDir, rel)
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, errors.NewIOError(errors.ErrCodeWriteFailed, "failed to create home directory", err).WithLocale(code)
		}
		if err := writeFile(file, buf.Bytes()); err != nil {
			return nil, err
		}
		files = append(files, filepath.ToSlash(rel))
	}

	return files, nil
}

// categoryPage is one written category index page.
type categoryPage struct {
	Locale string
	URL    string
	File   string
}

// writeCategoryPages writes the category index pages of every locale that
// has pages. Breadcrumbs in the structured data link to these.
func (g *Generator) writeCategoryPages(ctx context.Context, outDir string, pages []PageResult) ([]categoryPage, error) {
	has := make(map[string]bool)
	for _, p := range pages {
		has[p.Locale] = true
	}

	var out []categoryPage
	for _, code := range g.renderer.Policy().All() {
		if !has[code] {
			continue
		}
		for _, cat := range g.renderer.Categories(code) {
			page, err := g.renderer.Category(ctx, code, cat)
			if err != nil {
				return nil, err
			}

			var buf bytes.Buffer
			if err := page.Document().Render(ctx, &buf); err != nil {
				return nil, fmt.Errorf("rendering %s category %s: %w", code, cat, err)
			}

			rel := CategoryFile(g.renderer.Site(), g.renderer.Policy().Base(), code, cat)
			file := filepath.Join(outDir, rel)
			if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
				return nil, errors.NewIOError(errors.ErrCodeWriteFailed, "failed to create category directory", err).
					WithSubject(string(cat)).WithLocale(code)
			}
			if err := writeFile(file, buf.Bytes()); err != nil {
				return nil, err
			}
			out = append(out, categoryPage{Locale: code, URL: page.URL, File: filepath.ToSlash(rel)})
		}
	}

	return out, nil
}

// CategoryFile returns the output path of a category page relative to the
// output dir.
func CategoryFile(site seo.Site, base, code string, cat content.Category) string {
	dir := filepath.Join("categories", string(cat), "index.html")
	if site.BaseLocaleAtRoot && code == base {
		return dir
	}

	return filepath.Join(code, dir)
}

// HomeFile returns the output path of a locale home page relative to the
// output dir.
func HomeFile(site seo.Site, base, code string) string {
	if site.BaseLocaleAtRoot && code == base {
		return "index.html"
	}

	return filepath.Join(code, "index.html")
}

// PageFile returns the output path of a page relative to the output dir.
// The base locale lives at the root when the site is configured that way.
func PageFile(site seo.Site, base string, p paths.Path) string {
	if site.BaseLocaleAtRoot && p.Locale == base {
		return filepath.Join(p.Slug, "index.html")
	}

	return filepath.Join(p.Locale, p.Slug, "index.html")
}

// sortPages orders pages locale-major in policy order, then by slug.
func sortPages(pages []PageResult, order []string) {
	rank := make(map[string]int, len(order))
	for i, code := range order {
		rank[code] = i
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Locale != pages[j].Locale {
			return rank[pages[i].Locale] < rank[pages[j].Locale]
		}

		return pages[i].Slug < pages[j].Slug
	})
}
