package build

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/paths"
)

// Output file names.
const (
	SitemapIndexFile = "sitemap.xml"
	RobotsFile       = "robots.txt"
	ManifestFile     = "manifest.json"
	NotFoundFile     = "404.html"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// SitemapFile returns the sitemap file name for a locale.
func SitemapFile(code string) string {
	return "sitemap-" + code + ".xml"
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	XMLNS    string         `xml:"xmlns,attr"`
	Sitemaps []sitemapEntry `xml:"sitemap"`
}

type sitemapEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// writeSitemaps writes one sitemap per locale that has pages, the index
// referencing them, and robots.txt. Only pages actually written are listed,
// so extended locales carry allowlisted calculators only.
func (g *Generator) writeSitemaps(opts Options, pages []PageResult, categories []categoryPage) ([]string, error) {
	lastMod := opts.LastModified.UTC().Format("2006-01-02")
	base := strings.TrimRight(g.renderer.Site().BaseURL, "/")

	byLocale := make(map[string][]PageResult)
	for _, p := range pages {
		byLocale[p.Locale] = append(byLocale[p.Locale], p)
	}
	categoryURLs := make(map[string][]string)
	for _, c := range categories {
		categoryURLs[c.Locale] = append(categoryURLs[c.Locale], c.URL)
	}

	var (
		files []string
		index = sitemapIndex{XMLNS: sitemapNS}
	)
	for _, code := range g.renderer.Policy().All() {
		locPages := byLocale[code]
		if len(locPages) == 0 {
			continue
		}

		set := urlSet{XMLNS: sitemapNS}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        g.renderer.HomeURL(code),
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   "1.0",
		})
		for _, u := range categoryURLs[code] {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        u,
				LastMod:    lastMod,
				ChangeFreq: "weekly",
				Priority:   "0.9",
			})
		}
		for _, p := range locPages {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        p.URL,
				LastMod:    lastMod,
				ChangeFreq: "monthly",
				Priority:   "0.8",
			})
		}

		name := SitemapFile(code)
		if err := writeXML(filepath.Join(opts.OutputDir, name), set); err != nil {
			return nil, err
		}
		files = append(files, name)
		index.Sitemaps = append(index.Sitemaps, sitemapEntry{Loc: base + "/" + name, LastMod: lastMod})
	}

	if err := writeXML(filepath.Join(opts.OutputDir, SitemapIndexFile), index); err != nil {
		return nil, err
	}
	files = append(files, SitemapIndexFile)

	robots := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/%s\n", base, SitemapIndexFile)
	if err := writeFile(filepath.Join(opts.OutputDir, RobotsFile), []byte(robots)); err != nil {
		return nil, err
	}
	files = append(files, RobotsFile)

	return files, nil
}

// SitemapURLs returns the <loc> values of a urlset document, in order.
func SitemapURLs(data []byte) ([]string, error) {
	var set urlSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decoding sitemap: %w", err)
	}
	out := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		out = append(out, u.Loc)
	}

	return out, nil
}

// PathsFromPages returns the paths of the written pages, in order.
func PathsFromPages(pages []PageResult) []paths.Path {
	out := make([]paths.Path, 0, len(pages))
	for _, p := range pages {
		out = append(out, paths.Path{Locale: p.Locale, Slug: p.Slug})
	}

	return out
}

func writeXML(path string, v any) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.NewInternalError(errors.ErrCodeInternalError, "failed to encode sitemap", err)
	}
	buf.WriteByte('\n')

	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewIOError(errors.ErrCodeWriteFailed, "failed to write file", err).WithSubject(path)
	}

	return nil
}
