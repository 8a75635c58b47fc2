package build

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/crc32"
	"path/filepath"
	"strconv"
	"time"

	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/renderer"
)

// Hasher produces short content hashes for written pages.
type Hasher struct {
	table *crc32.Table
}

// NewHasher creates a hasher using the Castagnoli polynomial.
func NewHasher() *Hasher {
	return &Hasher{table: crc32.MakeTable(crc32.Castagnoli)}
}

// Sum returns the hex CRC32-C of data.
func (h *Hasher) Sum(data []byte) string {
	return strconv.FormatUint(uint64(crc32.Checksum(data, h.table)), 16)
}

// Manifest lists what a build produced.
type Manifest struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	Pages       []PageResult   `json:"pages"`
	Files       []string       `json:"files"`
	Failures    []ManifestFail `json:"failures,omitempty"`
}

// ManifestFail is a failed path as recorded in the manifest.
type ManifestFail struct {
	Locale string `json:"locale"`
	Slug   string `json:"slug"`
	Error  string `json:"error"`
}

func writeManifest(outDir string, result *Result, at time.Time) error {
	m := Manifest{
		GeneratedAt: at.UTC(),
		Pages:       result.Pages,
		Files:       append([]string{ManifestFile}, result.Files...),
	}
	if m.Pages == nil {
		m.Pages = []PageResult{}
	}
	for _, f := range result.Failures {
		m.Failures = append(m.Failures, ManifestFail{Locale: f.Locale, Slug: f.Slug, Error: f.Err.Error()})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInternalError, "failed to encode manifest", err)
	}

	return writeFile(filepath.Join(outDir, ManifestFile), append(data, '\n'))
}

// ReadManifest decodes a manifest.json document.
func ReadManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.NewParseError(errors.ErrCodeMalformedDocument, "invalid manifest", err)
	}

	return &m, nil
}

func writeNotFound(outDir, code, homeURL string) error {
	var buf bytes.Buffer
	if err := renderer.NotFoundDocument(code, homeURL).Render(context.Background(), &buf); err != nil {
		return errors.NewInternalError(errors.ErrCodeInternalError, "failed to render not-found page", err)
	}

	return writeFile(filepath.Join(outDir, NotFoundFile), buf.Bytes())
}
