package content

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/quick-calculator/calcdir/internal/errors"
)

// BundleFile is the label document name inside each locale directory.
const BundleFile = "common.json"

// Bundles maps a locale to its decoded UI label document.
type Bundles map[string]map[string]any

// LoadBundles reads <dir>/<locale>/common.json for each locale. Locales
// without a bundle are skipped; an empty dir yields no bundles.
func LoadBundles(dir string, locales []string) (Bundles, error) {
	bundles := make(Bundles)
	if dir == "" {
		return bundles, nil
	}

	for _, code := range locales {
		path := filepath.Join(dir, code, BundleFile)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.NewParseError(errors.ErrCodeReadFailed, "unreadable label bundle", err).
				WithSubject(BundleFile).
				WithLocale(code)
		}

		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.NewParseError(errors.ErrCodeMalformedDocument, "malformed label bundle", err).
				WithSubject(BundleFile).
				WithLocale(code)
		}
		bundles[code] = doc
	}

	return bundles, nil
}
