package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quick-calculator/calcdir/internal/errors"
)

// DefaultBaseLocale is the locale whose section supplies category and
// component when none is configured.
const DefaultBaseLocale = "en"

// Parse decodes one calculator document. The slug defaults to the filename.
func Parse(filename string, data []byte) (*Record, error) {
	return ParseWithBase(filename, data, DefaultBaseLocale)
}

// ParseWithBase decodes a document, reading category and component from the
// given base locale's section.
func ParseWithBase(filename string, data []byte, base string) (*Record, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.NewParseError(errors.ErrCodeMalformedDocument, "malformed JSON", err).WithSubject(filename)
	}
	if dec.More() {
		return nil, errors.NewParseError(errors.ErrCodeMalformedDocument, "trailing data after document", nil).WithSubject(filename)
	}

	issues, err := validateShape(doc)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError, "schema unavailable", err)
	}
	if len(issues) > 0 {
		parts := make([]string, len(issues))
		for i, issue := range issues {
			parts[i] = issue.String()
		}

		return nil, errors.NewParseError(errors.ErrCodeSchemaViolation, strings.Join(parts, "; "), nil).
			WithSubject(filename).
			WithContext("issues", issues)
	}

	sections, ok := doc.(map[string]any)
	if !ok {
		return nil, errors.NewParseError(errors.ErrCodeMalformedDocument, "document is not an object", nil).WithSubject(filename)
	}

	record := &Record{
		Slug:     filename,
		Filename: filename,
		Category: CategoryOther,
		Locales:  make(map[string]*LocaleContent, len(sections)),
	}

	for code, raw := range sections {
		section, _ := raw.(map[string]any)
		lc, err := decodeSection(section)
		if err != nil {
			return nil, errors.NewParseError(errors.ErrCodeMalformedDocument,
				fmt.Sprintf("section %q", code), err).WithSubject(filename)
		}
		record.Locales[code] = lc
	}

	if lc, ok := record.Locales[base]; ok {
		category, err := ParseCategory(lc.Category)
		if err != nil {
			return nil, errors.NewParseError(errors.ErrCodeUnknownCategory, err.Error(), nil).
				WithSubject(filename).
				WithLocale(base)
		}
		record.Category = category
		record.ComponentID = lc.Component
	}

	return record, nil
}

// decodeSection fills the typed fields from an already-decoded section. Null
// values leave the field empty; the raw map keeps them for validation.
func decodeSection(section map[string]any) (*LocaleContent, error) {
	lc := &LocaleContent{Raw: section}
	if section == nil {
		lc.Raw = map[string]any{}
		return lc, nil
	}

	fields := map[string]*string{
		"title":           &lc.Title,
		"seoTitle":        &lc.SEOTitle,
		"metaDescription": &lc.MetaDescription,
		"summary":         &lc.Summary,
		"slug":            &lc.Slug,
		"category":        &lc.Category,
		"component":       &lc.Component,
	}
	for key, dst := range fields {
		switch v := section[key].(type) {
		case nil:
		case string:
			*dst = v
		default:
			return nil, fmt.Errorf("field %q is %T, not a string", key, v)
		}
	}

	switch v := section["seoContent"].(type) {
	case nil:
	case map[string]any:
		lc.SEOContent = v
	default:
		return nil, fmt.Errorf("field %q is %T, not an object", "seoContent", v)
	}

	return lc, nil
}
