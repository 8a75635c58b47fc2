package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/logging"
	"golang.org/x/text/language"
)

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	if err := validateSite(&c.Site); err != nil {
		return err
	}
	if err := validateLocales(&c.Locales); err != nil {
		return err
	}
	if err := validateValidation(&c.Validation); err != nil {
		return err
	}
	if err := validateServer(&c.Server); err != nil {
		return err
	}
	if c.Content.Dir == "" {
		return configError("content.dir", "must not be empty", nil)
	}
	for slug, file := range c.Content.Aliases {
		if slug == "" || file == "" {
			return configError("content.aliases", fmt.Sprintf("alias %q -> %q has an empty side", slug, file), nil)
		}
	}
	if c.Content.RelatedLimit < 0 {
		return configError("content.related_limit", fmt.Sprintf("%d is negative", c.Content.RelatedLimit), nil)
	}
	if c.Build.Workers < 0 {
		return configError("build.workers", fmt.Sprintf("%d is negative", c.Build.Workers), nil)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return configError("log.level", err.Error(), nil)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return configError("log.format", fmt.Sprintf("%q is not text or json", c.Log.Format), nil)
	}

	return nil
}

func validateSite(site *SiteConfig) error {
	u, err := url.Parse(site.BaseURL)
	if err != nil {
		return configError("site.base_url", "unparseable URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return configError("site.base_url", fmt.Sprintf("%q must be an http or https URL", site.BaseURL), nil)
	}
	if u.Host == "" {
		return configError("site.base_url", fmt.Sprintf("%q has no host", site.BaseURL), nil)
	}
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")

	return nil
}

func validateLocales(loc *LocalesConfig) error {
	if len(loc.Global) == 0 {
		return configError("locales.global", "at least one global locale is required", nil)
	}

	seen := make(map[string]bool)
	for _, code := range append(append([]string{}, loc.Global...), loc.Extended...) {
		if _, err := language.Parse(code); err != nil {
			return configError("locales", fmt.Sprintf("%q is not a language code", code), err)
		}
		if seen[code] {
			return configError("locales", fmt.Sprintf("locale %q is listed twice", code), nil)
		}
		seen[code] = true
	}

	baseIsGlobal := false
	for _, code := range loc.Global {
		if code == loc.Base {
			baseIsGlobal = true

			break
		}
	}
	if !baseIsGlobal {
		return configError("locales.base", fmt.Sprintf("base locale %q must be one of the global locales", loc.Base), nil)
	}

	return nil
}

func validateValidation(v *ValidationConfig) error {
	if v.MinTokens < 1 {
		return configError("validation.min_tokens", fmt.Sprintf("%d must be at least 1", v.MinTokens), nil)
	}
	if v.MatchRatio < 0 || v.MatchRatio >= 1 {
		return configError("validation.match_ratio", fmt.Sprintf("%v must be in [0, 1)", v.MatchRatio), nil)
	}
	if v.MaxListed < 1 {
		return configError("validation.max_listed", fmt.Sprintf("%d must be at least 1", v.MaxListed), nil)
	}
	if v.MaxListedExtra < 1 {
		return configError("validation.max_listed_extra", fmt.Sprintf("%d must be at least 1", v.MaxListedExtra), nil)
	}

	return nil
}

func validateServer(s *ServerConfig) error {
	// Port 0 asks the system for a free port.
	if s.Port < 0 || s.Port > 65535 {
		return configError("server.port", fmt.Sprintf("port %d is not in valid range 0-65535", s.Port), nil)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", " "}
	for _, char := range dangerousChars {
		if strings.Contains(s.Host, char) {
			return configError("server.host", fmt.Sprintf("host contains dangerous character: %q", char), nil)
		}
	}

	return nil
}

func configError(field, message string, cause error) error {
	msg := message
	if field != "" {
		msg = field + ": " + message
	}
	err := errors.NewConfigError(errors.ErrCodeConfigInvalid, msg)
	err.Cause = cause
	if field != "" {
		err.WithContext("field", field)
	}

	return err
}
