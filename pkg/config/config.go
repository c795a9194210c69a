package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/gedline/pkg/encoding"
)

// minBufferSize keeps the line buffer large enough for any single
// character sequence the decoders emit.
const minBufferSize = 16

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors, fills unset sizes with
// defaults and resolves the encoding name.
func Validate(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return errors.New("sources: at least one source is required")
	}
	for i, src := range cfg.Sources {
		if strings.TrimSpace(src) == "" {
			return fmt.Errorf("sources[%d]: path is empty", i)
		}
		if _, err := filepath.Match(src, ""); err != nil {
			return fmt.Errorf("sources[%d] (%s): invalid pattern: %w", i, src, err)
		}
	}

	// Empty or auto leaves detection to each file
	enc, err := ResolveEncoding(cfg.Encoding)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	cfg.resolvedEncoding = enc

	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if cfg.BufferSize < minBufferSize {
		return fmt.Errorf("buffer_size: must be at least %d, got %d", minBufferSize, cfg.BufferSize)
	}

	if cfg.MaxLineLength == 0 {
		cfg.MaxLineLength = DefaultMaxLineLength
	}
	if cfg.MaxLineLength < 0 {
		return fmt.Errorf("max_line_length: must be positive, got %d", cfg.MaxLineLength)
	}

	if cfg.SampleSize == 0 {
		cfg.SampleSize = DefaultSampleSize
	}
	if cfg.SampleSize < 0 {
		return fmt.Errorf("sample_size: must be positive, got %d", cfg.SampleSize)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// ResolveEncoding maps an encoding setting to an Encoding. An empty value
// or "auto" returns the zero Encoding, meaning detect.
func ResolveEncoding(name string) (encoding.Encoding, error) {
	if name == "" || strings.EqualFold(strings.TrimSpace(name), EncodingAuto) {
		return 0, nil
	}
	return encoding.Parse(name)
}

// Files expands the configured sources into a sorted, de-duplicated list
// of paths. Plain paths are kept even if they do not exist so that reading
// them reports the failure; a glob that matches nothing is an error.
func (c *Config) Files() ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range c.Sources {
		if !hasMeta(pattern) {
			if !seen[pattern] {
				seen[pattern] = true
				files = append(files, pattern)
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		// Directories matched by a glob are skipped
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[\`)
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	// Default to on_failure
	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnFailure
	case WebhookTriggerOnFailure, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_failure, always, or never)", wh.Trigger)
	}

	// Default timeout
	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}
	return s
}
