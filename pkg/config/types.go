// Package config provides configuration loading and validation for gedline.
package config

import (
	"time"

	"github.com/ccollicutt/gedline/pkg/encoding"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Sources lists GEDCOM files to read. Glob patterns are expanded.
	Sources []string `yaml:"sources"`

	// Encoding is "auto" (detect per file) or an encoding name such as
	// "ansel", "utf-8" or "utf-16le".
	Encoding string `yaml:"encoding,omitempty"`

	// BufferSize is the initial line buffer size in bytes.
	BufferSize int `yaml:"buffer_size,omitempty"`

	// MaxLineLength is the longest decoded line accepted, in bytes.
	MaxLineLength int `yaml:"max_line_length,omitempty"`

	// SampleSize is the number of header lines searched for a CHAR line.
	SampleSize int `yaml:"sample_size,omitempty"`

	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`

	// resolvedEncoding is populated during validation; zero means detect.
	resolvedEncoding encoding.Encoding
}

// ResolvedEncoding returns the configured encoding, or the zero Encoding
// when each file's encoding should be detected.
func (c *Config) ResolvedEncoding() encoding.Encoding {
	return c.resolvedEncoding
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnFailure fires only when a file failed to load (default).
	WebhookTriggerOnFailure WebhookTrigger = "on_failure"
	// WebhookTriggerAlways fires after every run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines an endpoint that receives load reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty"`

	// Trigger defaults to "on_failure".
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout. Defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
