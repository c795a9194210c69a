package config

import (
	"os"
	"time"

	"github.com/ccollicutt/gedline/pkg/detector"
	"github.com/ccollicutt/gedline/pkg/reader"
)

// Default values for configuration.
const (
	DefaultEncoding       = EncodingAuto
	DefaultBufferSize     = reader.DefaultBufferSize
	DefaultMaxLineLength  = reader.DefaultMaxLineLength
	DefaultSampleSize     = detector.DefaultSampleSize
	DefaultWebhookTimeout = 10 * time.Second
)

// EncodingAuto asks for the encoding of each file to be detected.
const EncodingAuto = "auto"

// Environment variable names.
const (
	EnvEncoding = "GEDLINE_ENCODING"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sources:       []string{},
		Encoding:      DefaultEncoding,
		BufferSize:    DefaultBufferSize,
		MaxLineLength: DefaultMaxLineLength,
		SampleSize:    DefaultSampleSize,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if enc := os.Getenv(EnvEncoding); enc != "" {
		c.Encoding = enc
	}
}
