package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ccollicutt/gedline/pkg/encoding"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
sources:
  - /data/*.ged
encoding: ansel
max_line_length: 4096
sample_size: 20
`
	path := writeTempFile(t, "config.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Sources) != 1 {
		t.Errorf("Sources = %d, want 1", len(cfg.Sources))
	}
	if cfg.ResolvedEncoding() != encoding.ANSEL {
		t.Errorf("ResolvedEncoding() = %s, want ANSEL", cfg.ResolvedEncoding())
	}
	if cfg.MaxLineLength != 4096 {
		t.Errorf("MaxLineLength = %d, want 4096", cfg.MaxLineLength)
	}
	if cfg.SampleSize != 20 {
		t.Errorf("SampleSize = %d, want 20", cfg.SampleSize)
	}
	if cfg.BufferSize != DefaultBufferSize {
		t.Errorf("BufferSize = %d, want default %d", cfg.BufferSize, DefaultBufferSize)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	content := `invalid: yaml: content: [`
	path := writeTempFile(t, "invalid.yaml", content)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv(EnvEncoding, "utf-16be")

	path := writeTempFile(t, "config.yaml", "sources: [family.ged]\nencoding: ascii\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ResolvedEncoding() != encoding.UnicodeBigEndian {
		t.Errorf("ResolvedEncoding() = %s, want UNICODE (BE)", cfg.ResolvedEncoding())
	}
}

func TestValidate_NoSources(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for empty sources")
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty source", func(c *Config) { c.Sources = []string{" "} }, true},
		{"bad pattern", func(c *Config) { c.Sources = []string{"[a-"} }, true},
		{"unknown encoding", func(c *Config) { c.Encoding = "ebcdic" }, true},
		{"auto upper case", func(c *Config) { c.Encoding = "AUTO" }, false},
		{"empty encoding", func(c *Config) { c.Encoding = "" }, false},
		{"tiny buffer", func(c *Config) { c.BufferSize = 4 }, true},
		{"negative line length", func(c *Config) { c.MaxLineLength = -1 }, true},
		{"negative sample", func(c *Config) { c.SampleSize = -5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Sources = []string{"family.ged"}
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := &Config{Sources: []string{"family.ged"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.BufferSize != DefaultBufferSize || cfg.MaxLineLength != DefaultMaxLineLength || cfg.SampleSize != DefaultSampleSize {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.ResolvedEncoding().Valid() {
		t.Errorf("ResolvedEncoding() = %s, want detection", cfg.ResolvedEncoding())
	}
}

func TestResolveEncoding(t *testing.T) {
	tests := []struct {
		input string
		want  encoding.Encoding
	}{
		{"auto", 0},
		{"", 0},
		{"ANSEL", encoding.ANSEL},
		{"unicode", encoding.UnicodeLittleEndian},
		{"utf8", encoding.UTF8},
	}
	for _, tt := range tests {
		got, err := ResolveEncoding(tt.input)
		if err != nil {
			t.Errorf("ResolveEncoding(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveEncoding(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if cfg.Encoding != EncodingAuto {
		t.Errorf("Encoding = %q, want %q", cfg.Encoding, EncodingAuto)
	}
	if cfg.MaxLineLength <= 0 || cfg.BufferSize <= 0 || cfg.SampleSize <= 0 {
		t.Errorf("DefaultConfig() has unset sizes: %+v", cfg)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.ged", "a.ged", "notes.txt"} {
		writeFile(t, filepath.Join(dir, name), "0 HEAD\n")
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.ged"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Sources: []string{
		filepath.Join(dir, "*.ged"),
		filepath.Join(dir, "a.ged"),
	}}
	files, err := cfg.Files()
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}

	want := []string{filepath.Join(dir, "a.ged"), filepath.Join(dir, "b.ged")}
	if len(files) != len(want) {
		t.Fatalf("Files() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("Files()[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestFiles_NoMatch(t *testing.T) {
	cfg := &Config{Sources: []string{filepath.Join(t.TempDir(), "*.ged")}}
	if _, err := cfg.Files(); err == nil {
		t.Error("Files() expected error when nothing matches")
	}
}

func TestFiles_PlainPathKept(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.ged")
	cfg := &Config{Sources: []string{missing, missing}}

	files, err := cfg.Files()
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	if len(files) != 1 || files[0] != missing {
		t.Errorf("Files() = %v, want [%s]", files, missing)
	}
}

func TestValidate_Webhook(t *testing.T) {
	tests := []struct {
		name    string
		webhook WebhookConfig
		wantErr bool
	}{
		{"https", WebhookConfig{URL: "https://example.com/hook"}, false},
		{"http", WebhookConfig{URL: "http://localhost:8080/hook", Trigger: WebhookTriggerAlways}, false},
		{"never", WebhookConfig{URL: "https://example.com/hook", Trigger: WebhookTriggerNever}, false},
		{"missing url", WebhookConfig{Name: "no-url"}, true},
		{"bad scheme", WebhookConfig{URL: "ftp://example.com/hook"}, true},
		{"no host", WebhookConfig{URL: "https:///hook"}, true},
		{"bad trigger", WebhookConfig{URL: "https://example.com/hook", Trigger: "sometimes"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Sources: []string{"family.ged"}, Webhooks: []WebhookConfig{tt.webhook}}
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_WebhookDefaults(t *testing.T) {
	cfg := &Config{
		Sources:  []string{"family.ged"},
		Webhooks: []WebhookConfig{{URL: "https://example.com/hook"}},
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerOnFailure {
		t.Errorf("Trigger = %v, want %v", cfg.Webhooks[0].Trigger, WebhookTriggerOnFailure)
	}
	if cfg.Webhooks[0].Timeout != DefaultWebhookTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Webhooks[0].Timeout, DefaultWebhookTimeout)
	}
}

func TestLoad_WithWebhooks(t *testing.T) {
	content := `
sources:
  - family.ged
webhooks:
  - name: archive
    url: "https://example.com/webhook"
    trigger: always
    timeout: 30s
`
	path := writeTempFile(t, "config-with-webhooks.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Webhooks) != 1 {
		t.Fatalf("Webhooks = %d, want 1", len(cfg.Webhooks))
	}
	if cfg.Webhooks[0].Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Webhooks[0].Timeout)
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_TOKEN", "secret-value")

	tests := []struct {
		input string
		want  string
	}{
		{"${TEST_WEBHOOK_TOKEN}", "secret-value"},
		{"$TEST_WEBHOOK_TOKEN", "secret-value"},
		{"plain-value", "plain-value"},
		{"", ""},
		{"${NONEXISTENT_VAR}", ""},
	}

	for _, tt := range tests {
		got := expandEnvVar(tt.input)
		if got != tt.want {
			t.Errorf("expandEnvVar(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	writeFile(t, path, content)
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
}
