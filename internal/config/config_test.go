package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Loader.Concurrency != 0 {
		t.Errorf("expected concurrency 0, got %d", cfg.Loader.Concurrency)
	}
	if cfg.Loader.StrictExtensions {
		t.Error("expected strict_extensions to be false by default")
	}
	if cfg.Writer.CompressionLevel != 6 {
		t.Errorf("expected compression level 6, got %d", cfg.Writer.CompressionLevel)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level 'warn', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tmftool.yaml")

	yamlContent := `
loader:
  concurrency: 4
  strict_extensions: true

writer:
  compression_level: 9

logging:
  level: "debug"
  log_file: "tmftool.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Loader.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", cfg.Loader.Concurrency)
	}
	if !cfg.Loader.StrictExtensions {
		t.Error("expected strict_extensions to be true")
	}
	if cfg.Writer.CompressionLevel != 9 {
		t.Errorf("expected compression level 9, got %d", cfg.Writer.CompressionLevel)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "tmftool.log" {
		t.Errorf("expected log file 'tmftool.log', got %s", cfg.Logging.LogFile)
	}
	// Untouched keys keep their defaults.
	if cfg.Logging.MaxBackups != 3 {
		t.Errorf("expected max backups 3, got %d", cfg.Logging.MaxBackups)
	}
}

func TestLoadFromTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tmftool.toml")

	tomlContent := `
[loader]
concurrency = 2

[writer]
compression_level = 0

[logging]
level = "error"
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Loader.Concurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.Loader.Concurrency)
	}
	if cfg.Writer.CompressionLevel != 0 {
		t.Errorf("expected compression level 0, got %d", cfg.Writer.CompressionLevel)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected log level 'error', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	if err := loadFromFile(Default(), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("loader: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), bad); err == nil {
		t.Error("expected error for malformed YAML")
	}

	badTOML := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(badTOML, []byte("[loader\nconcurrency = "), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), badTOML); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"nested/dir/config.yaml", "nested/dir/config.toml"} {
		t.Run(filepath.Ext(name), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := Default()
			cfg.Loader.Concurrency = 3
			cfg.Writer.CompressionLevel = 1
			cfg.Logging.Level = "info"

			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("failed to save config: %v", err)
			}

			loaded := Default()
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("failed to load saved config: %v", err)
			}
			if *loaded != *cfg {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *loaded, *cfg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Loader.Concurrency = -1
	cfg.Writer.CompressionLevel = 12
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"loader.concurrency", "writer.compression_level", "logging.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tmftool.yaml")
	yamlContent := "writer:\n  compression_level: 9\nloader:\n  concurrency: 8\n"
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	var flags Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Register(fs)
	if err := fs.Parse([]string{"--config", configPath, "--compression", "0", "--debug"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := Load(&flags)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Writer.CompressionLevel != 0 {
		t.Errorf("expected flag to set compression 0, got %d", cfg.Writer.CompressionLevel)
	}
	// Not given on the command line, so the file value stands.
	if cfg.Loader.Concurrency != 8 {
		t.Errorf("expected concurrency 8 from file, got %d", cfg.Loader.Concurrency)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tmftool.yaml")
	if err := os.WriteFile(configPath, []byte("logging:\n  level: loud\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(&Flags{ConfigPath: configPath}); err == nil {
		t.Error("expected invalid level to be rejected")
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir := ConfigDir()
	if dir == "" {
		t.Fatal("config dir should not be empty")
	}
	if !strings.HasSuffix(dir, "tmftool") {
		t.Errorf("expected config dir to end in tmftool, got %s", dir)
	}
}
