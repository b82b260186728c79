package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Addr == "" || cfg.Encoding != "utf-8" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.DefaultEbN0dB != 5.0 {
		t.Errorf("default Eb/N0 %v, expected 5.0", cfg.DefaultEbN0dB)
	}
	if _, err := cfg.Codec(); err != nil {
		t.Errorf("default config does not build a codec: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semcom.yaml")
	content := []byte(`
addr: "127.0.0.1:9000"
default_ebno_db: 2.5
encoding: iso-8859-1
encode_policy: escape
decode_policy: substitute
embedder_url: "http://localhost:5000/embed"
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.DefaultEbN0dB != 2.5 {
		t.Errorf("loaded values: %+v", cfg)
	}
	if cfg.EmbedderURL != "http://localhost:5000/embed" {
		t.Errorf("embedder url %q", cfg.EmbedderURL)
	}
	// Unset keys keep their defaults.
	if cfg.StaticDir != Default().StaticDir {
		t.Errorf("static dir %q", cfg.StaticDir)
	}

	if _, err := cfg.Codec(); err != nil {
		t.Errorf("loaded config does not build a codec: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCodec_BadPolicies(t *testing.T) {
	cfg := Default()
	cfg.EncodePolicy = "mangle"
	if _, err := cfg.Codec(); err == nil {
		t.Error("expected error for unknown encode policy")
	}

	cfg = Default()
	cfg.DecodePolicy = "mangle"
	if _, err := cfg.Codec(); err == nil {
		t.Error("expected error for unknown decode policy")
	}
}
