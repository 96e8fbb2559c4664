package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/lnp-works/tlvstream/tlv"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRuntimeConfigDefaults(t *testing.T) {
	cfg, err := loadRuntimeConfig("")
	if err != nil {
		t.Fatalf("load empty config: %v", err)
	}
	if cfg.Inspect.ListenAddr != ":9300" {
		t.Fatalf("unexpected listen addr: %q", cfg.Inspect.ListenAddr)
	}
}

func TestLoadRuntimeConfigKnownRecords(t *testing.T) {
	path := writeConfig(t, `
listen_addr = "127.0.0.1:9400"
cors_origins = ["http://localhost:3000", " "]

[[known]]
type = 2
kind = "u64"
name = "amount"

[[known]]
type = 4
kind = "u32"
`)
	cfg, err := loadRuntimeConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Inspect.ListenAddr != "127.0.0.1:9400" {
		t.Fatalf("unexpected listen addr: %q", cfg.Inspect.ListenAddr)
	}
	if len(cfg.Inspect.CorsOrigins) != 1 {
		t.Fatalf("unexpected origins: %+v", cfg.Inspect.CorsOrigins)
	}
	if cfg.Names[2] != "amount" {
		t.Fatalf("unexpected name map: %+v", cfg.Names)
	}

	// The registry must actually decode the declared kinds.
	var stream []byte
	stream = tlv.AppendRecord(stream, 2, tlv.AppendUint64(nil, 99))
	stream = tlv.AppendRecord(stream, 4, tlv.AppendUint32(nil, 7))
	decoded, err := tlv.NewDecoder(cfg.Registry).Decode(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("decode with config registry: %v", err)
	}
	if v, ok := tlv.Get[uint64](decoded, 2); !ok || v != 99 {
		t.Fatalf("record 2: got %v ok=%v", v, ok)
	}
}

func TestLoadRuntimeConfigRejectsUnknownKind(t *testing.T) {
	path := writeConfig(t, `
[[known]]
type = 2
kind = "varstring"
`)
	if _, err := loadRuntimeConfig(path); err == nil {
		t.Fatalf("expected unsupported kind error")
	}
}

func TestLoadRuntimeConfigRejectsDuplicateType(t *testing.T) {
	path := writeConfig(t, `
[[known]]
type = 2
kind = "u64"

[[known]]
type = 2
kind = "u32"
`)
	if _, err := loadRuntimeConfig(path); err == nil {
		t.Fatalf("expected duplicate type error")
	}
}
