package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lnp-works/tlvstream/internal/inspect"
	"github.com/lnp-works/tlvstream/tlv"
)

type fileConfig struct {
	ListenAddr  string            `toml:"listen_addr"`
	CorsOrigins []string          `toml:"cors_origins"`
	Known       []fileKnownRecord `toml:"known"`
}

type fileKnownRecord struct {
	Type uint64 `toml:"type"`
	Kind string `toml:"kind"`
	Name string `toml:"name"`
}

type runtimeConfig struct {
	Inspect  inspect.Config
	Registry *tlv.Registry
	Names    map[tlv.TypeID]string
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		Inspect:  inspect.DefaultConfig(),
		Registry: tlv.NewRegistry(),
		Names:    make(map[tlv.TypeID]string),
	}
}

func loadRuntimeConfig(path string) (runtimeConfig, error) {
	cfg := defaultRuntimeConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return runtimeConfig{}, fmt.Errorf("load tlvctl config: %w", err)
	}

	if meta.IsDefined("listen_addr") {
		addr := strings.TrimSpace(raw.ListenAddr)
		if addr != "" {
			cfg.Inspect.ListenAddr = addr
		}
	}
	if meta.IsDefined("cors_origins") {
		cfg.Inspect.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}

	seen := make(map[uint64]struct{}, len(raw.Known))
	for _, rec := range raw.Known {
		if _, dup := seen[rec.Type]; dup {
			return runtimeConfig{}, fmt.Errorf("known record type %d declared twice", rec.Type)
		}
		seen[rec.Type] = struct{}{}

		fn, ok := tlv.DecodeFuncFor(strings.TrimSpace(rec.Kind))
		if !ok {
			return runtimeConfig{}, fmt.Errorf("known record type %d: unsupported kind %q", rec.Type, rec.Kind)
		}
		id := tlv.TypeID(rec.Type)
		cfg.Registry.Register(id, fn)
		if name := strings.TrimSpace(rec.Name); name != "" {
			cfg.Names[id] = name
		}
	}

	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
