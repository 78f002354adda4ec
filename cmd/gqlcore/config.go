package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// config is the optional TOML settings file. Command line flags override it.
//
//	schema = "schema.graphql"
//	format = "json"
//
//	[variables]
//	episode = "JEDI"
//
//	[serve]
//	addr = ":8080"
//	data = "data.json"
//	timeout = "5s"
//
//	[otel]
//	endpoint = "localhost:4317"
type config struct {
	Schema    string         `toml:"schema"`
	Format    string         `toml:"format"`
	Variables map[string]any `toml:"variables"`
	Serve     serveConfig    `toml:"serve"`
	OTel      otelConfig     `toml:"otel"`
}

type serveConfig struct {
	Addr          string   `toml:"addr"`
	Data          string   `toml:"data"`
	Introspection *bool    `toml:"introspection"`
	Timeout       string   `toml:"timeout"`
	Pretty        bool     `toml:"pretty"`
	CORS          []string `toml:"cors"`
	MaxBodyBytes  int64    `toml:"max_body_bytes"`
}

type otelConfig struct {
	Endpoint string `toml:"endpoint"`
	Service  string `toml:"service"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}
