// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix environment variables must carry to be picked up
// by Load. The rest of the name is lowercased and each underscore becomes a
// key-path separator, so top-level fields are named without underscores,
// e.g. HARMONIC_APIBASEURL, HARMONIC_REQUESTTIMEOUT.
const EnvPrefix = "HARMONIC_"

// Load builds a Configuration by layering, in order: compiled-in defaults,
// an optional YAML file (skipped if yamlPath is empty; a yamlPath that cannot
// be read is an error), then environment variables prefixed with EnvPrefix. The
// result is validated before it is returned.
func Load(yamlPath string) (Configuration, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return Configuration{}, fmt.Errorf("config: loading defaults: %w", err)
	}

	if yamlPath != "" {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			return Configuration{}, fmt.Errorf("config: loading %s: %w", yamlPath, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		trimmed := strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(trimmed), "_", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Configuration{}, fmt.Errorf("config: loading environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return Configuration{}, fmt.Errorf("config: unmarshalling: %w", err)
	}

	return New(cfg)
}
