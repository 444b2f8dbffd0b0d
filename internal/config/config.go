// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

// Package config loads service configuration from defaults, an optional YAML
// file and command-line flags, in that order of precedence.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/codeplanet/usercenter/internal/account"
)

// Config is the resolved service configuration.
type Config struct {
	Server struct {
		Listen string `koanf:"listen"`
	} `koanf:"server"`

	Observability struct {
		Listen string `koanf:"listen"`
	} `koanf:"observability"`

	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`

	Auth struct {
		// Salt is mixed into every credential digest. Changing it
		// invalidates all stored digests.
		Salt      string `koanf:"salt"`
		Hasher    string `koanf:"hasher"`
		AdminRole int    `koanf:"admin_role"`
		// LoginStateKey names the session entry holding the logged-in
		// account view. Clients sharing a session store must agree on it.
		LoginStateKey string `koanf:"login_state_key"`
	} `koanf:"auth"`

	Session struct {
		TTL           time.Duration `koanf:"ttl"`
		SweepInterval time.Duration `koanf:"sweep_interval"`
	} `koanf:"session"`

	Log struct {
		Format string `koanf:"format"`
		Level  string `koanf:"level"`
	} `koanf:"log"`
}

func defaults(k *koanf.Koanf) error {
	for key, val := range map[string]any{
		"server.listen":          ":8080",
		"observability.listen":   ":9100",
		"auth.hasher":            "md5",
		"auth.admin_role":        1,
		"auth.login_state_key":   account.LoginStateKey,
		"session.ttl":            "24h",
		"session.sweep_interval": "1h",
		"log.format":             "json",
		"log.level":              "info",
	} {
		if err := k.Set(key, val); err != nil {
			return oops.With("key", key).Wrap(err)
		}
	}
	return nil
}

// Load resolves the configuration. path may be empty, in which case no file
// is read; a non-empty path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := defaults(k); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, oops.Code("CONFIG_FILE_MISSING").With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_INVALID").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.Salt == "" {
		return oops.Code("CONFIG_INVALID").Errorf("auth.salt must be set")
	}
	switch c.Auth.Hasher {
	case "md5", "argon2id":
	default:
		return oops.Code("CONFIG_INVALID").Errorf("auth.hasher must be md5 or argon2id, got %q", c.Auth.Hasher)
	}
	if c.Auth.LoginStateKey == "" {
		return oops.Code("CONFIG_INVALID").Errorf("auth.login_state_key must be set")
	}
	if c.Session.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session.ttl must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session.sweep_interval must be positive")
	}
	return nil
}
