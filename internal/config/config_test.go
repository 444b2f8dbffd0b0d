// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeplanet/usercenter/internal/account"
	"github.com/codeplanet/usercenter/pkg/errutil"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usercenter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, "auth:\n  salt: pepper\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, ":9100", cfg.Observability.Listen)
	assert.Equal(t, "md5", cfg.Auth.Hasher)
	assert.Equal(t, 1, cfg.Auth.AdminRole)
	assert.Equal(t, account.LoginStateKey, cfg.Auth.LoginStateKey)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, time.Hour, cfg.Session.SweepInterval)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen: ":9000"
database:
  url: postgres://localhost/usercenter
auth:
  salt: pepper
  hasher: argon2id
  admin_role: 2
  login_state_key: customLoginState
session:
  ttl: 1h
log:
  format: text
  level: debug
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, "postgres://localhost/usercenter", cfg.Database.URL)
	assert.Equal(t, "argon2id", cfg.Auth.Hasher)
	assert.Equal(t, 2, cfg.Auth.AdminRole)
	assert.Equal(t, "customLoginState", cfg.Auth.LoginStateKey)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, "server:\n  listen: \":9000\"\nauth:\n  salt: pepper\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.listen", "", "")
	flags.String("database.url", "", "")
	require.NoError(t, flags.Parse([]string{
		"--server.listen=:7070",
		"--database.url=postgres://db/uc",
	}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.Equal(t, "postgres://db/uc", cfg.Database.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/usercenter.yaml", nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_FILE_MISSING")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "auth: [not a map\n")

	_, err := Load(path, nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_FILE_INVALID")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "missing salt",
			content: "server:\n  listen: \":8080\"\n",
			wantMsg: "auth.salt must be set",
		},
		{
			name:    "unknown hasher",
			content: "auth:\n  salt: pepper\n  hasher: bcrypt\n",
			wantMsg: "auth.hasher must be md5 or argon2id",
		},
		{
			name:    "blank login state key",
			content: "auth:\n  salt: pepper\n  login_state_key: \"\"\n",
			wantMsg: "auth.login_state_key must be set",
		},
		{
			name:    "non-positive ttl",
			content: "auth:\n  salt: pepper\nsession:\n  ttl: 0s\n",
			wantMsg: "session.ttl must be positive",
		},
		{
			name:    "non-positive sweep interval",
			content: "auth:\n  salt: pepper\nsession:\n  sweep_interval: -1m\n",
			wantMsg: "session.sweep_interval must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			_, err := Load(path, nil)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_NoFile(t *testing.T) {
	// An empty path skips the file layer; validation still applies.
	_, err := Load("", nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}
