// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package errutil

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	t.Run("extracts string code", func(t *testing.T) {
		err := oops.Code("ACCOUNT_INVALID_PARAMS").Errorf("bad input")
		assert.Equal(t, "ACCOUNT_INVALID_PARAMS", Code(err))
	})

	t.Run("wrapped oops error", func(t *testing.T) {
		inner := oops.Code("STORE_CONNECT_FAILED").Errorf("down")
		assert.Equal(t, "STORE_CONNECT_FAILED", Code(oops.Wrap(inner)))
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, "", Code(nil))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, "", Code(errors.New("plain")))
	})

	t.Run("oops error without code", func(t *testing.T) {
		assert.Equal(t, "", Code(oops.Errorf("no code set")))
	})
}

func TestLogError(t *testing.T) {
	newLogger := func(buf *bytes.Buffer) *slog.Logger {
		return slog.New(slog.NewTextHandler(buf, nil))
	}

	t.Run("oops error with code and context", func(t *testing.T) {
		var buf bytes.Buffer
		err := oops.Code("ACCOUNT_STORAGE_FAILED").With("id", 7).Errorf("write failed")
		LogError(newLogger(&buf), "storage", err)
		out := buf.String()
		assert.Contains(t, out, "ACCOUNT_STORAGE_FAILED")
		assert.Contains(t, out, "write failed")
		assert.Contains(t, out, "id")
	})

	t.Run("oops error without code omits code attr", func(t *testing.T) {
		var buf bytes.Buffer
		LogError(newLogger(&buf), "storage", oops.Errorf("write failed"))
		assert.NotContains(t, buf.String(), "code=")
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		LogError(newLogger(&buf), "storage", errors.New("plain failure"))
		assert.Contains(t, buf.String(), "plain failure")
	})
}
