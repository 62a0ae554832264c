// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(context.Context, map[string]any) (string, error) {
	return "", nil
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("send_email", noopHandler))

	fn, ok := reg.Lookup("send_email")
	assert.True(t, ok)
	assert.NotNil(t, fn)

	_, ok = reg.Lookup("unknown")
	assert.False(t, ok)

	assert.Equal(t, []string{"send_email"}, reg.Names())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("send_email", noopHandler))

	err := reg.Register("send_email", noopHandler)
	require.ErrorIs(t, err, ErrDuplicateHandler)
}

func TestRegistryRejectsInvalidHandlers(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register("", noopHandler))
	assert.Error(t, reg.Register("nil_fn", nil))
}
