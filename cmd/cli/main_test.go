package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/mtlsim/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CounterModel(t *testing.T) {
	var out, logs bytes.Buffer
	model := filepath.Join("..", "..", "models", "counter.hcl")

	err := run(context.Background(), &out, &logs, []string{
		"-top", "Counter", "-poke", "en=1", "-cycles", "4", "-peek", "count", "-peek", "bank[3]", model,
	})
	require.NoError(t, err)
	assert.Equal(t, "count = 4 (0b00000100)\nbank[3] = 3 (0b00000011)\n", out.String())
}

func TestRun_UsageError(t *testing.T) {
	var out, logs bytes.Buffer
	err := run(context.Background(), &out, &logs, []string{"-log-level", "loud", "model.hcl"})
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}
