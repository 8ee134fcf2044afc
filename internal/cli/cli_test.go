package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/mtlsim/internal/app"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		args           []string
		expectExit     bool
		expectErr      bool
		expectedConfig *app.Config
		outputContains string
	}{
		{
			name: "Happy path with all flags",
			args: []string{
				"-model", "/test/models",
				"-top", "Counter",
				"-param", "nbits=4",
				"-cycles", "10",
				"-poke", "en=1",
				"-poke", "u0.regs[2]=0x3",
				"-peek", "count",
				"-peek", "u0.regs[2]",
				"--max-evals=1000",
				"--loop-check=error",
				"--log-level=debug",
				"--log-format=json",
				"--serve=:8080",
				"--timeout=3s",
			},
			expectedConfig: &app.Config{
				ModelPath: "/test/models",
				Top:       "Counter",
				Params:    map[string]int64{"nbits": 4},
				Cycles:    10,
				Pokes:     []app.Poke{{Path: "en", Value: 1}, {Path: "u0.regs[2]", Value: 3}},
				Peeks:     []string{"count", "u0.regs[2]"},
				MaxEvals:  1000,
				LoopCheck: "error",
				LogLevel:  "debug",
				LogFormat: "json",
				Serve:     ":8080",
				Timeout:   3 * time.Second,
			},
		},
		{
			name: "Shorthand flag and defaults",
			args: []string{"-m", "/short/path"},
			expectedConfig: &app.Config{
				ModelPath: "/short/path",
				LoopCheck: "warn",
				LogLevel:  "info",
				LogFormat: "text",
				Timeout:   app.DefaultTimeout,
			},
		},
		{
			name: "Positional argument for path",
			args: []string{"-top", "Counter", "/positional/path"},
			expectedConfig: &app.Config{
				ModelPath: "/positional/path",
				Top:       "Counter",
				LoopCheck: "warn",
				LogLevel:  "info",
				LogFormat: "text",
				Timeout:   app.DefaultTimeout,
			},
		},
		{
			name: "Remote needs no model",
			args: []string{"-remote", "http://localhost:8080", "-cycles", "2", "-peek", "count"},
			expectedConfig: &app.Config{
				Cycles:    2,
				Peeks:     []string{"count"},
				LoopCheck: "warn",
				LogLevel:  "info",
				LogFormat: "text",
				Remote:    "http://localhost:8080",
				Timeout:   app.DefaultTimeout,
			},
		},
		{
			name:           "Help flag triggers clean exit",
			args:           []string{"-h"},
			expectExit:     true,
			outputContains: "Usage:",
		},
		{
			name:           "No path triggers clean exit with usage",
			args:           []string{},
			expectExit:     true,
			outputContains: "MODEL_PATH",
		},
		{name: "Invalid log level", args: []string{"--log-level=foo", "/path"}, expectErr: true},
		{name: "Invalid log format", args: []string{"--log-format=yaml", "/path"}, expectErr: true},
		{name: "Invalid loop check", args: []string{"--loop-check=maybe", "/path"}, expectErr: true},
		{name: "Invalid poke", args: []string{"-poke", "en", "/path"}, expectErr: true},
		{name: "Invalid param", args: []string{"-param", "nbits=x", "/path"}, expectErr: true},
		{name: "Negative cycles", args: []string{"-cycles", "-1", "/path"}, expectErr: true},
		{name: "Serve with remote", args: []string{"-serve", ":1", "-remote", "http://x"}, expectErr: true},
		{name: "Top with remote", args: []string{"-top", "A", "-remote", "http://x"}, expectErr: true},
		{name: "Unknown flag", args: []string{"-nope", "/path"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}
			cfg, shouldExit, err := Parse(tc.args, out)

			if tc.expectErr {
				require.Error(t, err)
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr), "expected an ExitError")
				require.Equal(t, 2, exitErr.Code)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectExit, shouldExit)

			if tc.expectedConfig != nil {
				if diff := cmp.Diff(tc.expectedConfig, cfg); diff != "" {
					t.Errorf("Config mismatch (-want +got):\n%s", diff)
				}
			}
			if tc.outputContains != "" {
				require.Contains(t, out.String(), tc.outputContains)
			}
		})
	}
}
