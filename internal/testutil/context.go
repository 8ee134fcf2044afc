// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/specialistvlad/mtlsim/internal/ctxlog"
)

// Context returns a context carrying a debug-level text logger that writes
// into the returned buffer. Set MTLSIM_TEST_LOGS=true to also print the
// captured output when the test finishes.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if os.Getenv("MTLSIM_TEST_LOGS") == "true" {
		t.Cleanup(func() {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		})
	}
	return ctxlog.WithLogger(context.Background(), logger), buf
}
