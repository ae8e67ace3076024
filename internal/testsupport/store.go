package testsupport

import (
	"log/slog"
	"testing"

	"sonarrbot/internal/acl"
	"sonarrbot/internal/config"
	"sonarrbot/internal/logging"
)

// MustOpenGate opens an acl.Gate for tests and registers cleanup.
func MustOpenGate(t testing.TB, cfg *config.Config) *acl.Gate {
	t.Helper()

	gate, err := acl.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("acl.Open: %v", err)
	}
	t.Cleanup(func() {
		gate.Close()
	})
	return gate
}

// NewLogger returns a logger that discards everything.
func NewLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return logging.NewNop()
}
