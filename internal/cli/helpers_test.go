package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runoshun/opus/internal/app"
	"github.com/runoshun/opus/internal/domain"
	"github.com/runoshun/opus/internal/infra/snapshot"
	"github.com/runoshun/opus/internal/testutil"
)

// testSession backs every container a test factory builds with the same
// in-memory snapshot store, so state carries over between commands.
type testSession struct {
	backend  *testutil.MockSnapshotStore
	codec    *snapshot.Codec
	warnings []string
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()
	codec, err := snapshot.New(snapshot.Options{})
	require.NoError(t, err)
	return &testSession{
		backend: testutil.NewMockSnapshotStore(),
		codec:   codec,
	}
}

// factory builds containers with a short sync delay and ids counting from 1.
func (s *testSession) factory(ctx context.Context, opts app.Options) (*app.Container, error) {
	cfg := domain.NewDefaultConfig()
	cfg.Sync.Delay = time.Millisecond
	cfg.Persist.Debounce = time.Hour
	cfg.Warnings = s.warnings

	c := app.NewWithDeps(domain.RealClock{}, s.backend, s.codec, cfg, nil, nil)
	c.IDClock = testutil.NewFakeClock(time.Unix(0, 0))
	c.Paths = app.Paths{Session: domain.DefaultSession}
	if opts.Session != "" {
		c.Paths.Session = opts.Session
	}
	c.Start(ctx)
	return c, nil
}

// state decodes the last written snapshot.
func (s *testSession) state(t *testing.T) domain.RootState {
	t.Helper()
	data, err := s.backend.Get(domain.SnapshotKey)
	require.NoError(t, err)
	state, err := s.codec.Decode(data)
	require.NoError(t, err)
	return state
}

// execute runs the root command with args and returns stdout and stderr.
func execute(factory Factory, args ...string) (string, string, error) {
	root := NewRootCommand(factory, "test-version")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// mustExecute is execute for commands that are expected to succeed.
func mustExecute(t *testing.T, factory Factory, args ...string) string {
	t.Helper()
	out, _, err := execute(factory, args...)
	require.NoError(t, err, "opus %v", args)
	return out
}
