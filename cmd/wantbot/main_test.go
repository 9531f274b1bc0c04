package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wantbot/internal/gateway"
)

// stubFrontend returns immediately, as the bridge does when the
// connector closes stdin.
type stubFrontend struct {
	err error
}

func (f *stubFrontend) Run(ctx context.Context, _ gateway.Handler) error {
	return f.err
}

func TestRunGroupStopsWhenFrontendExits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcherStopped := make(chan struct{})
	watch := func(ctx context.Context) error {
		defer close(watcherStopped)
		<-ctx.Done()
		return ctx.Err()
	}

	done := make(chan error, 1)
	go func() {
		done <- runGroup(ctx, cancel, &stubFrontend{}, nil, watch)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runGroup did not return after the frontend exited")
	}

	select {
	case <-watcherStopped:
	default:
		t.Fatal("watcher still running after runGroup returned")
	}
}

func TestRunGroupSurfacesFrontendError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("frontend broke")
	err := runGroup(ctx, cancel, &stubFrontend{err: boom}, nil, nil)
	assert.ErrorIs(t, err, boom)
}
