package main

import (
	"context"
	"errors"
	"os"
	"slices"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer mimics fiber: Start returns once the listener is shut down,
// while Shutdown still has resources left to close.
type fakeServer struct {
	mu       sync.Mutex
	steps    []string
	listener chan struct{}
	startErr error
}

func newFakeServer() *fakeServer {
	return &fakeServer{listener: make(chan struct{})}
}

func (f *fakeServer) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, step)
}

func (f *fakeServer) Steps() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.steps...)
}

func (f *fakeServer) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	<-f.listener
	f.record("listener closed")
	return nil
}

func (f *fakeServer) Shutdown(context.Context) error {
	close(f.listener)
	time.Sleep(50 * time.Millisecond)
	f.record("resources closed")
	return nil
}

func TestServe_WaitsForShutdownAndTracingFlush(t *testing.T) {
	srv := newFakeServer()
	stop := make(chan os.Signal, 1)
	stop <- syscall.SIGTERM

	err := serve(srv, stop, func(context.Context) error {
		srv.record("tracing flushed")
		return nil
	})
	require.NoError(t, err)

	steps := srv.Steps()
	assert.ElementsMatch(t, []string{"listener closed", "resources closed", "tracing flushed"}, steps)
	assert.Less(t, slices.Index(steps, "resources closed"), slices.Index(steps, "tracing flushed"))
}

func TestServe_StartError(t *testing.T) {
	srv := newFakeServer()
	srv.startErr = errors.New("address in use")

	err := serve(srv, make(chan os.Signal), func(context.Context) error { return nil })
	assert.EqualError(t, err, "address in use")
}
