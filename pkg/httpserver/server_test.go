package httpserver_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiosix/photostudio/pkg/httpserver"
)

// freeAddr reserves a loopback port and releases it so the server under test
// can bind to it.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// waitForServer polls addr until it answers or the deadline passes.
func waitForServer(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("http://%s/", addr))
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server at %s never came up", addr)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestServer_RunAndCancel(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)
	server := httpserver.New(addr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx, okHandler()) }()

	waitForServer(t, addr)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancellation")
	}
}

func TestServer_ManualShutdown(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)
	server := httpserver.New(addr, httpserver.WithShutdownTimeout(time.Second))

	done := make(chan error, 1)
	go func() { done <- server.Run(context.Background(), okHandler()) }()

	waitForServer(t, addr)
	require.NoError(t, server.Shutdown())
	// Repeated shutdown is a no-op.
	require.NoError(t, server.Shutdown())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after Shutdown")
	}
}

func TestServer_StartError(t *testing.T) {
	t.Parallel()

	// Occupy the port so ListenAndServe fails immediately.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	server := httpserver.New(l.Addr().String())
	err = server.Run(context.Background(), okHandler())
	require.ErrorIs(t, err, httpserver.ErrStart)
}

func TestServer_AlreadyRunning(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)
	server := httpserver.New(addr)

	done := make(chan error, 1)
	go func() { done <- server.Run(context.Background(), okHandler()) }()
	waitForServer(t, addr)

	err := server.Run(context.Background(), okHandler())
	require.ErrorIs(t, err, httpserver.ErrStart)

	require.NoError(t, server.Shutdown())
	require.NoError(t, <-done)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)
	server := httpserver.NewFromConfig(httpserver.Config{
		Addr:            addr,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx, okHandler()) }()

	waitForServer(t, addr)
	resp, err := http.Get(fmt.Sprintf("http://%s/", addr))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
}
