// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/vidgate/internal/config"
	"github.com/ManuGH/vidgate/internal/health"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		ListenAddr:      "127.0.0.1:0",
		ReadTimeout:     5 * time.Second,
		IdleTimeout:     5 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 2 * time.Second,
	}
}

func testDeps() Deps {
	return Deps{
		Logger: zerolog.New(io.Discard),
		APIHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "api")
		}),
	}
}

func waitForAPI(t *testing.T, m *manager) net.Addr {
	t.Helper()
	var addr net.Addr
	require.Eventually(t, func() bool {
		addr, _ = m.addrs()
		return addr != nil
	}, 2*time.Second, 10*time.Millisecond)
	return addr
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNewManager_ValidatesDeps(t *testing.T) {
	_, err := NewManager(testServerConfig(), Deps{Logger: zerolog.Nop(), APIHandler: http.NotFoundHandler()})
	require.ErrorIs(t, err, ErrMissingLogger)

	_, err = NewManager(testServerConfig(), Deps{Logger: zerolog.New(io.Discard)})
	require.ErrorIs(t, err, ErrMissingAPIHandler)
}

func TestManager_ShutdownBeforeStart(t *testing.T) {
	m, err := NewManager(testServerConfig(), testDeps())
	require.NoError(t, err)
	assert.ErrorIs(t, m.Shutdown(context.Background()), ErrManagerNotStarted)
}

func TestManager_ServesUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hm := health.NewManager("test")
	deps := testDeps()
	deps.Health = hm
	deps.MetricsAddr = "127.0.0.1:0"
	deps.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "metrics")
	})

	mgr, err := NewManager(testServerConfig(), deps)
	require.NoError(t, err)
	m := mgr.(*manager)

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		m.RegisterShutdownHook(name, func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Start(ctx) }()

	apiAddr := waitForAPI(t, m)
	_, metricsAddr := m.addrs()
	require.NotNil(t, metricsAddr)

	code, body := get(t, "http://"+apiAddr.String()+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "api", body)

	code, body = get(t, "http://"+metricsAddr.String()+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "metrics", body)

	assert.True(t, *hm.Ready(context.Background()).Ready)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Start() didn't return after cancel")
	}

	assert.False(t, *hm.Ready(context.Background()).Ready, "shutdown drains readiness")
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestManager_StartTwice(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mgr, err := NewManager(testServerConfig(), testDeps())
	require.NoError(t, err)
	m := mgr.(*manager)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Start(ctx) }()
	waitForAPI(t, m)

	assert.ErrorIs(t, m.Start(ctx), ErrManagerStarted)

	cancel()
	require.NoError(t, <-errCh)
}

func TestManager_ExternalShutdownReturnsStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mgr, err := NewManager(testServerConfig(), testDeps())
	require.NoError(t, err)
	m := mgr.(*manager)

	errCh := make(chan error, 1)
	go func() { errCh <- m.Start(context.Background()) }()
	waitForAPI(t, m)

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()), "second shutdown is a no-op")

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Start() didn't return after Shutdown()")
	}
}

func TestManager_BindFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = busy.Close() }()

	cfg := testServerConfig()
	cfg.ListenAddr = busy.Addr().String()
	m, err := NewManager(cfg, testDeps())
	require.NoError(t, err)

	err = m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start API server")
}

func TestManager_HookErrorsAreJoined(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mgr, err := NewManager(testServerConfig(), testDeps())
	require.NoError(t, err)
	m := mgr.(*manager)

	boom := errors.New("flush failed")
	m.RegisterShutdownHook("telemetry", func(context.Context) error { return boom })

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Start(ctx) }()
	waitForAPI(t, m)

	cancel()
	err = <-errCh
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "hook telemetry")
}
