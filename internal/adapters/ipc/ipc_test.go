package ipc_test

import (
	"context"
	"net"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/remake-build/remake/internal/adapters/ipc"
	"github.com/remake-build/remake/internal/core/ports"
	"github.com/remake-build/remake/internal/core/ports/mocks"
)

func newLogger(t *testing.T) ports.Logger {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return log
}

func TestRequestRoundTrip(t *testing.T) {
	log := newLogger(t)
	ln, err := ipc.Listen(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	client := ipc.NewClient(log)
	okc := make(chan bool, 1)
	errc := make(chan error, 1)
	go func() {
		ok, err := client.Request(context.Background(), ln.Addr(), 7, []string{"a", "b c"})
		okc <- ok
		errc <- err
	}()

	req := <-ln.Requests()
	assert.Equal(t, 7, req.JobID)
	assert.Equal(t, []string{"a", "b c"}, req.Targets)
	req.Reply(true)

	require.NoError(t, <-errc)
	assert.True(t, <-okc)
}

func TestRequest_NegativeJobID(t *testing.T) {
	log := newLogger(t)
	ln, err := ipc.Listen(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		req := <-ln.Requests()
		req.Reply(false)
	}()

	ok, err := ipc.NewClient(log).Request(context.Background(), ln.Addr(), -1, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequest_EmptyTargetList(t *testing.T) {
	log := newLogger(t)
	ln, err := ipc.Listen(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		req := <-ln.Requests()
		assert.Empty(t, req.Targets)
		req.Reply(true)
	}()

	ok, err := ipc.NewClient(log).Request(context.Background(), ln.Addr(), 3, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListener_IgnoresIllFormedMessage(t *testing.T) {
	log := newLogger(t)
	ln, err := ipc.Listen(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	network := "unix"
	if runtime.GOOS == "windows" {
		network = "tcp"
	}
	conn, err := net.Dial(network, dialAddr(ln.Addr()))
	require.NoError(t, err)
	_, err = conn.Write([]byte{1, 2})
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// The listener must survive and keep serving well-formed requests.
	go func() {
		req := <-ln.Requests()
		req.Reply(true)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ok, err := ipc.NewClient(log).Request(ctx, ln.Addr(), 1, []string{"x"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListener_CloseRemovesSocket(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("socket file only exists on unix-like systems")
	}
	ln, err := ipc.Listen(newLogger(t))
	require.NoError(t, err)
	addr := ln.Addr()

	_, err = os.Stat(addr)
	require.NoError(t, err)

	require.NoError(t, ln.Close())
	_, err = os.Stat(addr)
	assert.True(t, os.IsNotExist(err))
}

func TestRequest_NoServer(t *testing.T) {
	_, err := ipc.NewClient(newLogger(t)).Request(context.Background(), "/nonexistent/sock", 1, []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reach build server")
}

func dialAddr(addr string) string {
	if runtime.GOOS == "windows" {
		return net.JoinHostPort("127.0.0.1", addr)
	}
	return addr
}
