package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_ShutsDownWhenContextEnds(t *testing.T) {
	app, err := newApplication(context.Background(), memoryConfig(), discardLogger())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	server := &http.Server{Handler: app.setupRouter()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.serve(ctx, server, func() error { return server.Serve(ln) })
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_ReportsListenFailure(t *testing.T) {
	app, err := newApplication(context.Background(), memoryConfig(), discardLogger())
	require.NoError(t, err)

	server := &http.Server{Handler: app.setupRouter()}
	err = app.serve(context.Background(), server, func() error { return errors.New("address in use") })
	assert.ErrorContains(t, err, "address in use")
}
