package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenUntilDoneReturnsBindError(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	srv := fiber.New(fiber.Config{DisableStartupMessage: true})
	done := make(chan error, 1)
	go func() {
		done <- listenUntilDone(context.Background(), srv, taken.Addr().String(), time.Second)
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), taken.Addr().String())
	case <-time.After(5 * time.Second):
		t.Fatal("server kept waiting after the listener failed")
	}
}
