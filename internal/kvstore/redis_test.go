package kvstore

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenRejectsMalformedURL(t *testing.T) {
	t.Parallel()

	_, err := Open("not-a-redis-url", time.Second)
	require.Error(t, err)
}

func TestOpenPingIsBounded(t *testing.T) {
	t.Parallel()

	// A local listener that accepts connections but never speaks the
	// protocol, so the startup ping can only end via the connect timeout.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	start := time.Now()
	_, err = Open(fmt.Sprintf("redis://%s", ln.Addr()), 250*time.Millisecond)
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}
