package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/espat/esp"
)

func TestGatewayDo(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown operation", func(t *testing.T) {
		_, err := newTestGateway(t, esp.NewTestDevice()).Do(ctx, Request{Op: "reboot"})
		assert.ErrorIs(t, err, ErrUnknownOp)
	})

	t.Run("missing arguments are not sent", func(t *testing.T) {
		dev := esp.NewTestDevice()
		g := newTestGateway(t, dev)
		for _, op := range []string{OpJoin, OpPing, OpHTTPGet, OpHTTPPost, OpResolve, OpAT} {
			_, err := g.Do(ctx, Request{Op: op})
			assert.ErrorIs(t, err, esp.ErrInvalidArgument, op)
		}
		assert.Empty(t, dev.Written())
	})

	t.Run("empty scan encodes as a list", func(t *testing.T) {
		dev := esp.NewTestDevice().Reply("AT+CWLAP", "OK\r\n")
		result, err := newTestGateway(t, dev).Do(ctx, Request{Op: OpScan})
		require.NoError(t, err)
		assert.Equal(t, []esp.Network{}, result)
	})

	t.Run("ping reachability follows the sentinel", func(t *testing.T) {
		dev := esp.NewTestDevice().
			Reply(`AT+PING="near"`, "+PING:254\r\n\r\nOK\r\n").
			Reply(`AT+PING="far"`, "+PING:255\r\n\r\nOK\r\n").
			Reply(`AT+PING="gone"`, "+PING:TIMEOUT\r\n\r\nOK\r\n")
		g := newTestGateway(t, dev)

		for host, want := range map[string]PingResult{
			"near": {Host: "near", Millis: 254, Reachable: true},
			"far":  {Host: "far", Millis: esp.Sentinel, Reachable: false},
			"gone": {Host: "gone", Millis: esp.Sentinel, Reachable: false},
		} {
			result, err := g.Do(ctx, Request{Op: OpPing, Host: host})
			require.NoError(t, err, host)
			assert.Equal(t, want, result, host)
		}
	})

	t.Run("serve carries the request id", func(t *testing.T) {
		dev := esp.NewTestDevice().Reply("AT+GMR", "v2\r\nOK\r\n")
		resp := newTestGateway(t, dev).Serve(ctx, Request{ID: "1", Op: OpVersion})
		assert.Equal(t, Response{ID: "1", Result: VersionResult{Version: "v2"}}, resp)
	})

	t.Run("closed gateway", func(t *testing.T) {
		g := NewGateway(esp.Attach(esp.NewTestDevice(), esp.Config{}))
		require.NoError(t, g.Close())
		_, err := g.Do(ctx, Request{Op: OpVersion})
		assert.True(t, errors.Is(err, esp.ErrAlreadyClosed))
	})
}

func TestGatewaySerializesCallers(t *testing.T) {
	dev := esp.NewTestDevice().Reply(`AT+PING="h"`, "+PING:5\r\n\r\nOK\r\n")
	g := newTestGateway(t, dev)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := g.Do(context.Background(), Request{Op: OpPing, Host: "h"})
			if err == nil && result.(PingResult).Millis != 5 {
				err = errors.New("interleaved response")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, dev.Commands(), 16)
}
