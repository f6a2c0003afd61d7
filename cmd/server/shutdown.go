package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

type stopper struct {
	name string
	fn   func(context.Context) error
}

// drain waits out d so the load balancer notices the failing readiness probe.
// A second interrupt cuts the wait short.
func drain(L log.Logger, d time.Duration) {
	ctx := context.Background()
	L.Info(ctx, "draining", "drain_seconds", d.Seconds())

	again := make(chan os.Signal, 1)
	signal.Notify(again, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(again)

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		L.Info(ctx, "drain period complete")
	case <-again:
		L.Warn(ctx, "second signal received, skipping drain")
	}
}

// stopAll runs each stopper in order. Every stopper gets an equal slice of
// budget and a slow one cannot starve the rest.
func stopAll(L log.Logger, budget time.Duration, stoppers []stopper) {
	if len(stoppers) == 0 {
		return
	}
	per := budget / time.Duration(len(stoppers))
	parent, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	for _, s := range stoppers {
		ctx, done := context.WithTimeout(parent, per)
		if err := s.fn(ctx); err != nil {
			L.Error(context.Background(), err, s.name+" shutdown")
		}
		done()
	}
}

func notifySystemd() error {
	// set by systemd for Type=notify units
	addr := os.Getenv("NOTIFY_SOCKET")
	if addr == "" {
		return fmt.Errorf("NOTIFY_SOCKET not set, skipping systemd notify")
	}
	conn, err := net.Dial("unixgram", addr) //nolint:gosec,noctx // addr comes from systemd, unixgram dial has no context variant
	if err != nil {
		return fmt.Errorf("systemd notify failed: dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if _, err := conn.Write([]byte("READY=1")); err != nil {
		return fmt.Errorf("systemd notify failed: write failed: %w", err)
	}
	return nil
}
