// Package daemon implements the l2fwdd daemon lifecycle: build the
// forwarding module and control server, run until a shutdown signal,
// then close both in order.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/l2fwd/l2fwd/pkg/config"
	"github.com/l2fwd/l2fwd/pkg/control"
	"github.com/l2fwd/l2fwd/pkg/l2forward"
)

// Options configures the daemon.
type Options struct {
	Size       int
	Bucket     int
	ListenAddr string
}

// Daemon owns the module and control server for one run.
type Daemon struct {
	opts   Options
	module *l2forward.Module
	server *control.Server
}

// New constructs a Daemon from Options. The module is built here so
// construction errors (bad size/bucket) surface before Run.
func New(opts Options) (*Daemon, error) {
	module, err := l2forward.New(config.Config{Size: opts.Size, Bucket: opts.Bucket})
	if err != nil {
		return nil, fmt.Errorf("daemon: building module: %w", err)
	}

	server := control.NewServer(control.Config{Addr: opts.ListenAddr}, module)

	return &Daemon{opts: opts, module: module, server: server}, nil
}

// Run starts the control server and blocks until SIGINT/SIGTERM, then
// shuts everything down in order.
func (d *Daemon) Run(ctx context.Context) error {
	slog.Info("starting l2fwdd",
		"pid", os.Getpid(),
		"listen", d.opts.ListenAddr,
		"size", d.opts.Size,
		"bucket", d.opts.Bucket)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	runErr := d.server.Run(ctx)

	stats := d.module.Stats()
	slog.Info("final table stats", "count", stats.Count, "size", stats.Size, "bucket", stats.Bucket)

	if err := d.module.Close(); err != nil {
		slog.Warn("failed to close forwarding module", "err", err)
	}

	slog.Info("shutdown complete")
	return runErr
}
