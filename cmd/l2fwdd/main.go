// Command l2fwdd runs the L2 forwarding table as a standalone daemon,
// exposing its command surface and Prometheus metrics over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/l2fwd/l2fwd/pkg/config"
	"github.com/l2fwd/l2fwd/pkg/daemon"
)

func main() {
	var (
		listenAddr = flag.String("listen", "127.0.0.1:8080", "address for the control/metrics HTTP server")
		size       = flag.Int("size", config.DefaultSize, "number of bucket rows, must be a power of two")
		bucket     = flag.Int("bucket", config.DefaultBucket, "slots per bucket row, must be a power of two, max 4")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	d, err := daemon.New(daemon.Options{
		Size:       *size,
		Bucket:     *bucket,
		ListenAddr: *listenAddr,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "l2fwdd:", err)
		os.Exit(1)
	}

	if err := d.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "l2fwdd:", err)
		os.Exit(1)
	}
}
