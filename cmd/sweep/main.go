// Command hawc-backup-sweep applies the backup retention policy once and exits.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCmd(os.Stdout, time.Now)
	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.Error("Sweep failed", "error", err)
		cancel()
		os.Exit(1)
	}
}
