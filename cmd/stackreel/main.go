package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stackreel/internal/history"
	"stackreel/internal/services"
)

// Exit codes: 1 for tool or I/O failures, 2 when the project or config must change.
const (
	exitFailed   = 1
	exitRejected = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "stackreel:", err)
	}
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if services.FailureStatus(err) == history.StatusRejected {
		return exitRejected
	}
	return exitFailed
}
