package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/dgnsrekt/sawari_expert/cmd/sawari/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	commands.ExecuteContext(ctx)
}
