package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	ssecodeccmder "github.com/papercomputeco/ssecodec/cmd/ssecodec"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := ssecodeccmder.NewSSECodecCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
