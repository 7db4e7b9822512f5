package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfluker/aod-dashboard/cmd/weeklyops/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		stop()
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
