package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sandstorm/dbkit/cmd"
)

func main() {
	// Running database operations are cancelled on user interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd.Execute(ctx)
}
