package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/internal/cli"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
)

func main() {
	// AAGEN_* settings may come from a local .env file.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, errs.UserMessage(err))
		if code := errs.GetCode(err); code != "" {
			fmt.Fprintln(os.Stderr, "code:", code)
		}
		os.Exit(1)
	}
}
