package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/jrsteele09/uniassist/internal/cli"
	"github.com/jrsteele09/uniassist/internal/config"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.New(config.New()).Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var failed *apperrors.RequestFailedError
		switch {
		case apperrors.IsAuthError(err):
			fmt.Fprintln(os.Stderr, "Your session has ended, sign in again with: uniassist login")
		case apperrors.As(err, &failed) && failed.Status >= 500:
			fmt.Fprintln(os.Stderr, "The assistant backend is unavailable, try again later")
		}
		stop()
		os.Exit(1)
	}
}
