package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	_ "github.com/joho/godotenv/autoload"
	"github.com/jrsteele09/uniassist/backendfake"
	"github.com/jrsteele09/uniassist/internal/config"
	"github.com/jrsteele09/uniassist/internal/logging"
	"github.com/rs/zerolog"
)

func main() {
	c := config.NewBackend()
	log := logging.New(c.GetLogLevel(), c.GetEnv(), os.Stderr)

	for {
		if err := run(c, log); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run(c config.BackendConfig, log zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	opts := []backendfake.Option{backendfake.WithLogger(log)}
	if clientID := c.GetGoogleClientID(); clientID != "" {
		verifier, err := backendfake.NewGoogleVerifier(context.Background(), clientID)
		if err != nil {
			return err
		}
		opts = append(opts, backendfake.WithIdentityVerifier(verifier))
	} else {
		log.Warn().Msg(`GOOGLE_CLIENT_ID not set, accepting "dev:<email>" logins only`)
	}

	server := &http.Server{Addr: c.GetPort(), Handler: backendfake.New(c, opts...)}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(server, log) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listenAndServe(server *http.Server, log zerolog.Logger) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
