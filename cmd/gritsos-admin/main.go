// Copyright (c) 2026 Gritsos. All rights reserved.

// Command gritsos-admin bootstraps principals directly against the database.
//
// It reads the same environment as the API server (DATABASE_URL, BCRYPT_COST,
// TOKEN_LENGTH) and applies pending migrations before running.
//
// Usage:
//
//	gritsos-admin create -username NAME [-password PASS] [-level N]
//	gritsos-admin rotate -username NAME
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
	"github.com/gritsos/gritsos-api/internal/platform/config"
	"github.com/gritsos/gritsos-api/internal/platform/constants"
	"github.com/gritsos/gritsos-api/internal/platform/database"
	"github.com/gritsos/gritsos-api/internal/platform/sec"
	"github.com/gritsos/gritsos-api/internal/users/auth"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one subcommand and returns the process exit code:
// 0 on success, 1 on operational failure, 2 on usage errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stdout)
		return 0
	}

	switch args[0] {
	case "create":
		return runCreate(ctx, args[1:], stdout, stderr)
	case "rotate":
		return runRotate(ctx, args[1:], stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  gritsos-admin create -username NAME [-password PASS] [-level N]")
	_, _ = fmt.Fprintln(w, "  gritsos-admin rotate -username NAME")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Subcommands:")
	_, _ = fmt.Fprintln(w, "  create    Register a principal and print its token")
	_, _ = fmt.Fprintln(w, "  rotate    Replace a principal's token and print the new one")
}

func runCreate(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gritsos-admin create", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("username", "", "Username of the new principal")
	password := fs.String("password", "", "Password (omit for a token-only principal)")
	level := fs.Int("level", 0, "Privilege level")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *username == "" {
		_, _ = fmt.Fprintln(stderr, "Error: -username is required")
		return 2
	}

	// Only an explicitly passed -password creates a password principal.
	var passwordValue *string
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "password" {
			passwordValue = password
		}
	})

	store, closeStore, err := openStore(ctx, stderr)
	if err != nil {
		return report(stderr, err)
	}
	defer closeStore()

	principal, err := store.Create(ctx, *username, passwordValue, *level)
	if err != nil {
		return report(stderr, err)
	}

	_, _ = fmt.Fprintf(stdout, "%s %s\n", principal.Username(), principal.Token())
	return 0
}

func runRotate(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gritsos-admin rotate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("username", "", "Username whose token is replaced")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *username == "" {
		_, _ = fmt.Fprintln(stderr, "Error: -username is required")
		return 2
	}

	store, closeStore, err := openStore(ctx, stderr)
	if err != nil {
		return report(stderr, err)
	}
	defer closeStore()

	principal, err := store.FindByCredentials(ctx, *username, nil)
	if err != nil {
		return report(stderr, err)
	}
	if !principal.Present() {
		return report(stderr, auth.ErrPrincipalNotFound)
	}

	rotated, err := store.Reissue(ctx, principal.ID())
	if err != nil {
		return report(stderr, err)
	}

	_, _ = fmt.Fprintf(stdout, "%s %s\n", rotated.Username(), rotated.Token())
	return 0
}

// openStore loads configuration, opens the database and builds the principal store.
func openStore(ctx context.Context, stderr io.Writer) (*auth.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})).
		With(slog.String("app", constants.AppName+"-admin"))

	handle, err := database.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}

	repository, err := auth.NewRepository(handle)
	if err != nil {
		handle.Close()
		return nil, nil, err
	}

	store := auth.NewStore(repository, auth.NewTokenIssuer(repository, cfg.TokenLength), sec.NewHasher(cfg.BcryptCost))
	return store, handle.Close, nil
}

// report prints err and returns exit code 1. Internal causes are printed too,
// since the operator owns the database.
func report(stderr io.Writer, err error) int {
	message := err.Error()
	if appError := apperr.As(err); appError != nil && appError.Cause != nil {
		message = fmt.Sprintf("%s: %v", appError.Message, appError.Cause)
	}
	_, _ = fmt.Fprintf(stderr, "Error: %s\n", message)
	return 1
}
