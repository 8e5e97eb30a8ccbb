package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	goSession "github.com/MrEthical07/goSession"
)

type env struct {
	cfg    goSession.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// session opens the store and runs bootstrap. A failed bootstrap leaves the
// store anonymous and is only logged.
func (e env) session(ctx context.Context) (*goSession.Store, func(), error) {
	store, cleanup, err := openStore(e.cfg, e.logger, e.stderr)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Bootstrap(ctx); err != nil {
		e.logger.Warn("bootstrap ended anonymous", slog.Any("error", err))
	}
	return store, cleanup, nil
}

func (e env) printJSON(v any) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runLogin(ctx context.Context, e env, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("%w: login requires -u and -p", errUsage)
	}

	store, cleanup, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.Login(ctx, goSession.Credentials{Username: *username, Password: *password}); err != nil {
		return err
	}
	return e.printJSON(viewOf(store.Snapshot()))
}

func runRegister(ctx context.Context, e env, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	name := fs.String("name", "", "display name")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	repeated := fs.String("repeat", "", "password confirmation (defaults to -p)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *repeated == "" {
		repeated = password
	}

	profile := goSession.Profile{
		Name:             *name,
		Username:         *username,
		Password:         *password,
		RepeatedPassword: *repeated,
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	store, cleanup, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.Register(ctx, profile); err != nil {
		return err
	}
	return e.printJSON(viewOf(store.Snapshot()))
}

func runLogout(ctx context.Context, e env, _ []string) error {
	store, cleanup, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return store.Logout(ctx)
}

func runWhoami(ctx context.Context, e env, _ []string) error {
	store, cleanup, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return e.printJSON(viewOf(store.Snapshot()))
}

func runProfile(ctx context.Context, e env, _ []string) error {
	store, cleanup, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.RefreshProfile(ctx); err != nil {
		return err
	}
	return e.printJSON(store.CurrentUser())
}

// errDenied makes "can" exit non-zero without printing an error.
var errDenied = errors.New("denied")

func runCan(ctx context.Context, e env, args []string) error {
	fs := flag.NewFlagSet("can", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	role := fs.String("role", "", "require this role instead of an operation")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if (*role == "") == (fs.NArg() == 0) {
		return fmt.Errorf("%w: can takes one OPERATION or -role ROLE", errUsage)
	}

	store, cleanup, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var allowed bool
	if *role != "" {
		allowed = store.IsInRole(*role)
	} else {
		allowed = store.HasPermission(fs.Arg(0))
	}

	if allowed {
		fmt.Fprintln(e.stdout, "yes")
		return nil
	}
	fmt.Fprintln(e.stdout, "no")
	return errDenied
}
