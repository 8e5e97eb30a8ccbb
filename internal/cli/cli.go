package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	goSession "github.com/MrEthical07/goSession"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var errUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(context.Context, env, []string) error
}

var commands = []command{
	{name: "login", summary: "authenticate and persist the session (-u, -p)", run: runLogin},
	{name: "register", summary: "create a customer account and sign in (-name, -u, -p)", run: runRegister},
	{name: "logout", summary: "revoke and clear the session", run: runLogout},
	{name: "whoami", summary: "print the current session", run: runWhoami},
	{name: "can", summary: "exit 0 if the session holds OPERATION (or -role ROLE)", run: runCan},
	{name: "profile", summary: "replace the token identity with the server profile", run: runProfile},
	{name: "serve", summary: "serve session and guarded routes over HTTP (-addr)", run: runServe},
	{name: "stub", summary: "run an in-memory identity service (-addr, -user)", run: runStub},
}

// Run executes sessionctl with args (without the program name) and returns
// the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sessionctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file (GOSESSION_* env vars override)")
	fs.Usage = func() { usage(fs, stderr) }
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() == 0 {
		usage(fs, stderr)
		return ExitUsage
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == fs.Arg(0) {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		usage(fs, stderr)
		return ExitUsage
	}

	cfg, err := goSession.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return ExitFailure
	}

	e := env{
		cfg:    cfg,
		logger: NewLogger(cfg.Logging, stderr),
		stdout: stdout,
		stderr: stderr,
	}

	err = cmd.run(ctx, e, fs.Args()[1:])
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errDenied):
		return ExitFailure
	case errors.Is(err, errUsage):
		if err != errUsage {
			fmt.Fprintln(stderr, err)
		}
		return ExitUsage
	default:
		fmt.Fprintf(stderr, "%s: %v\n", cmd.name, err)
		return ExitFailure
	}
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "usage: sessionctl [-config file] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fs.PrintDefaults()
}
