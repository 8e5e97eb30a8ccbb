// Command sessionctl drives a goSession store from the shell.
//
//	sessionctl stub &                          # identity service on :9191
//	export GOSESSION_STORAGE_BACKEND=file
//	sessionctl login -u admin -p admin-password
//	sessionctl can READ_ALL_PRODUCTS && echo allowed
//	sessionctl serve -addr :8080
//	sessionctl logout
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/goSession/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
