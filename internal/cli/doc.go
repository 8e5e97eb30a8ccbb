// Package cli implements the sessionctl command: one-shot session commands
// (login, register, logout, whoami, can, profile), a guarded HTTP server
// (serve) and an in-memory identity service (stub).
//
// Every command loads configuration with goSession.LoadConfig, so a file
// storage backend carries the session between invocations.
package cli
