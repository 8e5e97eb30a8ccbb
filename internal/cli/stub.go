package cli

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MrEthical07/goSession/internal/idpstub"
	"github.com/MrEthical07/goSession/permission"
)

type stubUser struct {
	username string
	name     string
	role     string
	password string
}

// userList collects repeated -user username:name:ROLE:password flags.
type userList []stubUser

func (u *userList) String() string {
	names := make([]string, 0, len(*u))
	for _, user := range *u {
		names = append(names, user.username)
	}
	return strings.Join(names, ",")
}

func (u *userList) Set(v string) error {
	parts := strings.SplitN(v, ":", 4)
	if len(parts) != 4 {
		return fmt.Errorf("want username:name:ROLE:password, got %q", v)
	}
	*u = append(*u, stubUser{username: parts[0], name: parts[1], role: parts[2], password: parts[3]})
	return nil
}

var defaultStubUsers = userList{
	{username: "admin", name: "Administrator", role: permission.RoleAdministrator, password: "admin-password"},
	{username: "assistant", name: "Assistant", role: permission.RoleAssistantAdministrator, password: "assistant-password"},
	{username: "customer", name: "Customer", role: permission.RoleCustomer, password: "customer-password"},
}

func runStub(ctx context.Context, e env, args []string) error {
	fs := flag.NewFlagSet("stub", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	addr := fs.String("addr", ":9191", "listen address")
	key := fs.String("key", "", "HS256 signing key (random when empty)")
	var users userList
	fs.Var(&users, "user", "seed user as username:name:ROLE:password (repeatable)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if len(users) == 0 {
		users = defaultStubUsers
	}

	srv, err := idpstub.New(idpstub.Config{SigningKey: []byte(*key), Logger: e.logger})
	if err != nil {
		return err
	}
	for _, u := range users {
		if _, err := srv.AddUser(u.username, u.name, u.role, u.password); err != nil {
			return fmt.Errorf("seed %s: %w", u.username, err)
		}
		e.logger.Info("seeded user", slog.String("username", u.username), slog.String("role", u.role))
	}

	e.logger.Info("identity stub api", slog.String("base_path", idpstub.BasePath))
	return serve(ctx, e.logger, *addr, srv, nil)
}
