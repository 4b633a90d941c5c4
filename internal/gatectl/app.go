package gatectl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/lockout"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/dmitrijs2005/gatekeeper/internal/server/store"
)

const usage = `usage: gatectl <command> [args]

commands:
  hash                   read a password and print its bcrypt hash
  status <identifier>    show failed attempts and lock state of an account
  unlock <identifier>    reset failed attempts and lift the lock
`

var (
	ErrUsage          = errors.New("bad usage")
	ErrUnknownCommand = errors.New("unknown command")
)

// StoreOpener connects to the account store. It is called only by commands
// that need one.
type StoreOpener func(ctx context.Context) (*store.Store, error)

type App struct {
	config    *config.Config
	logger    logging.Logger
	out       io.Writer
	openStore StoreOpener
	hashCost  int
	now       func() time.Time
}

func NewApp(c *config.Config, out io.Writer, l logging.Logger) *App {
	return &App{
		config: c,
		logger: l,
		out:    out,
		openStore: func(ctx context.Context) (*store.Store, error) {
			return store.Open(ctx, c)
		},
		now: time.Now,
	}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		fmt.Fprint(a.out, usage)
		return nil
	case "hash":
		return a.hash()
	case "status":
		if len(rest) != 1 {
			return fmt.Errorf("%w: status <identifier>", ErrUsage)
		}
		return a.withStore(ctx, func(ctx context.Context, repo accounts.Repository) error {
			return a.status(ctx, repo, rest[0])
		})
	case "unlock":
		if len(rest) != 1 {
			return fmt.Errorf("%w: unlock <identifier>", ErrUsage)
		}
		return a.withStore(ctx, func(ctx context.Context, repo accounts.Repository) error {
			return a.unlock(ctx, repo, rest[0])
		})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (a *App) withStore(ctx context.Context, fn func(ctx context.Context, repo accounts.Repository) error) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.InTx(ctx, fn)
}

func (a *App) hash() error {
	pw, err := GetPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	again, err := GetPassword(a.out, "Repeat password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if len(pw) == 0 {
		return fmt.Errorf("%w: empty password", ErrUsage)
	}
	if !bytes.Equal(pw, again) {
		return ErrPasswordMismatch
	}

	h, err := services.HashPassword(pw, a.hashCost)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(h))
	return nil
}

func (a *App) status(ctx context.Context, repo accounts.Repository, login string) error {
	acc, err := repo.Find(ctx, services.ClassifyIdentifier(login), login)
	if err != nil {
		return err
	}

	state := a.config.LockoutPolicy().State(acc, a.now())
	fmt.Fprintf(a.out, "account:         %s (%s)\n", acc.Username, acc.Email)
	fmt.Fprintf(a.out, "email verified:  %t\n", acc.EmailVerified)
	fmt.Fprintf(a.out, "failed attempts: %d\n", acc.FailedLoginAttempts)
	fmt.Fprintf(a.out, "state:           %s\n", state)
	if state == lockout.Locked {
		fmt.Fprintf(a.out, "locked until:    %s\n", acc.AccountLockedUntil.Format(time.RFC3339))
	}
	return nil
}

func (a *App) unlock(ctx context.Context, repo accounts.Repository, login string) error {
	acc, err := services.NewAdminService(repo, a.logger).Unlock(ctx, login)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "unlocked %s\n", acc.Username)
	return nil
}

// CommandArgs strips server config flags such as -b sqlite -d gatekeeper.db
// from args, leaving the command and its operands.
func CommandArgs(args []string) []string {
	return flagx.Positional(args, config.ValueFlags)
}
