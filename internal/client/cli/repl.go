package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/projectshelf/internal/client/web"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Forget(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Onboarding(ctx context.Context) error
	Profile(ctx context.Context, args []string) error
	Avatar(ctx context.Context, args []string) error
	Serve(ctx context.Context) error
	Ping(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: signup, login, forgot, reset, whoami, ping, serve, forget, exit"
	helpSignedIn  = "Available commands: dashboard, onboarding, profile [field value], avatar <file>, whoami, logout, ping, serve, forget, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// Command prompts read from the same reader. The loop ends on EOF or on
// "exit"/"quit". Command errors are printed and the loop continues.
//
//	signup | login | logout     account session
//	forgot | reset              password reset request and completion
//	whoami | ping               session and server status
//	dashboard | onboarding      profile overview and guided setup (signed in)
//	profile [field value...]    show or change one profile field (signed in)
//	avatar <file>               upload a new avatar image (signed in)
//	serve                       start the local web preview
//	forget                      sign out and wipe all local state
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("shelf %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "signup", "register":
			cmdErr = a.Signup(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "forget":
			cmdErr = a.Forget(ctx)

		case "forgot":
			cmdErr = a.Forgot(ctx)

		case "reset":
			cmdErr = a.Reset(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "dashboard":
			cmdErr = a.Dashboard(ctx)

		case "onboarding":
			cmdErr = a.Onboarding(ctx)

		case "profile":
			cmdErr = a.Profile(ctx, args)

		case "avatar":
			cmdErr = a.Avatar(ctx, args)

		case "serve":
			cmdErr = a.Serve(ctx)

		case "ping":
			cmdErr = a.Ping(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describe(cmdErr))
		}
	}
}

func describe(err error) string {
	if msg, ok := web.UserMessage(err); ok {
		return msg
	}
	return err.Error()
}
