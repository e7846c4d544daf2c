package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Post(ctx context.Context) error
	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Flip(ctx context.Context, id string) error
	Claim(ctx context.Context, id string) error
	Export(ctx context.Context, path string) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands from reader and dispatches them to a until EOF,
// "exit" or "quit". Handlers prompt through the same reader, so a command's
// answers are the lines that follow it.
//
//	Not logged in:
//	  - help             show available commands
//	  - register         create an account
//	  - login            authenticate
//	  - exit | quit      leave the program
//
//	Logged in:
//	  - (l)ist           show the listings
//	  - refresh          re-fetch the listings
//	  - post             post food
//	  - flip <id>        turn a card over
//	  - claim <id>       claim a listing
//	  - export <file>    write the listings as HTML
//	  - whoami           reload and show the profile
//	  - logout           log out
//
// Errors returned by handlers are ignored here; handlers report to the user
// through notifications themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("hh %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, refresh, post, flip <id>, claim <id>, export <file>, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "post":
			_ = a.Post(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "flip", "claim", "export":
			if len(args) == 0 {
				if cmd == "export" {
					printlnFn("Usage: export <file>")
				} else {
					printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				}
				continue
			}
			switch cmd {
			case "flip":
				_ = a.Flip(ctx, args[0])
			case "claim":
				_ = a.Claim(ctx, args[0])
			case "export":
				_ = a.Export(ctx, args[0])
			}

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
