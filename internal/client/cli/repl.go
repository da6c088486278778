package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	SetDone(ctx context.Context, args []string, done bool) error
	Delete(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: add, (l)ist [page] [sort], search <keyword>, status <done|open> [page], " +
		"show <id>, edit <id>, done <id>, undone <id>, delete <id>, logout, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit". Task
// commands require a login. Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("todo %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				printlnFn("Error:", err)
			}
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
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "register", "login":
		case "add", "edit", "l", "list", "search", "status", "show", "done", "undone", "delete", "logout":
			if !a.isLoggedIn() {
				printlnFn("Please log in first")
				continue
			}
		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "add":
		return a.Add(ctx)
	case "edit":
		return a.Edit(ctx, args)
	case "l", "list":
		return a.List(ctx, args)
	case "search":
		return a.Search(ctx, args)
	case "status":
		return a.Status(ctx, args)
	case "show":
		return a.Show(ctx, args)
	case "done":
		return a.SetDone(ctx, args, true)
	case "undone":
		return a.SetDone(ctx, args, false)
	case "delete":
		return a.Delete(ctx, args)
	}
	return nil
}
