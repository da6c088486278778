package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	fail     error
}

func (f *fakeExec) record(name string, args ...string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return f.fail
}

func (f *fakeExec) isLoggedIn() bool                   { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error { return f.record("register") }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Add(ctx context.Context) error { return f.record("add") }
func (f *fakeExec) Edit(ctx context.Context, args []string) error {
	return f.record("edit", args...)
}
func (f *fakeExec) List(ctx context.Context, args []string) error {
	return f.record("list", args...)
}
func (f *fakeExec) Search(ctx context.Context, args []string) error {
	return f.record("search", args...)
}
func (f *fakeExec) Status(ctx context.Context, args []string) error {
	return f.record("status", args...)
}
func (f *fakeExec) Show(ctx context.Context, args []string) error {
	return f.record("show", args...)
}
func (f *fakeExec) SetDone(ctx context.Context, args []string, done bool) error {
	return f.record(fmt.Sprintf("setdone=%t", done), args...)
}
func (f *fakeExec) Delete(ctx context.Context, args []string) error {
	return f.record("delete", args...)
}

func captureOutput(t *testing.T) *strings.Builder {
	t.Helper()
	var out strings.Builder
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(&out, a...) }
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"add",
		"l 2",
		"list 1 title,desc",
		"search buy milk",
		"status done",
		"show 3",
		"edit 3",
		"done 3",
		"undone 3",
		"delete 3",
		"",
		"foobar",
		"logout",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"login", "add", "list 2", "list 1 title,desc", "search buy milk", "status done",
		"show 3", "edit 3", "setdone=true 3", "setdone=false 3", "delete 3", "logout",
	}, exec.calls)
	assert.Contains(t, out.String(), helpLoggedOut)
	assert.Contains(t, out.String(), helpLoggedIn)
	assert.Contains(t, out.String(), "Unknown command: foobar")
	assert.Contains(t, out.String(), "Bye!")
	assert.Contains(t, out.String(), "todo status> ")
}

func TestRunREPL_TaskCommandsNeedLogin(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("list\nadd\nlogout\n")))

	assert.Empty(t, exec.calls)
	assert.Equal(t, 3, strings.Count(out.String(), "Please log in first"))
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{loggedIn: true, fail: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("list\nshow 1\nquit\n")))

	assert.Equal(t, []string{"list", "show 1"}, exec.calls)
	assert.Equal(t, 2, strings.Count(out.String(), "Error: boom"))
}
