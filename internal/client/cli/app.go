package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/muesli/termenv"

	"github.com/dmitrijs2005/todokeeper/internal/client/api"
	"github.com/dmitrijs2005/todokeeper/internal/client/config"
	"github.com/dmitrijs2005/todokeeper/internal/client/session"
)

const sessionTimeout = 3 * time.Second

type App struct {
	config   *config.Config
	api      *api.Client
	session  *session.Store
	reader   *bufio.Reader
	out      io.Writer
	term     *termenv.Output
	password func(io.Writer) ([]byte, error)
	email    string
}

// NewApp opens the session store and builds an App on stdin/stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	store, err := session.Open(ctx, c.SessionFile)
	if err != nil {
		return nil, err
	}
	app := newApp(c, store, os.Stdin, os.Stdout)
	if stdinIsTerminal() {
		app.password = GetPassword
	}
	return app, nil
}

func newApp(c *config.Config, store *session.Store, in io.Reader, out io.Writer) *App {
	a := &App{
		config:  c,
		api:     api.New(c.ServerURL, c.RequestTimeout),
		session: store,
		reader:  bufio.NewReader(in),
		out:     out,
		term:    termenv.NewOutput(out),
	}
	a.password = linePassword(a.reader)
	a.api.OnRotate(a.persist)
	return a
}

// persist mirrors every refresh token rotation into the session store.
func (a *App) persist(refreshToken string) {
	ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
	defer cancel()

	var err error
	if refreshToken == "" {
		a.email = ""
		err = a.session.Clear(ctx)
	} else {
		err = a.session.Save(ctx, session.Session{Email: a.email, RefreshToken: refreshToken})
	}
	if err != nil {
		fmt.Fprintln(a.out, "warning: session not saved:", err)
	}
}

// Run resumes a saved session, if any, then serves the REPL until exit.
func (a *App) Run(ctx context.Context) {
	defer a.session.Close()

	fmt.Fprintln(a.out, "Welcome to todokeeper CLI (type 'help' for commands)")
	if err := a.api.Health(ctx); err != nil {
		fmt.Fprintln(a.out, "warning: server not healthy:", err)
	}
	a.resume(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) resume(ctx context.Context) {
	sess, err := a.session.Load(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "warning: session not loaded:", err)
		return
	}
	if sess.Empty() {
		return
	}
	a.email = sess.Email
	a.api.Resume(sess.RefreshToken)
	fmt.Fprintf(a.out, "Resumed session for %s\n", sess.Email)
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() || a.email == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.email)
}
