package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/taskflow/internal/config"
	"github.com/naveenspark/taskflow/internal/logging"
	"github.com/naveenspark/taskflow/internal/session"
	"github.com/naveenspark/taskflow/internal/tokenstore"
	"github.com/naveenspark/taskflow/internal/tui"
	"github.com/naveenspark/taskflow/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	cfg, rest, err := config.Load()
	if err != nil {
		return err
	}
	return dispatch(cfg, rest, in, out)
}

func dispatch(cfg *config.Config, args []string, in io.Reader, out io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(out, "taskflow "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(out)
		return nil
	case "", "login", "register", "logout", "status":
	default:
		return fmt.Errorf("unknown command %q, run 'taskflow help'", cmd)
	}

	c, err := newCLI(cfg, in, out)
	if err != nil {
		return err
	}
	defer c.Close() //nolint:errcheck

	ctx := context.Background()
	switch cmd {
	case "login":
		return c.runLogin(ctx)
	case "register":
		return c.runRegister(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	}
	return c.startTUI()
}

// programRef lets the client's unauthorized handler reach the running
// program. Sends before the program starts or after it ends are dropped.
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) set(p *tea.Program) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

func (r *programRef) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// cli holds everything a subcommand needs.
type cli struct {
	cfg     *config.Config
	log     logging.Logger
	tokens  tokenstore.Store
	client  *client.Client
	sess    *session.Manager
	program programRef

	in      *bufio.Reader
	out     io.Writer
	stdinFd int

	// startTUI runs the interactive client; tests replace it.
	startTUI func() error
	closers  []io.Closer
}

func newCLI(cfg *config.Config, in io.Reader, out io.Writer) (*cli, error) {
	log, logCloser, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	tokens, storeCloser, err := tokenstore.Open(cfg.TokenStore, cfg.DataDir)
	if err != nil {
		logCloser.Close() //nolint:errcheck
		return nil, fmt.Errorf("open token store: %w", err)
	}

	c := &cli{
		cfg:     cfg,
		log:     log,
		tokens:  tokens,
		in:      bufio.NewReader(in),
		out:     out,
		stdinFd: int(os.Stdin.Fd()),
		closers: []io.Closer{logCloser, storeCloser},
	}
	c.client = client.New(cfg.APIURL, tokens,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
		client.WithUnauthorizedHandler(func() { c.program.send(tui.UnauthorizedMsg{}) }),
	)
	c.sess = session.NewManager(tokens, c.client, log)
	c.startTUI = c.runTUI

	log.Info(context.Background(), "starting",
		"version", version, "api", cfg.APIURL, "token_store", cfg.TokenStore)
	return c, nil
}

// Close releases the token store and the log file, newest first.
func (c *cli) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *cli) runTUI() error {
	app := tui.NewApp(tui.Options{
		Client:  c.client,
		Session: c.sess,
		WebURL:  c.cfg.WebURL,
		Log:     c.log,
		Version: version,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	c.program.set(p)
	defer c.program.set(nil)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
