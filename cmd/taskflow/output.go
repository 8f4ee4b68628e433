package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/taskflow/internal/tokenstore"
	"github.com/naveenspark/taskflow/pkg/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#34d474")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Width(10)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#505868"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")).Bold(true)
)

func printHelp(w io.Writer) {
	lines := []string{
		titleStyle.Render("taskflow") + " " + dimStyle.Render(version) + " · projects and tasks in your terminal",
		"",
		"Usage:",
		"  taskflow [flags]            open the interactive client",
		"  taskflow login [flags]      sign in with email and password",
		"  taskflow register [flags]   create an account",
		"  taskflow logout             forget the stored token",
		"  taskflow status             show who the stored token belongs to",
		"  taskflow version            print the version",
		"",
		"Flags:",
		"  -c, -config <file>   JSON config (default ~/.taskflow/config.json)",
		"  -api <url>           API base URL (TASKFLOW_API_URL)",
		"  -web <url>           web UI URL for 'open in browser' (TASKFLOW_WEB_URL)",
		"  -store file|sqlite   token store backend (TASKFLOW_TOKEN_STORE)",
		"  -timeout <dur>       request timeout, e.g. 30s",
		"  -log <file>          log file (TASKFLOW_LOG_FILE)",
		"  -log-level <level>   debug, info, warn or error (TASKFLOW_LOG_LEVEL)",
		"",
		dimStyle.Render("Set " + tokenstore.EnvVar + " to use a token without storing it."),
	}
	fmt.Fprintln(w, strings.Join(lines, "\n")) //nolint:errcheck
}

func printSignedIn(w io.Writer, u *domain.User) {
	name := "unknown user"
	if u != nil {
		name = u.FullName() + " <" + u.Email + ">"
	}
	fmt.Fprintf(w, "Signed in as %s\n\n", titleStyle.Render(name)) //nolint:errcheck
}

func printLoggedOut(w io.Writer) {
	fmt.Fprintln(w, "Not logged in.")                                            //nolint:errcheck
	fmt.Fprintln(w, dimStyle.Render("Run 'taskflow login' or just 'taskflow'.")) //nolint:errcheck
}

// status is what 'taskflow status' reports.
type status struct {
	API      string
	Source   string // "env" or "store"
	Store    string
	Claims   *tokenstore.TokenClaims
	User     *domain.User
	Rejected bool
	Err      string
}

func printStatus(w io.Writer, st status, now time.Time) {
	row := func(label, value string) {
		fmt.Fprintln(w, labelStyle.Render(label)+" "+value) //nolint:errcheck
	}

	row("API", st.API)
	if st.Source == "env" {
		row("Token", "from "+tokenstore.EnvVar)
	} else {
		row("Token", "from "+st.Store+" store")
	}
	if c := st.Claims; c != nil {
		if c.Subject != "" {
			row("Subject", c.Subject)
		}
		switch {
		case c.ExpiresAt.IsZero():
			row("Expires", "never")
		case c.Expired(now):
			row("Expires", warnStyle.Render("expired "+c.ExpiresAt.Local().Format(time.RFC1123)))
		default:
			row("Expires", c.ExpiresAt.Local().Format(time.RFC1123)+dimStyle.Render(" (in "+c.ExpiresAt.Sub(now).Round(time.Minute).String()+")"))
		}
	}

	switch {
	case st.User != nil:
		row("User", titleStyle.Render(st.User.FullName())+" <"+st.User.Email+">")
	case st.Rejected:
		row("User", warnStyle.Render("token rejected by the server; it has been removed"))
	case st.Err != "":
		row("User", warnStyle.Render("could not reach the server: "+st.Err))
	}
}
