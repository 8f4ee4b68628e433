// Package browser hands URLs to the desktop's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Opener opens a URL. The TUI takes one so tests can record calls.
type Opener func(url string) error

// Open opens the specified URL in the user's default browser.
func Open(rawURL string) error {
	name, args, err := command(runtime.GOOS, rawURL)
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

func command(goos, rawURL string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{rawURL}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}, nil
	default:
		return "", nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}

// ProjectURL returns the web UI page of project id.
func ProjectURL(webURL string, id int64) (string, error) {
	base, err := url.Parse(strings.TrimRight(webURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse web url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", fmt.Errorf("web url must be http(s): %q", webURL)
	}
	return base.JoinPath("projects", strconv.FormatInt(id, 10)).String(), nil
}
