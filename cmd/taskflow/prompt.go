package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// promptLine prints label and reads one trimmed line. A final line without
// a newline is accepted.
func promptLine(r *bufio.Reader, w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, promptStyle.Render(label+": ")); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password from fd without echo.
func promptPassword(w io.Writer, fd int) (string, error) {
	if _, err := fmt.Fprint(w, promptStyle.Render("Password: ")); err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w) //nolint:errcheck
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// promptRequired is promptLine that rejects an empty answer.
func promptRequired(r *bufio.Reader, w io.Writer, label string) (string, error) {
	v, err := promptLine(r, w, label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return v, nil
}
