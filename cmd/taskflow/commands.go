package main

import (
	"context"
	"fmt"
	"time"

	"github.com/naveenspark/taskflow/internal/tokenstore"
	"github.com/naveenspark/taskflow/pkg/client"
	"github.com/naveenspark/taskflow/pkg/domain"
)

// describe turns an API error into the text shown to the user.
func describe(err error) string {
	return client.MessageOr(err, err.Error())
}

// runLogin asks for credentials on the terminal, persists the token and
// then opens the TUI already signed in.
func (c *cli) runLogin(ctx context.Context) error {
	email, err := promptRequired(c.in, c.out, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(c.out, c.stdinFd)
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	resp, err := c.client.Login(ctx, domain.LoginRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %s", describe(err))
	}
	return c.signIn(ctx, resp.Token)
}

func (c *cli) runRegister(ctx context.Context) error {
	var req domain.RegisterRequest
	var err error
	if req.FirstName, err = promptRequired(c.in, c.out, "First name"); err != nil {
		return err
	}
	if req.LastName, err = promptRequired(c.in, c.out, "Last name"); err != nil {
		return err
	}
	if req.Email, err = promptRequired(c.in, c.out, "Email"); err != nil {
		return err
	}
	if req.Password, err = promptPassword(c.out, c.stdinFd); err != nil {
		return err
	}
	if req.Password == "" {
		return fmt.Errorf("password is required")
	}

	resp, err := c.client.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("registration failed: %s", describe(err))
	}
	return c.signIn(ctx, resp.Token)
}

func (c *cli) signIn(ctx context.Context, token string) error {
	s, err := c.sess.Login(ctx, token)
	if err != nil {
		return fmt.Errorf("could not load your account: %s", describe(err))
	}
	printSignedIn(c.out, s.User)
	return c.startTUI()
}

func (c *cli) runLogout(ctx context.Context) error {
	source := tokenstore.Source(c.tokens)
	if source == "" {
		fmt.Fprintln(c.out, "Already logged out.") //nolint:errcheck
		return nil
	}
	c.sess.Logout(ctx)
	fmt.Fprintln(c.out, "Logged out.") //nolint:errcheck
	if source == "env" {
		fmt.Fprintf(c.out, "%s is still set and will be used next time; unset it to stay logged out.\n", tokenstore.EnvVar) //nolint:errcheck
	}
	return nil
}

// runStatus reports the stored token and whether the server accepts it.
// A network failure leaves the token alone; only a 401 clears it.
func (c *cli) runStatus(ctx context.Context) error {
	token, err := c.tokens.Get()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		printLoggedOut(c.out)
		return nil
	}

	st := status{
		API:    c.cfg.APIURL,
		Source: tokenstore.Source(c.tokens),
		Store:  c.cfg.TokenStore,
	}
	if claims, err := tokenstore.Claims(token); err == nil {
		st.Claims = &claims
	} else {
		c.log.Debug(ctx, "token is not a readable JWT", "err", err)
	}

	me, err := c.client.GetMe(ctx)
	switch {
	case err == nil:
		st.User = me
	case client.IsUnauthorized(err):
		st.Rejected = true
	default:
		st.Err = describe(err)
	}
	printStatus(c.out, st, time.Now())
	return nil
}
