package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/projectshelf/internal/client/web"
	"github.com/dmitrijs2005/projectshelf/internal/common"
)

// getSimpleText and getPassword are indirections swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errEmptyInput = errors.New("input required")

func (a *App) prompt(label string) (string, error) {
	v, err := getSimpleText(a.reader, label, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s", errEmptyInput, label)
	}
	return v, nil
}

// readSecret prompts for a password. The caller owns the returned string;
// the raw bytes are wiped before returning.
func (a *App) readSecret() (string, error) {
	pw, err := getPassword(a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	if len(pw) == 0 {
		return "", fmt.Errorf("%w: password", errEmptyInput)
	}
	return string(pw), nil
}

// Signup registers a new account and signs it in.
func (a *App) Signup(ctx context.Context) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	username, err := a.prompt("Choose a username")
	if err != nil {
		return err
	}
	password, err := a.readSecret()
	if err != nil {
		return err
	}

	if err := a.store.Signup(ctx, email, password, username); err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s! Your account %s is not verified yet.", username, email))
	printlnFn("Run 'onboarding' to set up your profile.")
	return nil
}

// Login signs in with email and password.
func (a *App) Login(ctx context.Context) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	password, err := a.readSecret()
	if err != nil {
		return err
	}

	if err := a.store.Login(ctx, email, password); err != nil {
		return err
	}

	printlnFn("Signed in as", a.store.State().Identity.Username)
	return nil
}

// Logout forgets the session. The local identity is gone even when an error
// is returned.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Signed out")
	return nil
}

// Forget signs out if needed and wipes every locally stored entry.
func (a *App) Forget(ctx context.Context) error {
	entries, err := a.local.List(ctx)
	if err != nil {
		return fmt.Errorf("reading local state: %w", err)
	}

	if a.isLoggedIn() {
		if err := a.store.Logout(ctx); err != nil {
			return err
		}
	}

	if err := a.local.Clear(ctx); err != nil {
		return fmt.Errorf("clearing local state: %w", err)
	}
	a.logger.Info(ctx, "local state cleared", "entries", len(entries))
	printlnFn(fmt.Sprintf("Removed %d stored entries", len(entries)))
	return nil
}

// Forgot requests a password reset message.
func (a *App) Forgot(ctx context.Context) error {
	email, err := a.prompt("Enter the email of your account")
	if err != nil {
		return err
	}
	if err := a.store.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	printlnFn(web.ResetSentNotice)
	return nil
}

// Reset completes a password reset with the token from the reset message.
func (a *App) Reset(ctx context.Context) error {
	token, err := a.prompt("Enter the reset code")
	if err != nil {
		return err
	}
	printlnFn("Choose a new password")
	password, err := a.readSecret()
	if err != nil {
		return err
	}

	if err := a.api.ResetPassword(ctx, token, password); err != nil {
		return err
	}
	printlnFn("Password updated. You can sign in now.")
	return nil
}
