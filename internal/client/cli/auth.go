package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/cloudvault/internal/client/auth"
	"github.com/dmitrijs2005/cloudvault/internal/client/client"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cloudvault/internal/common"
)

var validate = validator.New()

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (a *App) readCredentials(passwordPrompt string) (credentials, error) {
	email, err := GetSimpleText(a.reader, "Enter your email", a.out)
	if err != nil {
		return credentials{}, err
	}
	pw, err := GetPassword(a.reader, passwordPrompt, a.out)
	if err != nil {
		return credentials{}, err
	}
	defer common.WipeByteArray(pw)

	c := credentials{Email: email, Password: string(pw)}
	if err := validate.Struct(c); err != nil {
		a.fail("Please enter a valid email and password.")
		return credentials{}, fmt.Errorf("%w: %v", common.ErrorIncorrectInput, err)
	}
	return c, nil
}

func (a *App) Login(ctx context.Context) error {
	c, err := a.readCredentials("Enter your password")
	if err != nil {
		return err
	}

	s, err := a.session.SignIn(ctx, c.Email, c.Password)
	if err != nil {
		a.logger.Info(ctx, "login failed", "error", err)
		a.fail(auth.Describe(err))
		return err
	}
	a.success("Welcome, " + s.Name())
	return a.Refresh(ctx)
}

func (a *App) Signup(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	c, err := a.readCredentials("Create a password")
	if err != nil {
		return err
	}
	confirm, err := GetPassword(a.reader, "Confirm your password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)
	if string(confirm) != c.Password {
		a.fail("Passwords do not match.")
		return fmt.Errorf("%w: passwords do not match", common.ErrorIncorrectInput)
	}

	s, err := a.session.SignUp(ctx, strings.TrimSpace(name), c.Email, c.Password)
	if err != nil {
		a.logger.Info(ctx, "signup failed", "error", err)
		a.fail(auth.Describe(err))
		return err
	}
	a.success("Account created. Welcome, " + s.Name())
	return a.Refresh(ctx)
}

// Google signs in with a Google ID token obtained outside the terminal, for
// example from the OAuth playground or gcloud.
func (a *App) Google(ctx context.Context) error {
	token, err := GetSimpleText(a.reader, "Paste a Google ID token", a.out)
	if err != nil {
		return err
	}
	if token == "" {
		a.info("Google sign-in cancelled")
		return nil
	}

	s, err := a.session.SignInWithGoogle(ctx, token)
	if err != nil {
		a.logger.Info(ctx, "google sign-in failed", "error", err)
		a.fail(auth.Describe(err))
		return err
	}
	a.success("Welcome, " + s.Name())
	return a.Refresh(ctx)
}

func (a *App) Logout(ctx context.Context) error {
	a.session.SignOut(ctx)
	a.info("Signed out")
	return nil
}

// DeleteAccount confirms, re-authenticates and removes the backend data and
// then the provider account.
func (a *App) DeleteAccount(ctx context.Context) error {
	confirm := func() bool {
		ok, err := Confirm(a.reader, "Are you sure you want to delete the account? All files will be removed.", a.out)
		return err == nil && ok
	}
	secret := func(s *models.Session) (string, error) {
		if s.IsGoogleLinked {
			return GetSimpleText(a.reader, "Paste a fresh Google ID token to confirm", a.out)
		}
		pw, err := GetPassword(a.reader, "Enter your password to confirm", a.out)
		if err != nil {
			return "", err
		}
		defer common.WipeByteArray(pw)
		return string(pw), nil
	}

	err := a.session.DeleteAccount(ctx, confirm, secret)
	switch {
	case errors.Is(err, auth.ErrNotConfirmed):
		a.info("Account deletion cancelled")
		return nil
	case err != nil:
		a.logger.Warn(ctx, "account deletion failed", "error", err)
		a.fail(client.UserMessage(err, auth.Describe(err)))
		return err
	}
	if err := metadata.ClearExcept(ctx, a.db, common.ThemePreferenceKey); err != nil {
		a.logger.Warn(ctx, "local state not cleared", "error", err)
	}
	a.success("Account deleted successfully")
	return nil
}

// expireOnUnauthorized signs out when the backend rejected the token.
func (a *App) expireOnUnauthorized(ctx context.Context, err error) {
	if errors.Is(err, client.ErrUnauthorized) {
		a.fail(auth.Describe(auth.ErrSessionExpired))
		a.session.SignOut(ctx)
	}
}
