package lms

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/entrhq/coursepilot/pkg/config"
)

// Bootstrap establishes an authenticated browsing session. It opens the
// home page and watches for the platform's redirect to its login host; no
// redirect within the probe bound means the persistent profile still holds
// a live session.
type Bootstrap struct {
	page     Page
	platform config.Platform
	timeouts config.Timeouts
	log      *zap.Logger
}

// NewBootstrap builds a Bootstrap.
func NewBootstrap(page Page, cfg *config.Config, log *zap.Logger) *Bootstrap {
	return &Bootstrap{page: page, platform: cfg.Platform, timeouts: cfg.Timeouts, log: log}
}

// Establish navigates home and logs in if the platform demands it. Every
// navigation it performs is reported through observe (which may be nil),
// so the caller's state machine sees the login hops too. It returns with
// the page on the home view, or ErrAuthenticationFailed when a submitted
// login never redirected back within the login bound.
func (b *Bootstrap) Establish(creds config.Credentials, observe func(NavEvent) error) error {
	if observe == nil {
		observe = func(NavEvent) error { return nil }
	}

	if err := b.page.Goto(b.platform.HomeURL); err != nil {
		return fmt.Errorf("failed to open home page: %w", err)
	}
	if err := observe(EventOpenHome); err != nil {
		return err
	}

	loginPattern := b.platform.LoginURL + "*"
	err := b.page.WaitForURL(loginPattern, b.timeouts.LoginProbe)
	switch {
	case err == nil:
		b.log.Info("redirected to login, authenticating")
		if err := observe(EventRedirectLogin); err != nil {
			return err
		}
		return b.login(creds, observe)
	case errors.Is(err, ErrWaitTimeout):
		// No redirect inside the bound: the stored session is still valid.
		b.log.Info("session already authenticated")
		return nil
	default:
		return fmt.Errorf("login redirect probe failed: %w", err)
	}
}

func (b *Bootstrap) login(creds config.Credentials, observe func(NavEvent) error) error {
	if err := b.page.FillPlaceholder(labelLoginName, creds.Username); err != nil {
		return fmt.Errorf("failed to fill login name: %w", err)
	}
	if err := b.page.FillPlaceholder(labelPassword, creds.Password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if err := b.page.ClickText(labelSubmit); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}

	if err := b.page.WaitForURL(b.platform.HomeURL, b.timeouts.Login); err != nil {
		if errors.Is(err, ErrWaitTimeout) {
			return ErrAuthenticationFailed
		}
		return fmt.Errorf("post-login wait failed: %w", err)
	}
	b.log.Info("login succeeded")
	return observe(EventLoginSucceeded)
}
