// Package browser owns the Playwright lifecycle and adapts a live page to
// the capability set the lms package works against.
package browser

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Manager owns the Playwright driver and the single persistent browsing
// session the workflow runs in. Shutdown is safe to call concurrently and
// more than once: a cancellation path and a deferred teardown may race to
// close the same session.
type Manager struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	context     playwright.BrowserContext
	initialized bool
}

// Options configures the browsing session.
type Options struct {
	// Headless runs the browser without a window.
	Headless bool

	// ProfileDir is the persistent profile directory, which keeps the
	// platform session cookie between runs. Empty means a throwaway
	// profile and a fresh login every run.
	ProfileDir string

	// SlowMo paces every driver operation, in milliseconds. The target
	// platform trips its automation detection when driven at full speed.
	SlowMo float64

	// PollInterval is the cadence of Session.Poll. Zero uses the default.
	PollInterval time.Duration
}

// NewManager returns an uninitialized Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Initialize installs (if needed) and starts the Playwright driver.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// OpenSession launches Firefox with a persistent profile and returns the
// session wrapping its first page.
func (m *Manager) OpenSession(opts Options) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}

	profileDir := opts.ProfileDir
	if profileDir == "" {
		dir, err := os.MkdirTemp("", "coursepilot-profile-")
		if err != nil {
			return nil, fmt.Errorf("failed to create profile dir: %w", err)
		}
		profileDir = dir
	}

	launchOpts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	}
	if opts.SlowMo > 0 {
		launchOpts.SlowMo = playwright.Float(opts.SlowMo)
	}

	context, err := m.playwright.Firefox.LaunchPersistentContext(profileDir, launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	m.context = context

	var page playwright.Page
	if pages := context.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = context.NewPage()
		if err != nil {
			context.Close()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}

	return &Session{page: page, pollInterval: opts.PollInterval}, nil
}

// Shutdown closes the browsing context and stops the driver. Closing the
// session is the only teardown the workflow has; it also cancels any wait
// still blocked inside the page.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.context != nil {
		if err := m.context.Close(); err != nil {
			return fmt.Errorf("failed to close browser context: %w", err)
		}
		m.context = nil
	}

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}
	return nil
}
