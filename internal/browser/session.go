// Browser session manager
// One headless browser per pipeline run, explicitly owned, never shared

package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go-jobmatcher/utils"

	"github.com/playwright-community/playwright-go"
)

// ErrAuthFailed means the post-login marker never appeared within the
// timeout. Fatal for the run; credentials are either valid or not.
var ErrAuthFailed = errors.New("linkedin login failed")

const (
	loginURL    = "https://www.linkedin.com/login"
	loginMarker = ".feed-identity-module"
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.212 Safari/537.36"

	navigationTimeoutMs = 30000
)

// Options configures a browser session.
type Options struct {
	Email        string
	Password     string
	LoginTimeout time.Duration
	Headless     bool
	Log          *slog.Logger
}

// Session owns a Playwright chromium instance for the lifetime of one
// pipeline run. Not safe for concurrent navigations; the pipeline is
// strictly sequential by design.
type Session struct {
	opts Options
	log  *slog.Logger

	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page

	mu       sync.Mutex
	closed   bool
	loggedIn bool
}

// New launches a headless chromium with a fixed viewport and a realistic
// user agent. The caller must Close the session on every exit path.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = 10 * time.Second
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	browserCtx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
		UserAgent: playwright.String(userAgent),
	})
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &Session{
		opts:    opts,
		log:     opts.Log,
		pw:      pw,
		browser: b,
		page:    page,
	}, nil
}

// Login performs a single credential-based login attempt and waits for the
// feed marker to confirm it. No retries, no CAPTCHA/2FA handling.
func (s *Session) Login(ctx context.Context) error {
	if s.loggedIn {
		return nil
	}

	s.log.Info("🔐 navigating to LinkedIn login")
	if _, err := s.page.Goto(loginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navigationTimeoutMs),
	}); err != nil {
		return fmt.Errorf("%w: login page did not load: %v", ErrAuthFailed, err)
	}

	if _, err := s.page.WaitForSelector("#username", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(s.opts.LoginTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("%w: username field not found", ErrAuthFailed)
	}

	if err := s.page.Locator("#username").Fill(s.opts.Email); err != nil {
		return fmt.Errorf("%w: could not fill username: %v", ErrAuthFailed, err)
	}
	if err := s.page.Locator("#password").Fill(s.opts.Password); err != nil {
		return fmt.Errorf("%w: could not fill password: %v", ErrAuthFailed, err)
	}
	if err := s.page.Locator("button[type='submit']").Click(); err != nil {
		return fmt.Errorf("%w: could not submit login form: %v", ErrAuthFailed, err)
	}

	if _, err := s.page.WaitForSelector(loginMarker, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(s.opts.LoginTimeout.Milliseconds())),
	}); err != nil {
		if path, shotErr := utils.CaptureScreenshot(s.page, "login-failed"); shotErr == nil {
			s.log.Warn("📸 login failure screenshot saved", "path", path)
		}
		return fmt.Errorf("%w: feed marker not visible after %s", ErrAuthFailed, s.opts.LoginTimeout)
	}

	s.log.Info("✅ login confirmed")
	s.loggedIn = true
	return nil
}

// FetchRenderedHTML navigates to url, waits the settle delay for client-side
// rendering, scrolls to trigger lazy loading, and returns the page source.
func (s *Session) FetchRenderedHTML(ctx context.Context, url string, settle time.Duration) (string, error) {
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navigationTimeoutMs),
	}); err != nil {
		return "", fmt.Errorf("failed to load %s: %w", url, err)
	}

	if settle > 0 {
		time.Sleep(settle)
	}
	ScrollToBottom(s.page)

	html, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content for %s: %w", url, err)
	}
	return html, nil
}

// Close terminates the underlying browser process. Safe to call more than
// once; every pipeline exit path funnels through here.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if s.page != nil {
		if err := s.page.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
