package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Default form selectors. These cover the common case; portals with unusual
// markup get explicit selectors from the site configuration file.
const (
	DefaultEmailSelector    = `input[type=email], input[name=email], input[name=username]`
	DefaultPasswordSelector = `input[type=password]`
	DefaultSubmitSelector   = `button[type=submit], input[type=submit]`
)

// loginSettleDelay gives the portal time to process the submission and
// issue its redirect before we inspect the outcome.
const loginSettleDelay = 3 * time.Second

// Credentials are the account details used for the login step.
type Credentials struct {
	// Email is the account identifier.
	Email string

	// Secret is the password or token.
	Secret string
}

// LoginOptions configures the credential submission step.
type LoginOptions struct {
	// LoginURL is the page presenting the login form.
	LoginURL string

	// EmailSelector locates the account-identifier field.
	EmailSelector string

	// PasswordSelector locates the password field.
	PasswordSelector string

	// SubmitSelector locates the submit control.
	SubmitSelector string
}

// withDefaults fills empty selectors with the defaults.
func (o LoginOptions) withDefaults() LoginOptions {
	if o.EmailSelector == "" {
		o.EmailSelector = DefaultEmailSelector
	}
	if o.PasswordSelector == "" {
		o.PasswordSelector = DefaultPasswordSelector
	}
	if o.SubmitSelector == "" {
		o.SubmitSelector = DefaultSubmitSelector
	}
	return o
}

// Login navigates to the login page and submits the credentials, leaving
// the session authenticated on success.
//
// This is deliberately not a form-detection heuristic: the selectors are
// configuration. If the submission leaves the browser on a page that still
// shows a password field, the login is considered failed and
// ErrSessionInvalid is returned.
func Login(ctx context.Context, s *ChromeSession, creds Credentials, opts LoginOptions) error {
	opts = opts.withDefaults()

	if _, err := s.Navigate(ctx, opts.LoginURL); err != nil {
		return fmt.Errorf("failed to load login page: %w", err)
	}

	loginCtx, cancel := context.WithTimeout(s.browserCtx, s.opts.NavigateTimeout)
	defer cancel()

	err := chromedp.Run(loginCtx,
		chromedp.WaitVisible(opts.PasswordSelector, chromedp.ByQuery),
		chromedp.SendKeys(opts.EmailSelector, creds.Email, chromedp.ByQuery),
		chromedp.SendKeys(opts.PasswordSelector, creds.Secret, chromedp.ByQuery),
		chromedp.Click(opts.SubmitSelector, chromedp.ByQuery),
		chromedp.Sleep(loginSettleDelay),
	)
	if err != nil {
		return fmt.Errorf("login form submission failed: %w", err)
	}

	ok, err := loggedIn(loginCtx, opts.PasswordSelector)
	if err != nil {
		return fmt.Errorf("failed to verify login state: %w", err)
	}
	if !ok {
		return ErrSessionInvalid
	}

	s.logger.Info("login succeeded", "login_url", opts.LoginURL)
	return nil
}

// loggedIn reports whether the current page looks authenticated: no visible
// password field remains. A crude but reliable signal across the portals
// this tool targets.
func loggedIn(ctx context.Context, passwordSelector string) (bool, error) {
	var count int
	script := fmt.Sprintf(
		`document.querySelectorAll(%q).length`,
		strings.ReplaceAll(passwordSelector, `"`, `\"`),
	)
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &count)); err != nil {
		return false, err
	}
	return count == 0, nil
}
