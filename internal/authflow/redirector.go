package authflow

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fhounton/immoctl/internal/session"
)

// LoginRoute is where the user lands after an unrecoverable auth
// failure.
const LoginRoute = "/login"

// settleDelay is how long the redirect-in-progress marker stays set
// after navigation, absorbing the burst of 401s from requests that
// were already in flight when the session died.
const settleDelay = time.Second

// Navigator moves the UI between routes. The CLI and tests provide
// implementations; a web shell would wrap its router.
type Navigator interface {
	// Navigate moves to the given route.
	Navigate(route string) error
	// Current returns the route currently displayed.
	Current() string
}

// Redirector funnels unrecovered 401s into exactly one session-clear
// and one navigation to the login route, no matter how many failures
// arrive while the first is being handled.
type Redirector struct {
	sessions *session.Manager
	nav      Navigator
	logger   *slog.Logger
	settle   time.Duration

	mu          sync.Mutex
	redirecting bool
}

// NewRedirector creates a redirector with the default settle delay.
func NewRedirector(sessions *session.Manager, nav Navigator, logger *slog.Logger) *Redirector {
	return &Redirector{
		sessions: sessions,
		nav:      nav,
		logger:   logger,
		settle:   settleDelay,
	}
}

// Trigger handles one unrecovered 401. The first caller clears the
// session and navigates to login; callers arriving before the redirect
// settles are ignored. The marker resets after the settle delay so a
// future session can trigger the flow again.
func (r *Redirector) Trigger() {
	r.mu.Lock()
	if r.redirecting {
		r.mu.Unlock()
		return
	}

	r.redirecting = true
	r.mu.Unlock()

	if err := r.sessions.Clear(); err != nil {
		r.logger.Warn("clearing session on auth failure", slog.String("error", err.Error()))
	}

	if r.nav.Current() == LoginRoute {
		// Already on the login screen; nothing to navigate.
		r.reset()
		return
	}

	r.logger.Info("session expired, redirecting to login")

	if err := r.nav.Navigate(LoginRoute); err != nil {
		r.logger.Warn("navigating to login", slog.String("error", err.Error()))
	}

	time.AfterFunc(r.settle, r.reset)
}

func (r *Redirector) reset() {
	r.mu.Lock()
	r.redirecting = false
	r.mu.Unlock()
}
