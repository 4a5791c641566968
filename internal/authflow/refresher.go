// Package authflow is the session and request-authorization pipeline:
// proactive token refresh, bearer attachment with one reactive retry on
// 401, and the single redirect to login when recovery fails.
package authflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errs "github.com/fhounton/immoctl/internal/errors"
	"github.com/fhounton/immoctl/internal/session"
	"github.com/fhounton/immoctl/internal/token"
	"github.com/fhounton/immoctl/immo"
	"golang.org/x/sync/singleflight"
)

// AuthAPI is the slice of the platform client the refresher needs.
type AuthAPI interface {
	Refresh(ctx context.Context, currentToken string) (*immo.AuthPayload, error)
}

// Refresher performs token refreshes against the API and installs the
// result in the session. Concurrent callers collapse into a single
// network call: whichever caller arrives first runs the refresh, the
// rest wait on its outcome.
type Refresher struct {
	sessions  *session.Manager
	api       AuthAPI
	threshold time.Duration
	logger    *slog.Logger
	group     singleflight.Group
}

// NewRefresher creates a refresher. threshold <= 0 falls back to the
// default proactive-refresh threshold.
func NewRefresher(sessions *session.Manager, api AuthAPI, threshold time.Duration, logger *slog.Logger) *Refresher {
	if threshold <= 0 {
		threshold = token.DefaultRefreshThreshold
	}

	return &Refresher{
		sessions:  sessions,
		api:       api,
		threshold: threshold,
		logger:    logger,
	}
}

// Threshold returns the proactive-refresh threshold in effect.
func (r *Refresher) Threshold() time.Duration {
	return r.threshold
}

// RefreshIfNeeded refreshes the token when it is expiring soon,
// expired, or undecodable. It reports true only when a refresh
// actually happened. No session is a no-op, not an error.
func (r *Refresher) RefreshIfNeeded(ctx context.Context) (bool, error) {
	current := r.sessions.Token()
	if current == "" {
		return false, nil
	}

	st := token.Classify(current, r.threshold)
	if !st.NeedsRefresh() {
		return false, nil
	}

	r.logger.Debug("token needs refresh", slog.String("state", st.String()))

	if err := r.Refresh(ctx); err != nil {
		return false, err
	}

	return true, nil
}

// Refresh unconditionally exchanges the current token for a new one.
// Failure is terminal: the session is cleared before the error is
// returned, never left half-applied, and never retried here.
//
// The call is single-flight: overlapping callers share one network
// refresh and one outcome. The shared call runs on the first caller's
// context.
func (r *Refresher) Refresh(ctx context.Context) error {
	_, err, shared := r.group.Do("refresh", func() (any, error) {
		current := r.sessions.Token()
		if current == "" {
			return nil, errs.ErrNotAuthenticated
		}

		payload, err := r.api.Refresh(ctx, current)
		if err != nil {
			if clearErr := r.sessions.Clear(); clearErr != nil {
				r.logger.Warn("clearing session after failed refresh", slog.String("error", clearErr.Error()))
			}

			return nil, fmt.Errorf("%w: %v", errs.ErrRefreshFailed, err)
		}

		if err := r.sessions.Set(&payload.User, payload.Token); err != nil {
			return nil, fmt.Errorf("installing refreshed session: %w", err)
		}

		r.logger.Debug("token refreshed", slog.Int("expires_in", payload.ExpiresIn))

		return nil, nil
	})

	if shared {
		r.logger.Debug("refresh deduplicated onto in-flight attempt")
	}

	return err
}
