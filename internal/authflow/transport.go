package authflow

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/fhounton/immoctl/immo"
	"github.com/fhounton/immoctl/internal/session"
	"github.com/fhounton/immoctl/internal/token"
	"github.com/google/uuid"
)

// Transport authorizes outgoing requests. Per request it walks a fixed
// sequence: bypass auth endpoints, pass unauthenticated when no token
// exists, refresh proactively when the token is near expiry, attach
// the bearer header, and recover from a 401 with exactly one forced
// refresh and one retry. A 401 that survives all that goes to the
// redirector and back to the caller unchanged.
type Transport struct {
	base       http.RoundTripper
	sessions   *session.Manager
	refresher  *Refresher
	redirector *Redirector
	logger     *slog.Logger
}

// NewTransport wraps base (http.DefaultTransport when nil) with the
// authorization pipeline. redirector may be nil for embedded SDK use
// where no navigation exists.
func NewTransport(base http.RoundTripper, sessions *session.Manager, refresher *Refresher, redirector *Redirector, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &Transport{
		base:       base,
		sessions:   sessions,
		refresher:  refresher,
		redirector: redirector,
		logger:     logger,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Login, register and refresh go out untouched: attaching a token
	// there is wrong, and refreshing on the refresh call would recurse.
	if immo.IsAuthBypassPath(req.URL.Path) {
		return t.base.RoundTrip(req)
	}

	current := t.sessions.Token()
	if current == "" {
		// Unauthenticated request; protected routes will 401 and the
		// failure path below handles it.
		resp, err := t.base.RoundTrip(req)
		if err == nil && resp.StatusCode == http.StatusUnauthorized {
			t.failAuth()
		}

		return resp, err
	}

	if token.Classify(current, t.refresher.Threshold()).NeedsRefresh() {
		// Proactive refresh. On failure the refresher has already
		// cleared the session; the request proceeds with whatever
		// token remains, which may be none.
		if _, err := t.refresher.RefreshIfNeeded(req.Context()); err != nil {
			t.logger.Warn("proactive refresh failed", slog.String("error", err.Error()))
		}

		current = t.sessions.Token()
	}

	authed := t.authorize(req, current)

	resp, err := t.base.RoundTrip(authed)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if current == "" {
		// Nothing was attached, so there is nothing to refresh.
		t.failAuth()
		return resp, nil
	}

	// Reactive recovery: one forced refresh, one retry. A second 401
	// is surfaced to the caller as-is.
	if refreshErr := t.refresher.Refresh(req.Context()); refreshErr != nil {
		t.logger.Debug("reactive refresh failed", slog.String("error", refreshErr.Error()))
		t.failAuth()

		return resp, nil
	}

	retry, ok := t.rewind(req)
	if !ok {
		// The body cannot be replayed; hand the 401 back.
		t.failAuth()
		return resp, nil
	}

	drain(resp)

	retryResp, err := t.base.RoundTrip(t.authorize(retry, t.sessions.Token()))
	if err != nil {
		return nil, err
	}

	if retryResp.StatusCode == http.StatusUnauthorized {
		t.failAuth()
	}

	return retryResp, nil
}

// authorize clones the request and attaches the bearer header plus a
// request ID. The caller's request is never mutated; nothing but these
// two headers is touched.
func (t *Transport) authorize(req *http.Request, tok string) *http.Request {
	out := req.Clone(req.Context())
	if tok != "" {
		out.Header.Set("Authorization", "Bearer "+tok)
	}

	out.Header.Set("X-Request-ID", uuid.NewString())

	return out
}

// rewind produces a replayable copy of the request for the retry, or
// reports false when the body cannot be replayed.
func (t *Transport) rewind(req *http.Request) (*http.Request, bool) {
	out := req.Clone(req.Context())

	if req.Body == nil || req.Body == http.NoBody {
		return out, true
	}

	if req.GetBody == nil {
		return nil, false
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}

	out.Body = body

	return out, true
}

func (t *Transport) failAuth() {
	if t.redirector != nil {
		t.redirector.Trigger()
	}
}

// drain discards and closes a response body that will not be returned
// to the caller, so the underlying connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
