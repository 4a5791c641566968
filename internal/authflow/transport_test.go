package authflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fhounton/immoctl/immo"
	"github.com/fhounton/immoctl/internal/session"
)

// pipeline wires the full request path against a test server: session
// manager, refresher, redirector and the authorizing transport feeding
// an immo client.
type pipeline struct {
	sessions  *session.Manager
	client    *immo.Client
	refreshes *atomic.Int32
}

func newPipeline(t *testing.T, srvURL string, nav Navigator, startToken string) *pipeline {
	t.Helper()

	sessions := sessionWith(t, startToken)

	// The refresher calls the API through a plain client: the refresh
	// endpoint is a bypass path, so routing it through the authorized
	// transport would be equivalent, but keeping it separate makes the
	// call counting in tests unambiguous.
	authAPI := immo.NewClient(srvURL, nil)
	refreshes := &atomic.Int32{}
	refresher := NewRefresher(sessions, countingAPI{authAPI, refreshes}, 5*time.Minute, quietLogger)

	var redirector *Redirector
	if nav != nil {
		redirector = NewRedirector(sessions, nav, quietLogger)
	}

	transport := NewTransport(nil, sessions, refresher, redirector, quietLogger)
	client := immo.NewClient(srvURL, &http.Client{Transport: transport})

	return &pipeline{sessions: sessions, client: client, refreshes: refreshes}
}

type countingAPI struct {
	api   AuthAPI
	calls *atomic.Int32
}

func (c countingAPI) Refresh(ctx context.Context, currentToken string) (*immo.AuthPayload, error) {
	c.calls.Add(1)

	return c.api.Refresh(ctx, currentToken)
}

func envelope(data any) []byte {
	out, _ := json.Marshal(map[string]any{"success": true, "message": "ok", "data": data})
	return out
}

func bearerOf(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// apiServer is a minimal backend: /auth/refresh mints a fresh token
// and /auth/me requires the currently valid one.
type apiServer struct {
	mu       sync.Mutex
	valid    string
	refuseRe bool // make /auth/refresh fail
}

func (s *apiServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.refuseRe {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"success":false,"message":"Token invalide"}`)

			return
		}

		// Rotate once and stay stable so a retry racing a second
		// refresh still carries an accepted token.
		if s.valid == "" {
			s.valid = mintToken(t, time.Hour)
		}

		w.Write(envelope(immo.AuthPayload{
			User:      immo.User{ID: 1, Name: "Test", Email: "test@example.com"},
			Token:     s.valid,
			TokenType: "Bearer",
			ExpiresIn: 3600,
		}))
	})

	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		valid := s.valid
		s.mu.Unlock()

		if bearerOf(r) != valid || valid == "" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"success":false,"message":"Unauthenticated."}`)

			return
		}

		w.Write(envelope(immo.User{ID: 1, Name: "Test", Email: "test@example.com"}))
	})

	return mux
}

// --- bypass ---

func TestTransport_AuthEndpointsBypassed(t *testing.T) {
	var sawAuth, sawRequestID bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization") != ""
		sawRequestID = r.Header.Get("X-Request-ID") != ""
		w.Write(envelope(immo.AuthPayload{User: immo.User{ID: 1}, Token: mintToken(t, time.Hour)}))
	}))
	defer srv.Close()

	p := newPipeline(t, srv.URL, nil, mintToken(t, time.Hour))

	_, err := p.client.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	assert.False(t, sawAuth, "login must go out without a token even when one is stored")
	assert.False(t, sawRequestID, "bypass requests are forwarded untouched")
}

// --- no token ---

func TestTransport_NoTokenForwardsUnauthenticated(t *testing.T) {
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write(envelope([]immo.Department{{ID: 1, Name: "Atlantique"}}))
	}))
	defer srv.Close()

	p := newPipeline(t, srv.URL, nil, "")

	_, err := p.client.Departments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Zero(t, p.refreshes.Load(), "no token means nothing to refresh")
}

func TestTransport_NoToken401Redirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"message":"Unauthenticated."}`)
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	nav := NewMockNavigator(ctrl)
	nav.EXPECT().Current().Return("/properties")
	nav.EXPECT().Navigate(LoginRoute).Return(nil)

	p := newPipeline(t, srv.URL, nav, "")

	_, err := p.client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, immo.IsUnauthorized(err))
}

// --- happy path ---

func TestTransport_AttachesBearerAndRequestID(t *testing.T) {
	tok := mintToken(t, time.Hour)

	var gotAuth, gotID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get("X-Request-ID")
		w.Write(envelope(immo.User{ID: 1, Name: "Test"}))
	}))
	defer srv.Close()

	p := newPipeline(t, srv.URL, nil, tok)

	user, err := p.client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "Bearer "+tok, gotAuth)
	assert.NotEmpty(t, gotID)
	assert.Zero(t, p.refreshes.Load(), "a fresh token must not trigger a refresh")
}

// --- proactive refresh ---

func TestTransport_ProactiveRefreshBeforeExpiry(t *testing.T) {
	backend := &apiServer{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	// The server only accepts tokens it minted itself, so the profile
	// call can only succeed if the proactive refresh ran first.
	old := mintToken(t, 2*time.Minute)

	p := newPipeline(t, srv.URL, nil, old)

	user, err := p.client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Test", user.Name)
	assert.Equal(t, int32(1), p.refreshes.Load())
	assert.NotEqual(t, old, p.sessions.Token(), "the rotated token replaces the expiring one")
}

// --- reactive 401 recovery ---

func TestTransport_Reactive401RefreshAndRetry(t *testing.T) {
	backend := &apiServer{}

	// Fresh by local clock but revoked server-side: only the reactive
	// path can recover this one.
	revoked := mintToken(t, time.Hour)

	var profileHits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/me" {
			profileHits.Add(1)
		}
		backend.handler(t).ServeHTTP(w, r)
	}))
	defer srv.Close()

	p := newPipeline(t, srv.URL, nil, revoked)

	user, err := p.client.Me(context.Background())
	require.NoError(t, err, "the caller must never see the recovered 401")
	assert.Equal(t, "Test", user.Name)
	assert.Equal(t, int32(1), p.refreshes.Load())
	assert.Equal(t, int32(2), profileHits.Load(), "original attempt plus one retry")
}

func TestTransport_ReactiveRefreshFailureRedirects(t *testing.T) {
	backend := &apiServer{refuseRe: true}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	nav := NewMockNavigator(ctrl)
	nav.EXPECT().Current().Return("/properties")
	nav.EXPECT().Navigate(LoginRoute).Return(nil)

	p := newPipeline(t, srv.URL, nav, mintToken(t, time.Hour))

	_, err := p.client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, immo.IsUnauthorized(err), "the original 401 is handed back")
	assert.Empty(t, p.sessions.Token(), "failed refresh ends the session")
}

func TestTransport_SecondUnauthorizedPropagates(t *testing.T) {
	// Refresh succeeds but the resource keeps rejecting: one retry,
	// then give up and redirect.
	var resourceHits atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelope(immo.AuthPayload{User: immo.User{ID: 1}, Token: mintToken(t, time.Hour)}))
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		resourceHits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"message":"Forbidden account"}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctrl := gomock.NewController(t)
	nav := NewMockNavigator(ctrl)
	nav.EXPECT().Current().Return("/properties")
	nav.EXPECT().Navigate(LoginRoute).Return(nil)

	p := newPipeline(t, srv.URL, nav, mintToken(t, time.Hour))

	_, err := p.client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, immo.IsUnauthorized(err))
	assert.Equal(t, int32(2), resourceHits.Load(), "exactly one retry, never a loop")
	assert.Equal(t, int32(1), p.refreshes.Load())
}

func TestTransport_RetryReplaysRequestBody(t *testing.T) {
	backend := &apiServer{}

	var bodies []string

	mux := http.NewServeMux()
	mux.Handle("POST /auth/refresh", backend.handler(t))
	mux.HandleFunc("PUT /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(raw))

		backend.mu.Lock()
		valid := backend.valid
		backend.mu.Unlock()

		if bearerOf(r) != valid || valid == "" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"success":false,"message":"Unauthenticated."}`)

			return
		}

		w.Write(envelope(immo.User{ID: 1, Name: "Renamed"}))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := newPipeline(t, srv.URL, nil, mintToken(t, time.Hour))

	user, err := p.client.UpdateProfile(context.Background(), map[string]any{"name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.Name)

	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1], "the retry must carry the same payload")
	assert.Contains(t, bodies[1], `"Renamed"`)
}

func TestTransport_Concurrent401sShareOneRefresh(t *testing.T) {
	backend := &apiServer{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	p := newPipeline(t, srv.URL, nil, mintToken(t, time.Hour))

	const n = 6

	var (
		wg   sync.WaitGroup
		errs = make(chan error, n)
	)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := p.client.Me(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	// Real goroutines, so overlap is not guaranteed for every pair,
	// but the refresh count can never exceed the caller count and the
	// session must settle on the server's valid token.
	assert.LessOrEqual(t, p.refreshes.Load(), int32(n))
	assert.GreaterOrEqual(t, p.refreshes.Load(), int32(1))
	assert.Equal(t, backend.valid, p.sessions.Token())
}
