package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fhounton/immoctl/immo"
	"github.com/fhounton/immoctl/internal/authflow"
	"github.com/fhounton/immoctl/internal/config"
	errs "github.com/fhounton/immoctl/internal/errors"
	"github.com/fhounton/immoctl/internal/logging"
	"github.com/fhounton/immoctl/internal/session"
	"github.com/fhounton/immoctl/internal/state"
	"github.com/fhounton/immoctl/internal/token"
)

var Version = "dev"

const usage = `immoctl - Immo platform client

Usage:
  immoctl login                    authenticate and store the session
  immoctl logout                   drop the stored session
  immoctl whoami                   show the stored session
  immoctl refresh                  force a token refresh
  immoctl properties [page]        list available properties
  immoctl pending                  list pending sellers and listings (admin)
  immoctl verify-user <id>         approve a seller account (admin)
  immoctl verify-property <id>     approve a listing (admin)
  immoctl watch                    poll pending work until interrupted (admin)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a command needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	sessions *session.Manager
	client   *immo.Client
	refresh  *authflow.Refresher
}

// consoleNavigator satisfies the redirect flow for a terminal client:
// there is no UI to move, so "navigating" to login means telling the
// user to log in again.
type consoleNavigator struct{}

func (consoleNavigator) Navigate(route string) error {
	if route == authflow.LoginRoute {
		fmt.Fprintln(os.Stderr, "session expired; run 'immoctl login'")
	}

	return nil
}

func (consoleNavigator) Current() string { return "/" }

func run(command string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)
	logger.Debug("immoctl starting",
		slog.String("version", Version),
		slog.String("command", command),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appState, err := state.Load(cfg.StateDB)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	defer appState.Close()

	sessions := session.NewManager(appState)
	refresher := authflow.NewRefresher(sessions, immo.NewClient(cfg.APIURL, nil), cfg.RefreshThreshold(), logger)
	redirector := authflow.NewRedirector(sessions, consoleNavigator{}, logger)
	transport := authflow.NewTransport(nil, sessions, refresher, redirector, logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		client:   immo.NewClient(cfg.APIURL, &http.Client{Transport: transport}),
		refresh:  refresher,
	}

	switch command {
	case "login":
		return a.login(ctx)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami()
	case "refresh":
		return a.forceRefresh(ctx)
	case "properties":
		return a.properties(ctx, args)
	case "pending":
		return a.pending(ctx)
	case "verify-user":
		return a.verifyUser(ctx, args)
	case "verify-property":
		return a.verifyProperty(ctx, args)
	case "watch":
		return a.watch(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) login(ctx context.Context) error {
	if a.cfg.Email == "" || a.cfg.Password == "" {
		return fmt.Errorf("IMMO_EMAIL and IMMO_PASSWORD are required to log in")
	}

	payload, err := a.client.Login(ctx, a.cfg.Email, a.cfg.Password)
	if immo.IsUnauthorized(err) {
		return errs.ErrInvalidCredentials
	}

	if err != nil {
		return err
	}

	if err := a.sessions.Set(&payload.User, payload.Token); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	a.logger.Info("logged in",
		slog.String("email", payload.User.Email),
		slog.String("device", a.cfg.DeviceName),
	)
	fmt.Printf("logged in as %s (%s)\n", payload.User.Name, payload.User.Email)

	return nil
}

func (a *app) logout() error {
	if err := a.sessions.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	fmt.Println("logged out")

	return nil
}

func (a *app) whoami() error {
	user := a.sessions.CurrentUser()
	if user == nil {
		return errs.ErrNotAuthenticated
	}

	fmt.Printf("%s (%s)\n", user.Name, user.Email)

	for _, role := range user.Roles {
		fmt.Printf("  role: %s\n", role.Name)
	}

	if remaining, ok := token.Remaining(a.sessions.Token()); ok {
		fmt.Printf("  token expires in %s\n", remaining.Round(time.Second))
	} else {
		fmt.Println("  token has no readable expiry")
	}

	return nil
}

func (a *app) forceRefresh(ctx context.Context) error {
	if err := a.refresh.Refresh(ctx); err != nil {
		return err
	}

	remaining, _ := token.Remaining(a.sessions.Token())
	fmt.Printf("token refreshed, expires in %s\n", remaining.Round(time.Second))

	return nil
}

func (a *app) properties(ctx context.Context, args []string) error {
	params := immo.Params{}

	if len(args) > 0 {
		if _, err := strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("page must be a number, got %q", args[0])
		}

		params["page"] = args[0]
	}

	page, err := a.client.ListProperties(ctx, params)
	if err != nil {
		return err
	}

	for _, p := range page.Items {
		fmt.Printf("#%d  %-40s  %12.0f FCFA  %s\n", p.ID, p.Title, p.Price, p.Status)
	}

	fmt.Printf("page %d/%d (%d total)\n", page.CurrentPage, page.LastPage, page.Total)

	return nil
}

func (a *app) pending(ctx context.Context) error {
	sellers, err := a.client.PendingSellers(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("pending sellers: %d\n", len(sellers))

	for _, u := range sellers {
		fmt.Printf("  #%d  %s (%s)\n", u.ID, u.Name, u.Email)
	}

	listings, err := a.client.ListProperties(ctx, immo.Params{"status": immo.PropertyPendingVerification})
	if err != nil {
		return err
	}

	fmt.Printf("pending listings: %d\n", listings.Total)

	for _, p := range listings.Items {
		fmt.Printf("  #%d  %s\n", p.ID, p.Title)
	}

	return nil
}

func (a *app) verifyUser(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	if err := a.client.VerifyUser(ctx, id); err != nil {
		return err
	}

	fmt.Printf("user #%d verified\n", id)

	return nil
}

func (a *app) verifyProperty(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	if err := a.client.VerifyProperty(ctx, id); err != nil {
		return err
	}

	fmt.Printf("property #%d verified\n", id)

	return nil
}

// watch polls the admin work queues until the context is cancelled,
// logging when counts change.
func (a *app) watch(ctx context.Context) error {
	a.logger.Info("watching for pending work",
		slog.Duration("interval", a.cfg.WatchInterval),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poll(gctx, a.cfg.WatchInterval, func(pollCtx context.Context) (int, error) {
			sellers, err := a.client.PendingSellers(pollCtx)
			if err != nil {
				return 0, err
			}

			return len(sellers), nil
		}, func(n int) {
			a.logger.Info("pending sellers changed", slog.Int("count", n))
		})
	})

	g.Go(func() error {
		return poll(gctx, a.cfg.WatchInterval, func(pollCtx context.Context) (int, error) {
			listings, err := a.client.ListProperties(pollCtx, immo.Params{"status": immo.PropertyPendingVerification})
			if err != nil {
				return 0, err
			}

			return listings.Total, nil
		}, func(n int) {
			a.logger.Info("pending listings changed", slog.Int("count", n))
		})
	})

	err := g.Wait()
	if ctx.Err() != nil {
		// Interrupted by the user; not a failure.
		return nil
	}

	return err
}

// poll runs fetch on a fixed interval and calls onChange whenever the
// returned count differs from the previous run. The first run always
// reports.
func poll(ctx context.Context, interval time.Duration, fetch func(context.Context) (int, error), onChange func(int)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := -1

	for {
		n, err := fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return err
		}

		if n != last {
			onChange(n)
			last = n
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func idArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one id argument")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("id must be a number, got %q", args[0])
	}

	return id, nil
}
