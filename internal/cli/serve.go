package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/metrics/export/otel"
	"github.com/MrEthical07/goSession/metrics/export/prometheus"
	"github.com/MrEthical07/goSession/middleware"
	"github.com/MrEthical07/goSession/permission"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// ServerOptions configures NewHandler.
type ServerOptions struct {
	Logger *slog.Logger
	// Registry rejects guarded routes naming unknown operations.
	Registry *permission.Registry
	// Metrics and OTel are mounted at /metrics and /debug/otel when set.
	Metrics http.Handler
	OTel    http.Handler
}

// guardedRoute is one protected page.
type guardedRoute struct {
	path string
	opts middleware.RouteOptions
}

var guardedRoutes = []guardedRoute{
	{path: "/dashboard"},
	{path: "/profile", opts: middleware.RouteOptions{Permission: permission.OpReadMyProfile}},
	{path: "/products", opts: middleware.RouteOptions{Permission: permission.OpReadAllProducts}},
	{path: "/categories", opts: middleware.RouteOptions{Permission: permission.OpReadAllCategories}},
	{path: "/permissions", opts: middleware.RouteOptions{Role: permission.RoleAdministrator}},
}

// NewHandler returns the HTTP surface over store.
func NewHandler(store *goSession.Store, opts ServerOptions) (http.Handler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":       "ok",
			"bootstrapped": store.Bootstrapped(),
		})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.OTel != nil {
		r.Method(http.MethodGet, "/debug/otel", opts.OTel)
	}

	r.Route("/session", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, viewOf(store.Snapshot()))
		})
		r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
			var creds goSession.Credentials
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			respond(w, store, store.Login(r.Context(), creds))
		})
		r.Post("/register", func(w http.ResponseWriter, r *http.Request) {
			var profile goSession.Profile
			if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			if err := profile.Validate(); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			respond(w, store, store.Register(r.Context(), profile))
		})
		r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
			respond(w, store, store.Logout(r.Context()))
		})
		r.Post("/profile", func(w http.ResponseWriter, r *http.Request) {
			respond(w, store, store.RefreshProfile(r.Context()))
		})
	})

	guard := middleware.NewGuard(store, opts.Registry)
	for _, route := range guardedRoutes {
		mw, err := guard.Route(route.opts)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", route.path, err)
		}
		r.With(mw).Get(route.path, pageHandler(route.path))
	}

	return r, nil
}

func pageHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, _ := goSession.SnapshotFromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"page":    path,
			"session": viewOf(snap),
		})
	}
}

func respond(w http.ResponseWriter, store *goSession.Store, err error) {
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(store.Snapshot()))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.String("request_id", chimw.GetReqID(r.Context())),
				slog.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

// otelHandler collects the reader on demand and serves the result as JSON.
func otelHandler(reader *sdkmetric.ManualReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(r.Context(), &rm); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, rm.ScopeMetrics)
	})
}

func runServe(ctx context.Context, e env, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	addr := fs.String("addr", ":8080", "listen address")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	store, cleanup, err := openStore(e.cfg, e.logger, e.stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	registry, err := permission.DefaultRegistry()
	if err != nil {
		return err
	}

	opts := ServerOptions{Logger: e.logger, Registry: registry}
	if e.cfg.Metrics.Enabled {
		opts.Metrics = prometheus.NewPrometheusExporter(store).Handler()

		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = provider.Shutdown(context.WithoutCancel(ctx)) }()
		exp, err := otel.NewOTelExporter(provider.Meter("sessionctl"), store)
		if err != nil {
			return err
		}
		defer func() { _ = exp.Close() }()
		opts.OTel = otelHandler(reader)
	}

	handler, err := NewHandler(store, opts)
	if err != nil {
		return err
	}

	return serve(ctx, e.logger, *addr, handler, func(ctx context.Context) {
		if err := store.Bootstrap(ctx); err != nil {
			e.logger.Warn("bootstrap ended anonymous", slog.Any("error", err))
			return
		}
		e.logger.Info("session bootstrapped", slog.String("status", store.Status().String()))
	})
}

// serve runs srv until ctx ends. Bootstrap runs alongside so guarded routes
// answer "loading" until it completes.
func serve(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler, bootstrap func(context.Context)) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if bootstrap != nil {
		g.Go(func() error {
			bootstrap(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
