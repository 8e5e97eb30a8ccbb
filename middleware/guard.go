package middleware

import (
	"fmt"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/permission"
)

// Outcome is the result of an access decision.
type Outcome uint8

const (
	// OutcomeLoading defers the decision until bootstrap completes.
	OutcomeLoading Outcome = iota
	OutcomeAllow
	OutcomeUnauthenticated
	OutcomeForbidden
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeAllow:
		return "allow"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Requirement is what a route needs beyond an authenticated session. Empty
// fields are not checked.
type Requirement struct {
	Permission string
	Role       string
}

// Decision pairs an Outcome with the unmet requirement, if any.
type Decision struct {
	Outcome Outcome
	Reason  string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// Decide evaluates req against snap. It performs no I/O.
func Decide(snap goSession.Snapshot, req Requirement) Decision {
	if !snap.Bootstrapped() {
		return Decision{Outcome: OutcomeLoading}
	}
	if !snap.Authenticated() {
		return Decision{Outcome: OutcomeUnauthenticated, Reason: "not authenticated"}
	}
	if req.Role != "" && !permission.IsInRole(snap.Identity, req.Role) {
		return Decision{Outcome: OutcomeForbidden, Reason: "role " + req.Role + " required"}
	}
	if req.Permission != "" && !permission.HasPermission(snap.Identity, req.Permission) {
		return Decision{Outcome: OutcomeForbidden, Reason: "permission " + req.Permission + " required"}
	}
	return Decision{Outcome: OutcomeAllow}
}

// SnapshotSource is the read side of a session. *goSession.Store implements it.
type SnapshotSource interface {
	Snapshot() goSession.Snapshot
}

// RouteOptions configures one guarded route.
type RouteOptions struct {
	Permission string
	Role       string

	// Fallback serves denied requests, unauthenticated and forbidden alike,
	// in place of the 401/403 response.
	Fallback http.Handler
	// Loading serves requests that arrive during bootstrap. Defaults to
	// [LoadingHandler].
	Loading http.Handler
}

func (o RouteOptions) requirement() Requirement {
	return Requirement{Permission: o.Permission, Role: o.Role}
}

// LoadingHandler answers 503 with Retry-After: 1.
func LoadingHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "session loading", http.StatusServiceUnavailable)
	})
}

// RouteGuard returns middleware that admits a request only when Decide allows
// it against the source's current snapshot.
func RouteGuard(src SnapshotSource, opts RouteOptions) func(http.Handler) http.Handler {
	loading := opts.Loading
	if loading == nil {
		loading = LoadingHandler()
	}
	req := opts.requirement()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if src == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			snap := src.Snapshot()
			d := Decide(snap, req)

			switch d.Outcome {
			case OutcomeAllow:
				next.ServeHTTP(w, r.WithContext(goSession.WithSnapshot(r.Context(), snap)))
			case OutcomeLoading:
				loading.ServeHTTP(w, r)
			default:
				if opts.Fallback != nil {
					opts.Fallback.ServeHTTP(w, r)
					return
				}
				if d.Outcome == OutcomeUnauthenticated {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}

// Guard builds RouteGuards that share a source and, optionally, a registry
// of known operation names.
type Guard struct {
	src      SnapshotSource
	registry *permission.Registry
}

// NewGuard returns a Guard. A nil registry disables name checks.
func NewGuard(src SnapshotSource, registry *permission.Registry) *Guard {
	return &Guard{src: src, registry: registry}
}

// Route returns the middleware for opts, or an error when opts names an
// operation the registry does not know.
func (g *Guard) Route(opts RouteOptions) (func(http.Handler) http.Handler, error) {
	if opts.Permission != "" && g.registry != nil && !g.registry.Has(opts.Permission) {
		return nil, fmt.Errorf("unknown operation %q", opts.Permission)
	}
	return RouteGuard(g.src, opts), nil
}

// MustRoute is Route for static wiring; it panics on an unknown operation.
func (g *Guard) MustRoute(opts RouteOptions) func(http.Handler) http.Handler {
	mw, err := g.Route(opts)
	if err != nil {
		panic(err)
	}
	return mw
}
