package goSession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/permission"
	"github.com/google/uuid"
)

// Gateway is the remote identity service. Implementations classify failures
// with [ErrCredentialRejected] (the service said no) and
// [ErrGatewayUnavailable] (it could not be asked). The Store never retries.
type Gateway interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, profile Profile) (string, error)
	ValidateToken(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
}

// ProfileFetcher is implemented by gateways that can return the full server
// profile for a token. See [Store.RefreshProfile].
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (*identity.Identity, error)
}

// TokenStore persists the bearer token between runs. Load reports absence
// with ok == false and a nil error.
type TokenStore interface {
	Load(ctx context.Context) (token string, ok bool, err error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Store owns the session. Readers are lock-cheap and never wait on I/O.
// Mutations run one at a time, each either fully applied or not at all.
type Store struct {
	config  Config
	gateway Gateway
	tokens  TokenStore
	codec   *jwt.Codec
	logger  *slog.Logger
	audit   *auditDispatcher
	metrics *Metrics
	limiter *rate.Limiter
	now     func() time.Time

	// writer is the single-writer token; capacity 1.
	writer chan struct{}
	done   chan struct{}
	closed atomic.Bool

	closeOnce sync.Once
	bootOnce  sync.Once
	bootDone  chan struct{}
	bootErr   error

	mu   sync.RWMutex
	snap Snapshot

	// subMu also serializes publish so subscribers see transitions in order.
	subMu   sync.Mutex
	subs    map[uint64]chan Snapshot
	nextSub uint64
}

func newStore(cfg Config, gw Gateway, tokens TokenStore, codec *jwt.Codec, logger *slog.Logger, sink AuditSink) *Store {
	if sink == nil {
		sink = NewSlogSink(logger)
	}
	s := &Store{
		config:   cfg,
		gateway:  gw,
		tokens:   tokens,
		codec:    codec,
		logger:   logger,
		audit:    newAuditDispatcher(cfg.Audit, sink),
		metrics:  NewMetrics(cfg.Metrics),
		now:      time.Now,
		writer:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		bootDone: make(chan struct{}),
		subs:     make(map[uint64]chan Snapshot),
	}
	if cfg.RateLimit.Enabled {
		s.limiter = rate.New(rate.Config{
			PerSecond: cfg.RateLimit.PerSecond,
			Burst:     cfg.RateLimit.Burst,
		})
	}
	s.snap = Snapshot{Status: StatusBootstrapping, Since: s.now()}
	return s
}

/*
====================================
BOOTSTRAP
====================================
*/

// Bootstrap restores the session from the persisted token. It runs once per
// Store, detached from any single caller: ctx bounds only the caller's wait,
// and only Close aborts the run. An already cancelled ctx returns ctx.Err()
// without starting it.
//
// Unless ctx ended first, the session is Authenticated or Anonymous on
// return. A non-nil error explains why a persisted token was not used
// ([ErrTokenRejected], [ErrGatewayUnavailable], [ErrMalformedToken],
// [ErrTokenStorage]); the Store is usable either way. A run aborted by Close keeps the persisted token.
func (s *Store) Bootstrap(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.bootOnce.Do(func() {
		go s.runBootstrap(context.WithoutCancel(ctx))
	})

	select {
	case <-s.bootDone:
		return s.bootErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) runBootstrap(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.bootErr = s.bootstrap(ctx)
	close(s.bootDone)
}

// bootstrap runs without the writer token: every other mutation waits for
// bootDone before competing for it.
func (s *Store) bootstrap(ctx context.Context) error {
	token, ok, err := s.tokens.Load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s.finishBootstrapAnonymous(ctx, ctxErr, false)
		}
		err = fmt.Errorf("%w: load: %w", ErrTokenStorage, err)
		s.finishBootstrapAnonymous(ctx, err, false)
		return err
	}
	if !ok || token == "" {
		s.publish(Snapshot{Status: StatusAnonymous})
		s.metrics.Inc(MetricBootstrapAnonymous)
		s.emit(ctx, AuditEvent{EventType: AuditBootstrap, Success: true, Metadata: map[string]string{"token": "absent"}})
		return nil
	}

	valid, err := s.validate(ctx, token)
	var reason error
	discard := true
	switch {
	case ctx.Err() != nil:
		// Aborted, not answered: the token may still be good.
		reason = ctx.Err()
		discard = false
	case err != nil && errors.Is(err, ErrCredentialRejected):
		reason = fmt.Errorf("%w: %w", ErrTokenRejected, err)
	case err != nil:
		if !errors.Is(err, ErrGatewayUnavailable) {
			err = fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
		}
		reason = err
		discard = !s.config.Bootstrap.KeepTokenOnUnavailable
	case !valid:
		reason = ErrTokenRejected
	}
	if reason != nil {
		return s.finishBootstrapAnonymous(ctx, reason, discard)
	}

	claims, err := s.codec.Decode(token)
	if err != nil {
		s.metrics.Inc(MetricMalformedToken)
		return s.finishBootstrapAnonymous(ctx, fmt.Errorf("%w: %w", ErrMalformedToken, err), true)
	}

	id := s.codec.ToIdentity(claims)
	next := s.publish(Snapshot{
		Status:    StatusAuthenticated,
		Identity:  id,
		Token:     token,
		SessionID: uuid.NewString(),
	})
	s.metrics.Inc(MetricBootstrapAuthenticated)
	s.emit(ctx, s.event(AuditBootstrap, next, nil))
	return nil
}

func (s *Store) finishBootstrapAnonymous(ctx context.Context, reason error, discard bool) error {
	err := reason
	if discard {
		s.metrics.Inc(MetricBootstrapDiscarded)
		if clearErr := s.tokens.Clear(context.WithoutCancel(ctx)); clearErr != nil {
			s.logger.Warn("goSession: clear persisted token failed",
				slog.String("reason", reason.Error()),
				slog.Any("error", clearErr),
			)
			err = errors.Join(reason, fmt.Errorf("%w: clear: %w", ErrTokenStorage, clearErr))
		}
	}

	s.publish(Snapshot{Status: StatusAnonymous})
	s.metrics.Inc(MetricBootstrapAnonymous)
	s.logger.Info("goSession: persisted session not restored",
		slog.Bool("discarded", discard),
		slog.Any("error", reason),
	)
	ev := AuditEvent{EventType: AuditBootstrap, Success: false, Error: err.Error()}
	if discard {
		ev.Metadata = map[string]string{"token": "discarded"}
	} else {
		ev.Metadata = map[string]string{"token": "kept"}
	}
	s.emit(ctx, ev)
	return err
}

/*
====================================
SIGN-IN
====================================
*/

type signInKind struct {
	event       string
	success     MetricID
	failure     MetricID
	rateLimited MetricID
}

var (
	loginKind    = signInKind{event: AuditLogin, success: MetricLoginSuccess, failure: MetricLoginFailure, rateLimited: MetricLoginRateLimited}
	registerKind = signInKind{event: AuditRegister, success: MetricRegisterSuccess, failure: MetricRegisterFailure, rateLimited: MetricRegisterFailure}
)

// Login authenticates creds and, on success, replaces the session with the
// returned token's identity. On any error the session is unchanged. Gateway
// errors are returned as-is.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	return s.signIn(ctx, loginKind, creds.Username, func(ctx context.Context) (string, error) {
		return s.gateway.Authenticate(ctx, creds.Username, creds.Password)
	})
}

// Register creates an account and signs it in, with the same contract as
// [Store.Login]. It does not call [Profile.Validate].
func (s *Store) Register(ctx context.Context, profile Profile) error {
	return s.signIn(ctx, registerKind, profile.Username, func(ctx context.Context) (string, error) {
		return s.gateway.Register(ctx, profile)
	})
}

func (s *Store) signIn(ctx context.Context, kind signInKind, username string, call func(context.Context) (string, error)) error {
	release, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer release()

	fail := func(err error) error {
		s.emit(ctx, AuditEvent{EventType: kind.event, Username: username, Success: false, Error: err.Error()})
		return err
	}

	limitKey := kind.event + ":" + username
	if err := s.limiter.Allow(limitKey); err != nil {
		s.metrics.Inc(kind.rateLimited)
		return fail(fmt.Errorf("%w: %w", ErrRateLimited, err))
	}

	start := time.Now()
	token, err := call(ctx)
	s.metrics.Observe(MetricGatewayLatency, time.Since(start))
	if err != nil {
		s.metrics.Inc(kind.failure)
		return fail(err)
	}

	claims, err := s.codec.Decode(token)
	if err != nil {
		s.metrics.Inc(MetricMalformedToken)
		s.metrics.Inc(kind.failure)
		return fail(fmt.Errorf("%w: %w", ErrMalformedToken, err))
	}

	if err := s.tokens.Save(ctx, token); err != nil {
		s.metrics.Inc(kind.failure)
		return fail(fmt.Errorf("%w: save: %w", ErrTokenStorage, err))
	}

	next := s.publish(Snapshot{
		Status:    StatusAuthenticated,
		Identity:  s.codec.ToIdentity(claims),
		Token:     token,
		SessionID: uuid.NewString(),
	})
	s.limiter.Reset(limitKey)
	s.metrics.Inc(kind.success)
	s.emit(ctx, s.event(kind.event, next, nil))
	return nil
}

/*
====================================
LOGOUT
====================================
*/

// Logout ends the session. Server-side revocation is best effort: its
// failure is logged and audited but never returned and never keeps the
// session alive. The in-memory session is always cleared; only a failure
// to clear the persisted token is reported ([ErrTokenStorage]).
func (s *Store) Logout(ctx context.Context) error {
	release, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer release()

	prev := s.Snapshot()
	if prev.Token != "" {
		start := time.Now()
		revokeErr := s.gateway.Revoke(ctx, prev.Token)
		s.metrics.Observe(MetricGatewayLatency, time.Since(start))
		if revokeErr != nil {
			revokeErr = fmt.Errorf("%w: %w", ErrRevocationFailed, revokeErr)
			s.metrics.Inc(MetricRevokeFailure)
			s.logger.Warn("goSession: revoke failed",
				slog.String("session_id", prev.SessionID),
				slog.String("username", usernameOf(prev)),
				slog.Any("error", revokeErr),
			)
		}
		s.emit(ctx, s.event(AuditRevoke, prev, revokeErr))
	}

	clearErr := s.tokens.Clear(context.WithoutCancel(ctx))
	s.publish(Snapshot{Status: StatusAnonymous})
	s.metrics.Inc(MetricLogout)

	if clearErr != nil {
		clearErr = fmt.Errorf("%w: clear: %w", ErrTokenStorage, clearErr)
		s.logger.Warn("goSession: clear persisted token failed",
			slog.String("session_id", prev.SessionID),
			slog.String("username", usernameOf(prev)),
			slog.Any("error", clearErr),
		)
	}
	s.emit(ctx, s.event(AuditLogout, prev, clearErr))
	return clearErr
}

/*
====================================
PROFILE
====================================
*/

// RefreshProfile replaces the identity reconstructed from the token with the
// server's profile, which carries real IDs and operation metadata. The token
// and session ID are kept. Requires a gateway implementing [ProfileFetcher].
func (s *Store) RefreshProfile(ctx context.Context) error {
	fetcher, ok := s.gateway.(ProfileFetcher)
	if !ok {
		return ErrProfileUnsupported
	}

	release, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer release()

	cur := s.Snapshot()
	if !cur.Authenticated() {
		return ErrNotAuthenticated
	}

	start := time.Now()
	profile, err := fetcher.FetchProfile(ctx, cur.Token)
	s.metrics.Observe(MetricGatewayLatency, time.Since(start))
	switch {
	case err != nil:
	case profile == nil:
		err = fmt.Errorf("%w: empty profile", ErrGatewayUnavailable)
	case profile.Username != cur.Identity.Username:
		err = fmt.Errorf("%w: got %q, session is %q", ErrProfileMismatch, profile.Username, cur.Identity.Username)
	}
	if err != nil {
		s.emit(ctx, s.event(AuditProfileRefresh, cur, err))
		return err
	}

	id := profile.Clone()
	id.Source = identity.SourceProfile
	next := s.publish(Snapshot{
		Status:    StatusAuthenticated,
		Identity:  id,
		Token:     cur.Token,
		SessionID: cur.SessionID,
	})
	s.metrics.Inc(MetricProfileRefresh)
	s.emit(ctx, s.event(AuditProfileRefresh, next, nil))
	return nil
}

/*
====================================
READERS
====================================
*/

// Snapshot returns the current session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// CurrentUser returns a private copy of the identity, or nil when anonymous.
func (s *Store) CurrentUser() *identity.Identity {
	return s.Snapshot().Identity.Clone()
}

// Token returns the current bearer token, or "" when anonymous.
func (s *Store) Token() string {
	return s.Snapshot().Token
}

// Status returns the current lifecycle state.
func (s *Store) Status() Status {
	return s.Snapshot().Status
}

// Bootstrapped reports whether Bootstrap has completed.
func (s *Store) Bootstrapped() bool {
	return s.Snapshot().Bootstrapped()
}

// HasPermission reports whether the current identity may perform op.
func (s *Store) HasPermission(op string) bool {
	return permission.HasPermission(s.Snapshot().Identity, op)
}

// IsInRole reports whether the current identity holds roleName exactly.
func (s *Store) IsInRole(roleName string) bool {
	return permission.IsInRole(s.Snapshot().Identity, roleName)
}

// IsAdmin reports whether the current identity is an administrator.
func (s *Store) IsAdmin() bool {
	return permission.IsAdmin(s.Snapshot().Identity)
}

// IsAssistantAdmin reports whether the current identity is an assistant administrator.
func (s *Store) IsAssistantAdmin() bool {
	return permission.IsAssistantAdmin(s.Snapshot().Identity)
}

// IsCustomer reports whether the current identity is a customer.
func (s *Store) IsCustomer() bool {
	return permission.IsCustomer(s.Snapshot().Identity)
}

// MetricsSnapshot returns the Store's counters.
func (s *Store) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// AuditDropped returns the number of audit events dropped on a full buffer.
func (s *Store) AuditDropped() uint64 {
	return s.audit.Dropped()
}

/*
====================================
SUBSCRIPTIONS
====================================
*/

// Subscribe returns a channel that first receives the current snapshot and
// then every transition. A subscriber whose buffer is full misses events;
// Snapshot always has the latest state. cancel closes the channel and is
// safe to call more than once. Close closes every subscription.
func (s *Store) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	s.subMu.Lock()
	if s.subs == nil {
		s.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.Snapshot()
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close stops the audit dispatcher, closes subscriptions and rejects further
// mutations with [ErrStoreClosed]. Readers keep working.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		s.audit.Close()

		s.subMu.Lock()
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
		s.subs = nil
		s.subMu.Unlock()
	})
}

/*
====================================
INTERNALS
====================================
*/

// begin waits for bootstrap, then takes the writer token. A cancelled wait
// leaves the session untouched.
func (s *Store) begin(ctx context.Context) (func(), error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// The bootstrap outcome is informational here; only a cancelled wait matters.
	_ = s.Bootstrap(ctx)
	select {
	case <-s.bootDone:
	default:
		return nil, ctx.Err()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrStoreClosed
	}
	if s.closed.Load() {
		<-s.writer
		return nil, ErrStoreClosed
	}
	return func() { <-s.writer }, nil
}

func (s *Store) validate(ctx context.Context, token string) (bool, error) {
	start := time.Now()
	valid, err := s.gateway.ValidateToken(ctx, token)
	s.metrics.Observe(MetricGatewayLatency, time.Since(start))
	return valid, err
}

// publish installs next as the current snapshot and fans it out. Since is
// stamped here.
func (s *Store) publish(next Snapshot) Snapshot {
	next.Since = s.now()

	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- next:
		default:
		}
	}
	return next
}

func (s *Store) event(eventType string, snap Snapshot, err error) AuditEvent {
	ev := AuditEvent{
		EventType: eventType,
		SessionID: snap.SessionID,
		Success:   err == nil,
	}
	if snap.Identity != nil {
		ev.Username = snap.Identity.Username
		ev.Role = snap.Identity.Role.Name
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}

func (s *Store) emit(ctx context.Context, ev AuditEvent) {
	if s.audit == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}
	if !s.audit.Emit(context.WithoutCancel(ctx), ev) && s.audit.dropIfFull {
		s.logger.Debug("goSession: audit event dropped", slog.String("event_type", ev.EventType))
	}
}

func usernameOf(snap Snapshot) string {
	if snap.Identity == nil {
		return ""
	}
	return snap.Identity.Username
}
