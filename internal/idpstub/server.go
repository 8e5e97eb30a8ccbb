package idpstub

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/permission"
	"github.com/go-chi/chi/v5"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BasePath is where the API is mounted, matching the default gateway URL.
const BasePath = "/api/v1"

var (
	ErrDuplicateUser = errors.New("username already taken")
	ErrUnknownRole   = errors.New("unknown role")
)

// Config configures a Server. Zero values pick usable defaults.
type Config struct {
	SigningKey []byte
	TokenTTL   time.Duration
	Hash       HashConfig
	Logger     *slog.Logger
	Now        func() time.Time
}

// User is one stub account.
type User struct {
	ID           int64
	Username     string
	Name         string
	Role         string
	PasswordHash string
}

// Server is an http.Handler serving the identity API under BasePath.
type Server struct {
	key    []byte
	ttl    time.Duration
	hasher *Hasher
	logger *slog.Logger
	now    func() time.Time
	router chi.Router

	mu      sync.RWMutex
	users   map[string]*User
	nextID  int64
	revoked map[string]time.Time
}

// New returns an empty identity service. Zero Config fields get defaults;
// the signing key is random when unset.
func New(cfg Config) (*Server, error) {
	if len(cfg.SigningKey) == 0 {
		cfg.SigningKey = []byte(uuid.NewString())
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.Hash == (HashConfig{}) {
		cfg.Hash = DefaultHashConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	hasher, err := NewHasher(cfg.Hash)
	if err != nil {
		return nil, err
	}

	s := &Server{
		key:     cfg.SigningKey,
		ttl:     cfg.TokenTTL,
		hasher:  hasher,
		logger:  cfg.Logger,
		now:     cfg.Now,
		users:   make(map[string]*User),
		revoked: make(map[string]time.Time),
	}

	r := chi.NewRouter()
	r.Route(BasePath, func(r chi.Router) {
		r.Post("/auth/authenticate", s.handleAuthenticate)
		r.Get("/auth/validate-token", s.handleValidate)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/profile", s.handleProfile)
		r.Post("/customers", s.handleRegister)
	})
	s.router = r

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddUser creates an account with role.
func (s *Server) AddUser(username, name, roleName, password string) (User, error) {
	if _, ok := roleGrants[roleName]; !ok {
		return User{}, fmt.Errorf("%w: %q", ErrUnknownRole, roleName)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return User{}, ErrDuplicateUser
	}
	s.nextID++
	u := &User{ID: s.nextID, Username: username, Name: name, Role: roleName, PasswordHash: hash}
	s.users[username] = u
	return *u, nil
}

type authority struct {
	Authority string `json:"authority"`
}

type tokenClaims struct {
	Name        string      `json:"name"`
	Role        string      `json:"role"`
	Authorities []authority `json:"authorities"`
	gojwt.RegisteredClaims
}

// Issue signs a token for u.
func (s *Server) Issue(u User) (string, error) {
	now := s.now()
	auths := make([]authority, 0, len(roleGrants[u.Role])+1)
	for _, op := range roleGrants[u.Role] {
		auths = append(auths, authority{Authority: op})
	}
	auths = append(auths, authority{Authority: jwt.DefaultRolePrefix + u.Role})

	claims := tokenClaims{
		Name:        u.Name,
		Role:        u.Role,
		Authorities: auths,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.Username,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
}

// verify checks signature, expiry and revocation.
func (s *Server) verify(token string) (*tokenClaims, error) {
	var claims tokenClaims
	_, err := gojwt.ParseWithClaims(token, &claims, func(*gojwt.Token) (any, error) {
		return s.key, nil
	}, gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}), gojwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	_, revoked := s.revoked[claims.ID]
	s.mu.RUnlock()
	if revoked {
		return nil, errors.New("token revoked")
	}
	return &claims, nil
}

func (s *Server) revoke(claims *tokenClaims) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
}

func (s *Server) lookup(username string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return User{}, false
	}
	return *u, true
}

/*
====================================
HANDLERS
====================================
*/

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var body goSession.Credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request", err.Error())
		return
	}

	u, ok := s.lookup(body.Username)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Bad credentials", "")
		return
	}
	match, err := s.hasher.Verify(body.Password, u.PasswordHash)
	if err != nil || !match {
		writeError(w, http.StatusUnauthorized, "Bad credentials", "")
		return
	}

	s.writeToken(w, http.StatusOK, u, false)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var profile goSession.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request", err.Error())
		return
	}
	if err := profile.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid registration", err.Error())
		return
	}

	u, err := s.AddUser(profile.Username, strings.TrimSpace(profile.Name), permission.RoleCustomer, profile.Password)
	if errors.Is(err, ErrDuplicateUser) {
		writeError(w, http.StatusConflict, "Username already exists", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed", err.Error())
		return
	}

	s.writeToken(w, http.StatusCreated, u, true)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("jwt")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Missing jwt parameter", "")
		return
	}
	_, err := s.verify(token)
	writeJSON(w, http.StatusOK, err == nil)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.bearer(w, r)
	if !ok {
		return
	}
	s.revoke(claims)
	s.logger.Info("idpstub: token revoked", slog.String("username", claims.Subject))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.bearer(w, r)
	if !ok {
		return
	}
	u, found := s.lookup(claims.Subject)
	if !found {
		writeError(w, http.StatusNotFound, "User not found", "")
		return
	}
	rl, _ := role(u.Role)
	writeJSON(w, http.StatusOK, identity.Identity{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.Name,
		Role:        rl,
	})
}

func (s *Server) bearer(w http.ResponseWriter, r *http.Request) (*tokenClaims, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		writeError(w, http.StatusUnauthorized, "Missing bearer token", "")
		return nil, false
	}
	claims, err := s.verify(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token", err.Error())
		return nil, false
	}
	return claims, true
}

type registeredUser struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	JWT      string `json:"jwt"`
}

func (s *Server) writeToken(w http.ResponseWriter, status int, u User, full bool) {
	token, err := s.Issue(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Token issue failed", err.Error())
		return
	}
	out := registeredUser{JWT: token}
	if full {
		out.ID, out.Username, out.Name, out.Role = u.ID, u.Username, u.Name, u.Role
	}
	writeJSON(w, status, out)
}

func writeError(w http.ResponseWriter, status int, message, backend string) {
	writeJSON(w, status, map[string]string{
		"message":        message,
		"backendMessage": backend,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
