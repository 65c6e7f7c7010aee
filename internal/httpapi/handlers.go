package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"gatherly.app/internal/auth"
	"gatherly.app/internal/invite"
	"gatherly.app/internal/obs"
	"gatherly.app/internal/social"
)

// ReadyProbe reports readiness (for example a DB ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

const defaultSessionTTL = 2 * time.Hour

// Config wires the HTTP layer's collaborators.
type Config struct {
	Store      social.Store
	Blacklist  auth.BlacklistStore
	AuthCodec  *auth.Codec
	Invites    *invite.Service
	ReadyProbe ReadyProbe
	Version    string

	// SessionTTL is the auth token lifetime; defaults to 2h.
	SessionTTL time.Duration

	// Rate limit knobs; zero values pick sane defaults.
	RateBurst     int
	RatePerSecond int
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	store      social.Store
	blacklist  auth.BlacklistStore
	authCodec  *auth.Codec
	invites    *invite.Service
	sessionTTL time.Duration

	rateBurst  int
	ratePerSec int
}

func New(cfg Config) (*API, error) {
	if cfg.Store == nil {
		return nil, errors.New("httpapi: store is required")
	}
	if cfg.Blacklist == nil {
		return nil, errors.New("httpapi: blacklist store is required")
	}
	if cfg.AuthCodec == nil {
		return nil, errors.New("httpapi: auth codec is required")
	}
	if cfg.Invites == nil {
		return nil, errors.New("httpapi: invite service is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 60
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 30
	}

	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: cfg.ReadyProbe,
		version:    cfg.Version,
		store:      cfg.Store,
		blacklist:  cfg.Blacklist,
		authCodec:  cfg.AuthCodec,
		invites:    cfg.Invites,
		sessionTTL: cfg.SessionTTL,
		rateBurst:  cfg.RateBurst,
		ratePerSec: cfg.RatePerSecond,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth
	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/logout", a.handleLogout)

	// events
	a.mux.HandleFunc("/api/events", a.handleEventsCollection)
	a.mux.HandleFunc("/api/events/invites", a.handleEventInvites)
	a.mux.HandleFunc("/api/events/", a.handleEventResource)

	// chats
	a.mux.HandleFunc("/api/chats", a.handleChatsCollection)
	a.mux.HandleFunc("/api/chats/create", a.handleChatCreate)
	a.mux.HandleFunc("/api/chats/invite/accept", a.handleInviteAccept)
	a.mux.HandleFunc("/api/chats/", a.handleChatResource)

	// friends
	a.mux.HandleFunc("/api/friends", a.handleFriendsList)
	a.mux.HandleFunc("/api/friends/add", a.handleFriendAdd)
	a.mux.HandleFunc("/api/friends/remove", a.handleFriendRemove)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a, nil
}

// Handler returns the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = withRequestID(h)
	return obs.Instrument(h)
}

// --- ops handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "gatherly-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "gatherly-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Both failures and confirmations use the {"message": ...} shape the
// clients expect.
func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"message": msg})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeMessage(w, code, msg)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// requireFields answers a 400 naming the missing fields; returns false
// when the request was rejected.
func requireFields(w http.ResponseWriter, missing []string) bool {
	if len(missing) == 0 {
		return true
	}
	writeError(w, http.StatusBadRequest,
		"The following fields are required: "+strings.Join(missing, ", "))
	return false
}

func principalOr401(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgTokenInvalid)
	}
	return principal, ok
}
