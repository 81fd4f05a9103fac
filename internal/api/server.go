package api

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gitcoinco/grant-claims/internal/app"
	"github.com/gitcoinco/grant-claims/internal/apperr"
	"github.com/gitcoinco/grant-claims/internal/claims"
	"github.com/gitcoinco/grant-claims/internal/features"
	"github.com/gitcoinco/grant-claims/internal/grants"
	"github.com/gitcoinco/grant-claims/internal/session"
)

const maxBodyBytes = 1 << 20

// AppState exposes the claim service to the API layer.
type AppState interface {
	IsRunning() bool
	StartedAt() time.Time
	Environment() string
	Features() features.Features
	ImageBaseURL() string
	WalletConnectProjectID() string
	Stats() app.Stats

	Grants(ctx context.Context, search string) ([]grants.Row, error)
	Claim(ctx context.Context, uuid, address string) (claims.Claim, error)
	InitKYCSession(ctx context.Context, alias string) (string, error)
	SignIn(address, message, signature string) (session.Session, error)
	VerifySession(token string) (string, error)
}

// Server is the HTTP API consumed by the claim front end.
type Server struct {
	httpServer *http.Server
	appState   AppState
}

// NewServer creates a new API server bound to addr. A positive
// requestTimeout bounds every handler.
func NewServer(addr string, appState AppState, requestTimeout time.Duration) *Server {
	s := &Server{appState: appState}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/ready", s.handleReady)
		r.Get("/features", s.handleFeatures)
		r.Get("/grants", s.handleGrants)
		r.Get("/claims", s.handleClaims)
		r.Post("/initSynapsSession", s.handleInitSynapsSession)
		r.Post("/session", s.handleSignIn)
		r.Get("/session", s.handleSession)
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins serving HTTP requests.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	log.Printf("api server listening on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("api server: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	s.writeJSONStatus(w, http.StatusOK, v)
}

func (s *Server) writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSONStatus(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// GET /api/health: liveness check with today's counters.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	f := s.appState.Features()
	s.writeJSON(w, map[string]any{
		"ok":          true,
		"uptime_s":    time.Since(s.appState.StartedAt()).Seconds(),
		"variant":     f.Variant,
		"environment": s.appState.Environment(),
		"stats":       s.appState.Stats(),
	})
}

// GET /api/ready: readiness check.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	ready := s.appState.IsRunning()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	s.writeJSONStatus(w, status, map[string]any{"ready": ready})
}

type featuresResponse struct {
	features.Features
	Chains                 any    `json:"chains"`
	ImageBaseURL           string `json:"imageBaseUrl,omitempty"`
	WalletConnectProjectID string `json:"walletConnectProjectId"`
	Environment            string `json:"environment,omitempty"`
}

// GET /api/features: the active variant's public configuration.
func (s *Server) handleFeatures(w http.ResponseWriter, _ *http.Request) {
	f := s.appState.Features()
	s.writeJSON(w, map[string]any{"data": featuresResponse{
		Features:               f,
		Chains:                 f.Chains(),
		ImageBaseURL:           s.appState.ImageBaseURL(),
		WalletConnectProjectID: s.appState.WalletConnectProjectID(),
		Environment:            s.appState.Environment(),
	}})
}

// GET /api/grants: the grant directory, optionally filtered by ?search=.
func (s *Server) handleGrants(w http.ResponseWriter, r *http.Request) {
	rows, err := s.appState.Grants(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.writeJSONStatus(w, apperr.StatusOf(err), map[string]any{
			"success": false,
			"message": apperr.MessageOf(err),
		})
		return
	}
	s.writeJSON(w, map[string]any{
		"data":    rows,
		"success": true,
		"message": "Grants fetched successfully",
	})
}

// GET /api/claims?address=&uuid=: claim eligibility for a wallet.
func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	address, uuid := q.Get("address"), q.Get("uuid")
	if address == "" {
		s.writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	if uuid == "" {
		s.writeError(w, http.StatusBadRequest, "uuid is required")
		return
	}
	c, err := s.appState.Claim(r.Context(), uuid, address)
	if err != nil {
		s.writeError(w, apperr.StatusOf(err), apperr.MessageOf(err))
		return
	}
	s.writeJSON(w, map[string]any{"data": c})
}

type initSessionRequest struct {
	Alias string `json:"alias"`
}

// POST /api/initSynapsSession: opens a KYC session for a brand alias.
func (s *Server) handleInitSynapsSession(w http.ResponseWriter, r *http.Request) {
	var req initSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := s.appState.InitKYCSession(r.Context(), req.Alias)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "failed to initialize session")
		return
	}
	s.writeJSON(w, map[string]any{"data": map[string]string{"sessionId": id}})
}

type signInRequest struct {
	Address   string `json:"address"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// POST /api/session: exchanges a signed sign-in message for a token.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := s.appState.SignIn(req.Address, req.Message, req.Signature)
	if err != nil {
		s.writeError(w, apperr.StatusOf(err), apperr.MessageOf(err))
		return
	}
	s.writeJSON(w, map[string]any{"data": sess})
}

// GET /api/session: resolves the bearer token to its wallet.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "session token is required")
		return
	}
	address, err := s.appState.VerifySession(token)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, apperr.MessageOf(err))
		return
	}
	s.writeJSON(w, map[string]any{"data": map[string]string{"address": address}})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
