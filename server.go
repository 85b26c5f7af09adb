package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"i4.energy/across/wifigw/at"
	"i4.energy/across/wifigw/modem"
)

// Gateway is the part of *modem.Modem the HTTP API drives.
type Gateway interface {
	Connect(ctx context.Context, ssid, password string) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	Get(ctx context.Context, host, path string, port int) error
}

var _ Gateway = (*modem.Modem)(nil)

// Server handles incoming HTTP requests for interacting with the
// configured modem instance
type Server struct {
	Logger  *slog.Logger
	Gateway Gateway
	// SSID and Password are used by /connect when the request names none.
	SSID     string
	Password string
	// Metrics, when set, is served on /metrics.
	Metrics http.Handler

	once   sync.Once
	router http.Handler
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.once.Do(func() { s.router = s.routes() })
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/connect", s.handleConnect)
	r.Post("/disconnect", s.handleDisconnect)
	r.Post("/get", s.handleGet)
	r.Get("/status", s.handleStatus)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return r
}

type errorResponse struct {
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

func (s *Server) sendJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}
	s.sendJSON(w, errorResponse{Message: message}, statusCode)
}

// sendModemError reports a failed modem operation together with the stage
// that failed.
func (s *Server) sendModemError(w http.ResponseWriter, err error) {
	statusCode := http.StatusBadGateway
	switch {
	case errors.Is(err, at.ErrInvalidArgument):
		statusCode = http.StatusBadRequest
	case errors.Is(err, modem.ErrAlreadyClosed), errors.Is(err, modem.ErrNotInitialized):
		statusCode = http.StatusServiceUnavailable
	}
	s.sendJSON(w, errorResponse{Message: err.Error(), Stage: modem.FailedStage(err)}, statusCode)
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	type ConnectRequest struct {
		SSID     string `json:"ssid"`
		Password string `json:"password"`
	}

	req := ConnectRequest{SSID: s.SSID, Password: s.Password}
	if err := decodeBody(r, &req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.SSID == "" {
		s.sendError(w, "'ssid' is required when none is configured", http.StatusBadRequest)
		return
	}
	if err := errors.Join(at.CheckQuoted("ssid", req.SSID), at.CheckQuoted("password", req.Password)); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Gateway.Connect(r.Context(), req.SSID, req.Password); err != nil {
		s.Logger.Error("Failed to join network", "error", err, "ssid", req.SSID)
		s.sendModemError(w, err)
		return
	}

	s.Logger.Info("Joined network", "ssid", req.SSID)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.Gateway.Disconnect(r.Context()); err != nil {
		s.Logger.Error("Failed to leave network", "error", err)
		s.sendModemError(w, err)
		return
	}

	s.Logger.Info("Left network")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	type GetRequest struct {
		Host string `json:"host"`
		Path string `json:"path"`
		Port int    `json:"port"`
	}

	var req GetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Host == "" {
		s.sendError(w, "'host' field is required", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		req.Path = "/"
	}
	if err := errors.Join(at.CheckHost(req.Host), at.CheckPath(req.Path)); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Port == 0 {
		req.Port = 80
	}
	if req.Port < 0 || req.Port > 65535 {
		s.sendError(w, "'port' must be between 1 and 65535", http.StatusBadRequest)
		return
	}

	if err := s.Gateway.Get(r.Context(), req.Host, req.Path, req.Port); err != nil {
		s.Logger.Error("HTTP GET failed", "error", err, "host", req.Host, "path", req.Path, "stage", modem.FailedStage(err))
		s.sendModemError(w, err)
		return
	}

	s.Logger.Info("HTTP GET sent", "host", req.Host, "path", req.Path, "port", req.Port)
	s.sendJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, map[string]bool{"connected": s.Gateway.IsConnected()}, http.StatusOK)
}
