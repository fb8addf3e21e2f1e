package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"i4.energy/across/espat/esp"
)

// Server handles incoming HTTP requests for interacting with the
// configured module through its Gateway
type Server struct {
	Logger  *slog.Logger
	Gateway *Gateway
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ifconfig", s.handleQuery(OpIfconfig))
	mux.HandleFunc("PUT /ifconfig", s.handleBody(OpSetIfconfig))
	mux.HandleFunc("GET /iwconfig", s.handleQuery(OpIwconfig))
	mux.HandleFunc("POST /join", s.handleBody(OpJoin))
	mux.HandleFunc("POST /disconnect", s.handleQuery(OpDisconnect))
	mux.HandleFunc("GET /ping", s.handleQuery(OpPing))
	mux.HandleFunc("GET /resolve", s.handleQuery(OpResolve))
	mux.HandleFunc("GET /scan", s.handleQuery(OpScan))
	mux.HandleFunc("GET /version", s.handleQuery(OpVersion))
	mux.HandleFunc("GET /status", s.handleQuery(OpStatus))
	mux.HandleFunc("POST /reset", s.handleQuery(OpReset))
	mux.HandleFunc("POST /restore", s.handleQuery(OpRestore))
	mux.HandleFunc("POST /http", s.handleHTTP)
	mux.HandleFunc("POST /at", s.handleBody(OpAT))
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, esp.ErrInvalidArgument), errors.Is(err, ErrUnknownOp):
		return http.StatusBadRequest
	case errors.Is(err, esp.ErrNoConnection):
		return http.StatusConflict
	case errors.Is(err, esp.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, esp.ErrProtocol),
		errors.Is(err, esp.ErrMalformedResponse),
		errors.Is(err, esp.ErrBufferOverflow):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, req Request) {
	result, err := s.Gateway.Do(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.Logger.Error("Operation failed", "op", req.Op, "error", err)
		}
		s.sendError(w, err.Error(), status)
		return
	}

	s.Logger.Info("Operation completed", "op", req.Op)
	if result == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleQuery serves operations whose arguments, if any, are query parameters.
func (s *Server) handleQuery(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		s.run(w, r, Request{
			Op:     op,
			Host:   q.Get("host"),
			Domain: q.Get("domain"),
		})
	}
}

// handleBody serves operations whose arguments come as a JSON Request body.
func (s *Server) handleBody(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Op = op
		s.run(w, r, req)
	}
}

// handleHTTP proxies a GET or POST through the module's HTTP client.
func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	type HTTPRequest struct {
		Method string `json:"method"`
		URL    string `json:"url"`
		Data   string `json:"data"`
	}

	var req HTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Method {
	case "", http.MethodGet:
		s.run(w, r, Request{Op: OpHTTPGet, URL: req.URL})
	case http.MethodPost:
		s.run(w, r, Request{Op: OpHTTPPost, URL: req.URL, Data: req.Data})
	default:
		s.sendError(w, "method must be GET or POST", http.StatusBadRequest)
	}
}
