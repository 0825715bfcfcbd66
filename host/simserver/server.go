// Package simserver serves the HTTP GPIO simulator used by the http
// backend and by the serial-to-simulator bridge.
package simserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gpiotwin/config"
	"gpiotwin/core"
	"gpiotwin/protocol"
)

type pinState struct {
	dir   core.Direction
	pull  core.Pull
	value int
}

// Server holds the simulated pin levels.
type Server struct {
	mu   sync.Mutex
	pins map[string]*pinState
	log  zerolog.Logger
}

// New creates a simulator knowing cfgs. Requests for other pins get 404.
func New(cfgs []core.PinConfig, log zerolog.Logger) *Server {
	s := &Server{
		pins: make(map[string]*pinState, len(cfgs)),
		log:  log.With().Str("component", "simserver").Logger(),
	}
	for _, c := range cfgs {
		if _, dup := s.pins[c.Name]; dup {
			continue
		}
		s.pins[c.Name] = &pinState{dir: c.Direction, pull: c.Pull, value: idleLevel(c.Direction, c.Pull)}
	}
	return s
}

func idleLevel(dir core.Direction, pull core.Pull) int {
	if dir == core.DirInput && pull == core.PullUp {
		return 1
	}
	return 0
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+protocol.HealthPath, s.handleHealth)
	mux.HandleFunc("GET "+protocol.APIPrefix, s.handleList)
	mux.HandleFunc("POST "+protocol.APIPrefix+"/{pin}/configure", s.handleConfigure)
	mux.HandleFunc("GET "+protocol.APIPrefix+"/{pin}", s.handleRead)
	mux.HandleFunc("POST "+protocol.APIPrefix+"/{pin}", s.handleWrite)
	return s.withLogging(mux)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("gpio simulator listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, protocol.HealthStatus{Status: "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]protocol.PinInfo, 0, len(s.pins))
	for name, p := range s.pins {
		out = append(out, protocol.PinInfo{
			Name:      name,
			Direction: p.dir.String(),
			Pull:      p.pull.String(),
			Value:     p.value,
		})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) pin(w http.ResponseWriter, r *http.Request) (string, *pinState, bool) {
	name := r.PathValue("pin")
	p, ok := s.pins[name]
	if !ok {
		http.Error(w, "unknown pin", http.StatusNotFound)
		return name, nil, false
	}
	return name, p, true
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var req protocol.PinSetup
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	dir, err := config.ParseDirection(req.Direction)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pull, err := config.ParsePull(req.Pull)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	name, p, ok := s.pin(w, r)
	if !ok {
		return
	}
	p.dir, p.pull = dir, pull
	p.value = idleLevel(dir, pull)
	s.log.Info().Str("pin", name).Str("dir", dir.String()).Str("pull", pull.String()).Msg("configured")
	writeJSON(w, http.StatusOK, protocol.PinValue{Value: p.value})
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, p, ok := s.pin(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, protocol.PinValue{Value: p.value})
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	var req protocol.PinValue
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	name, p, ok := s.pin(w, r)
	if !ok {
		return
	}
	p.value = 0
	if req.Value != 0 {
		p.value = 1
	}
	s.log.Info().Str("pin", name).Int("value", p.value).Msg("set")
	writeJSON(w, http.StatusOK, protocol.PinValue{Value: p.value})
}

// Value returns the simulated level of pin.
func (s *Server) Value(pin string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pins[pin]
	if !ok {
		return 0, false
	}
	return p.value, true
}
