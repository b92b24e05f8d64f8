// Package api - HTTP статус решателя: снимок окна, журнал решений, /metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/shiwa/timecard-mini/tc-devsync/internal/logger"
	"github.com/shiwa/timecard-mini/tc-devsync/pkg/model"
)

const (
	defaultDecisionLimit = 50
	defaultMaxDecisions  = 1000
)

// StatusSource отдаёт последний опубликованный снимок
type StatusSource interface {
	Snapshot() model.Snapshot
}

// DecisionLister - журнал решений (Redis); может быть nil
type DecisionLister interface {
	Recent(ctx context.Context, limit int) ([]model.Decision, error)
	// Latest - последнее решение любой сессии; nil, если его нет
	Latest(ctx context.Context) (*model.Decision, error)
}

// Server - роутер со списком зарегистрированных путей
type Server struct {
	*mux.Router

	status       StatusSource
	decisions    DecisionLister
	maxDecisions int
	paths        []string
	srv       *http.Server
}

// NewServer регистрирует обработчики; metrics может быть nil.
// maxDecisions ограничивает limit в /decisions (столько хранит журнал), <= 0 - defaultMaxDecisions.
func NewServer(status StatusSource, decisions DecisionLister, metrics http.Handler, maxDecisions int) *Server {
	if maxDecisions <= 0 {
		maxDecisions = defaultMaxDecisions
	}
	s := &Server{
		Router:       mux.NewRouter(),
		status:       status,
		decisions:    decisions,
		maxDecisions: maxDecisions,
	}
	s.register("/", s.indexFunc)
	s.register("/status", s.statusFunc)
	s.register("/decisions", s.decisionsFunc)
	s.register("/decisions/latest", s.latestFunc)
	if metrics != nil {
		s.Handle("/metrics", metrics).Methods(http.MethodGet)
		s.paths = append(s.paths, "/metrics")
	}
	return s
}

func (s *Server) register(path string, fn http.HandlerFunc) {
	s.HandleFunc(path, fn).Methods(http.MethodGet)
	s.paths = append(s.paths, path)
}

// ListenAndServe слушает addr до ctx.Done(), затем останавливает сервер с таймаутом.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api: слушаем %s", addr)
		errCh <- s.srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) indexFunc(w http.ResponseWriter, _ *http.Request) {
	paths := append([]string(nil), s.paths...)
	sort.Strings(paths)
	writeJSON(w, http.StatusOK, paths)
}

func (s *Server) statusFunc(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status.Snapshot())
}

func (s *Server) decisionsFunc(w http.ResponseWriter, r *http.Request) {
	if s.decisions == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "decision journal disabled"})
		return
	}
	limit := defaultDecisionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	if limit > s.maxDecisions {
		limit = s.maxDecisions
	}
	list, err := s.decisions.Recent(r.Context(), limit)
	if err != nil {
		logger.Error("api: decisions: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if list == nil {
		list = []model.Decision{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) latestFunc(w http.ResponseWriter, r *http.Request) {
	if s.decisions == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "decision journal disabled"})
		return
	}
	d, err := s.decisions.Latest(r.Context())
	if err != nil {
		logger.Error("api: latest decision: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if d == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no decisions yet"})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
