package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/gateway"
	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/logger"
	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/metrics"
	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/repository"
)

const rawPreviewPath = "/api/raw-data-preview"

type Options struct {
	Port            int
	CORSAllowOrigin string
	WriteTimeout    time.Duration
}

type Server struct {
	gw         gateway.Gateway
	preview    repository.Previewer
	log        *logrus.Entry
	handler    http.Handler
	httpServer *http.Server
}

func NewServer(gw gateway.Gateway, preview repository.Previewer, log *logger.Log, opts Options) *Server {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	s := &Server{
		gw:      gw,
		preview: preview,
		log:     log.WithComponent("api"),
	}

	mux := http.NewServeMux()

	// Entry page
	mux.HandleFunc("GET /{$}", s.handleIndex)

	// Fixed views
	mux.HandleFunc("GET "+rawPreviewPath, s.handleRawPreview)
	for _, v := range repository.Views {
		mux.HandleFunc("GET /api/"+v.Name, s.handleView(v))
	}

	// Pass-through SQL
	mux.HandleFunc("POST /api/execute-query", s.handleExecuteQuery)

	// Ops
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	s.handler = metrics.InstrumentHandler(corsMiddleware(s.recoverMiddleware(mux), opts.CORSAllowOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: opts.WriteTimeout,
	}

	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.log.WithFields(logrus.Fields{
		"addr":           s.httpServer.Addr,
		"raw_preview":    s.preview.Source(),
		"health":         "http://localhost" + s.httpServer.Addr + "/health",
		"custom_queries": "enabled (unrestricted SQL)",
	}).Info("REST API server started")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware turns a handler panic into a JSON error so one bad
// request never takes the process down.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.log.WithFields(logrus.Fields{
				"path":  r.URL.Path,
				"panic": fmt.Sprint(rec),
				"stack": string(debug.Stack()),
			}).Error("handler panicked")

			status := http.StatusBadRequest
			if r.URL.Path == rawPreviewPath {
				status = http.StatusInternalServerError
			}
			writeError(w, status, fmt.Sprint(rec))
		}()
		next.ServeHTTP(w, r)
	})
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
	w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
