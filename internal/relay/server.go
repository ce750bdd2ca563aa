package relay

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"parrot/internal/config"
)

const (
	msgMissingParams     = "Missing q (query text) or to (target language) param"
	msgTranslationFailed = "Translation failed"
	msgMethodNotAllowed  = "Method not allowed"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Server exposes the translation relay over HTTP.
type Server struct {
	cfg      config.RelayConfig
	provider Provider
	metrics  *Metrics
	log      *zap.Logger
	router   chi.Router
}

func NewServer(cfg config.RelayConfig, provider Provider, metrics *Metrics, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cfg: cfg, provider: provider, metrics: metrics, log: log.Named("relay")}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.MethodNotAllowed(s.methodNotAllowed)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api/translate", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}
		r.Get("/", s.handleTranslate)
		r.Options("/", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	if s.cfg.StaticDir != "" {
		r.NotFound(spaHandler(s.cfg.StaticDir))
	}
	return r
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	text := query.Get("q")
	to := strings.TrimSpace(query.Get("to"))
	from := strings.TrimSpace(query.Get("from"))

	if strings.TrimSpace(text) == "" || to == "" {
		s.log.Warn("missing translation params", zap.Bool("has_q", text != ""), zap.String("to", to))
		s.metrics.request(r.Context(), "invalid")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgMissingParams})
		return
	}
	if from == "auto" {
		from = ""
	}

	started := time.Now()
	result, err := s.provider.Translate(r.Context(), Request{Text: text, From: from, To: to})
	s.metrics.providerDuration(r.Context(), s.provider.Name(), time.Since(started))
	if err != nil {
		s.log.Error("translation failed",
			zap.String("provider", s.provider.Name()),
			zap.String("to", to),
			zap.String("from", from),
			zap.Error(err),
		)
		s.metrics.request(r.Context(), "failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgTranslationFailed, Details: err.Error()})
		return
	}

	s.metrics.request(r.Context(), "ok")
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "provider": s.provider.Name()})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: msgMethodNotAllowed})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(started)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("relay listening", zap.String("addr", s.cfg.Addr), zap.String("provider", s.provider.Name()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("relay shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// spaHandler serves files from dir and falls back to index.html so client
// side routes resolve.
func spaHandler(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
			return
		}
		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
