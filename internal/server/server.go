package server

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gdpdash/gdpdash/internal/utils"
	"github.com/gdpdash/gdpdash/pkg/dataset"
	"github.com/sirupsen/logrus"
)

//go:embed web
var WebFS embed.FS

// Server serves the dashboard over a dataset that is loaded once and never
// modified, so handlers share it without locking.
type Server struct {
	Data     *dataset.Dataset
	Username string
	Password string
}

func New(data *dataset.Dataset, user, pass string) *Server {
	return &Server{
		Data:     data,
		Username: user,
		Password: pass,
	}
}

// Handler returns the routed handler with auth and request logging applied.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// API Group
	mux.HandleFunc("GET /api/options", s.basicAuth(s.handleOptions))
	mux.HandleFunc("GET /api/chart", s.basicAuth(s.handleChart))
	mux.HandleFunc("GET /api/records", s.basicAuth(s.handleRecords))
	mux.HandleFunc("GET /chart.png", s.basicAuth(s.handleChartPNG))

	// Dashboard
	mux.HandleFunc("GET /{$}", s.basicAuth(s.handleDashboard))

	// Static Files
	webRoot, err := fs.Sub(WebFS, "web")
	if err != nil {
		return nil, err
	}
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(webRoot)))
	mux.Handle("GET /static/", s.basicAuthMiddlewareForStatic(fileServer))

	return logRequests(mux), nil
}

func (s *Server) Start(addr string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	utils.Log.WithFields(logrus.Fields{
		"addr":      addr,
		"source":    s.Data.Source,
		"countries": len(s.Data.Wide.Countries),
		"records":   s.Data.Tidy.Len(),
	}).Info("Starting dashboard server")

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(w, r) {
			return
		}
		next(w, r)
	}
}

func (s *Server) basicAuthMiddlewareForStatic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.Username == "" && s.Password == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok || user != s.Username || pass != s.Password {
		w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		utils.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
			"htmx":     r.Header.Get("HX-Request") == "true",
		}).Debug("request")
	})
}
