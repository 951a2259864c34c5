// Package serve previews built books over HTTP.
package serve

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/xmark/pkg/content"
)

// Server serves the html output directory under the site's base path.
type Server struct {
	router chi.Router
	dirs   content.Dirs
	prefix string // URL path books live under, always ending in "/"
	log    *logrus.Entry
}

// NewServer creates the preview server for dirs.
func NewServer(dirs content.Dirs, log *logrus.Entry) *Server {
	s := &Server{
		dirs:   dirs,
		prefix: basePath(dirs.BaseURL),
		log:    log.WithField("component", "serve"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	files := http.FileServer(http.Dir(s.dirs.OutDir))
	if s.prefix != "/" {
		files = http.StripPrefix(strings.TrimSuffix(s.prefix, "/"), files)
		r.Get(strings.TrimSuffix(s.prefix, "/"), func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, s.prefix, http.StatusMovedPermanently)
		})
	}
	r.Handle(s.prefix+"*", files)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Serving %s at http://%s%s", s.dirs.OutDir, addr, s.prefix)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down preview server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// basePath extracts the path of a base URL, which may be absolute
// ("https://example.com/docs/") or a bare path ("/docs").
func basePath(baseURL string) string {
	p := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		p = u.Path
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
