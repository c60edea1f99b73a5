package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// shutdownTimeout bounds how long in-flight requests may take to finish
// after the server is asked to stop.
const shutdownTimeout = 5 * time.Second

// NewHandler returns a router serving the files below buildDir. Directory
// requests are answered with their index.html, which is how the generator
// lays out its pages.
func NewHandler(buildDir string, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		requestLogger(log),
	)

	r.Handle("/*", http.FileServer(http.Dir(buildDir)))

	return r
}

// requestLogger logs one debug line per request with the chi request ID.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start),
			}).Debug("request")
		})
	}
}

// Server serves a build directory until its context is cancelled.
type Server struct {
	buildDir string
	log      logrus.FieldLogger
}

// NewServer creates a Server for buildDir. The directory must exist.
func NewServer(buildDir string, log logrus.FieldLogger) (*Server, error) {
	info, err := os.Stat(buildDir)
	if err != nil {
		return nil, fmt.Errorf("build directory %s: %w", buildDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("build directory %s is not a directory", buildDir)
	}
	return &Server{buildDir: buildDir, log: log}, nil
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           NewHandler(s.buildDir, s.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.log.WithFields(logrus.Fields{
		"addr": ln.Addr().String(),
		"dir":  s.buildDir,
	}).Info("serving documentation")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe binds addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
