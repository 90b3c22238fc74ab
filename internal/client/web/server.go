// Package web serves a local preview of the ProjectShelf site backed by the
// CLI's session store. Protected pages sit behind the access gate middleware.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/projectshelf/internal/client/gate"
	"github.com/dmitrijs2005/projectshelf/internal/client/models"
	"github.com/dmitrijs2005/projectshelf/internal/logging"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

var ErrAlreadyRunning = errors.New("web preview already running")

// Sessions is the part of the session store the preview drives.
type Sessions interface {
	gate.StateSource
	Login(ctx context.Context, email, password string) error
	Signup(ctx context.Context, email, password, username string) error
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) error
}

type Server struct {
	sessions Sessions
	gate     *gate.Gate
	logger   logging.Logger
	pages    *renderer

	mu  sync.Mutex
	srv *http.Server
}

func New(sessions Sessions, g *gate.Gate, logger logging.Logger) (*Server, error) {
	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Server{
		sessions: sessions,
		gate:     g,
		logger:   logger.With("module", "web"),
		pages:    pages,
	}, nil
}

// Routes returns the router with public and gated routes.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Group(func(r chi.Router) {
		r.Get("/", s.Home)
		r.Get("/explore", s.Explore)
		r.Get("/login", s.LoginPage)
		r.Post("/login", s.Login)
		r.Get("/signup", s.SignupPage)
		r.Post("/signup", s.Signup)
		r.Get("/forgot-password", s.ForgotPasswordPage)
		r.Post("/forgot-password", s.ForgotPassword)
		r.Get("/health", s.Health)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.gate.Middleware(s.sessions))

		r.Post("/logout", s.Logout)
		r.Get("/onboarding", s.OnboardingPage)
		r.Post("/onboarding", s.Onboarding)
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", s.Dashboard)
			r.Get("/projects", s.Projects)
		})
	})

	return r
}

// Start listens on addr and serves in the background until ctx is done or
// Shutdown is called. It returns the bound address.
func (s *Server) Start(ctx context.Context, addr string) (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return nil, ErrAlreadyRunning
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Handler: s.Routes(), ReadHeaderTimeout: 5 * time.Second}
	s.srv = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "web preview stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "web preview listening", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

// Shutdown stops a running server. It is a no-op when nothing runs.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
