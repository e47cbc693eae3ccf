// Package web serves payment datasets over HTTP.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/denismitr/paysheet"
	"github.com/denismitr/paysheet/kv"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodySize caps submitted payment bodies.
const MaxBodySize = 64 * 1024

var datasetName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Options struct {
	// KeyPrefix is prepended to a dataset name to form its storage key
	KeyPrefix  string
	FileName   string
	SheetName  string
	AutoExport bool

	// Downloads receives a copy of every exported workbook, may be nil
	Downloads paysheet.Downloader
	Headless  bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

type Server struct {
	db     *kv.DB
	env    paysheet.Environment
	opts   Options
	router *chi.Mux
	server *http.Server

	// store operations are read-modify-write on a whole dataset
	mu sync.Mutex
}

func NewServer(db *kv.DB, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	env := paysheet.Headless()
	if !opts.Headless {
		env = paysheet.Interactive(db, opts.Downloads)
	}

	s := &Server{
		db:     db,
		env:    env,
		opts:   opts,
		router: chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/companies", s.handleCompanies)
		r.Get("/datasets", s.handleListDatasets)

		r.Route("/datasets/{dataset}", func(r chi.Router) {
			r.Use(validDataset)
			r.Get("/payments", s.handleListPayments)
			r.Post("/payments", s.handleAppendPayment)
			r.Get("/export", s.handleExport)
			r.Post("/clear", s.handleClear)
		})
	})
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

// store builds the dataset store of one dataset name.
func (s *Server) store(dataset string) *paysheet.Store {
	return paysheet.New(s.env, &paysheet.Config{
		StorageKey: s.opts.KeyPrefix + dataset,
		FileName:   s.opts.FileName,
		SheetName:  s.opts.SheetName,
		AutoExport: s.opts.AutoExport,
		Logger:     s.opts.Logger.With(slog.String("dataset", dataset)),
	})
}

func validDataset(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !datasetName.MatchString(chi.URLParam(r, "dataset")) {
			writeError(w, r, http.StatusBadRequest, "invalid dataset name", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
