package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kidandcat/badiri/internal/api"
	"github.com/kidandcat/badiri/internal/blob"
	"github.com/kidandcat/badiri/internal/calendar"
	"github.com/kidandcat/badiri/internal/config"
	"github.com/kidandcat/badiri/internal/extract"
	"github.com/kidandcat/badiri/internal/logging"
	"github.com/kidandcat/badiri/internal/metrics"
	"github.com/kidandcat/badiri/internal/notify"
	"github.com/kidandcat/badiri/internal/session"
	"github.com/kidandcat/badiri/internal/tracker"
)

//go:embed static/*
var staticFS embed.FS

// server holds the dependencies shared by every handler.
type server struct {
	cfg      config.Config
	svc      *tracker.Service
	sessions session.Store
	blobs    blob.Store
	ai       *extract.Client
	calendar *calendar.Syncer // nil when not configured
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger
	api      *api.API
}

func main() {
	cfg, err := config.Load(configPath(os.Args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, cleanup, err := newServer(ctx, cfg, log)
	if err != nil {
		log.Fatalw("startup failed", "error", err)
	}
	defer cleanup()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warnw("shutdown", "error", err)
		}
	}()

	log.Infow("Badiri running", "addr", cfg.Addr, "storage", cfg.Storage.Driver, "blob", cfg.Blob.Driver)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalw("server stopped", "error", err)
	}
}

// newServer wires storage, sessions, blobs and integrations from cfg.
func newServer(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*server, func(), error) {
	m := metrics.New()

	store, err := openStore(ctx, cfg.Storage, log, m)
	if err != nil {
		return nil, nil, err
	}
	sessions, closeSessions, err := openSessions(ctx, cfg.Session)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("open sessions: %w", err)
	}
	cleanup := func() {
		if err := closeSessions(); err != nil {
			log.Warnw("close sessions", "error", err)
		}
		if err := store.Close(); err != nil {
			log.Warnw("close storage", "error", err)
		}
	}

	blobs, err := blob.Open(ctx, blobOptions(cfg.Blob))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("open blob store: %w", err)
	}

	opts := []tracker.Option{tracker.WithLogger(log)}
	if cfg.Email.Enabled() {
		opts = append(opts, tracker.WithNotifier(notify.New(cfg.Email)))
	} else {
		log.Infow("email notifications disabled")
	}
	svc := tracker.NewService(store, opts...)

	var syncer *calendar.Syncer
	if cfg.Calendar.Enabled() {
		syncer, err = calendar.New(ctx, cfg.Calendar, log)
		if err != nil {
			log.Warnw("calendar sync disabled", "error", err)
			syncer = nil
		}
	}

	s := &server{
		cfg:      cfg,
		svc:      svc,
		sessions: sessions,
		blobs:    blobs,
		ai:       &extract.Client{Endpoint: cfg.AI.Endpoint, Model: cfg.AI.Model},
		calendar: syncer,
		metrics:  m,
		log:      log,
		api:      api.New(svc, sessions, cfg.Admin, log),
	}
	return s, cleanup, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	staticSub, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Auth routes (public)
	mux.HandleFunc("GET /login", s.handleLogin)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	s.api.RegisterRoutes(mux)

	authed := s.authMiddleware
	editor := func(h http.HandlerFunc) http.Handler { return s.authMiddleware(requireEditor(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return s.authMiddleware(requireAdmin(h)) }

	mux.Handle("GET /{$}", authed(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/desk", http.StatusSeeOther)
	}))

	// Desk
	mux.Handle("GET /desk", authed(s.handleDesk))
	mux.Handle("POST /desk/accept", authed(s.handleAccept))
	mux.Handle("POST /desk/revert", authed(s.handleRevert))
	mux.Handle("POST /desk/progress", authed(s.handleProgress))

	// Workspace
	mux.Handle("GET /workspace", editor(s.handleWorkspace))
	mux.Handle("POST /workspace/tasks", editor(s.handleCreateTask))
	mux.Handle("POST /workspace/tasks/{index}", editor(s.handleUpdateTask))
	mux.Handle("POST /workspace/subtasks", editor(s.handleCreateSubtask))
	mux.Handle("POST /workspace/subtasks/{index}", editor(s.handleUpdateSubtask))
	mux.Handle("POST /workspace/attachments", editor(s.handleUploadAttachment))
	mux.Handle("GET /attachments/{key...}", authed(s.handleDownloadAttachment))

	// Reports
	mux.Handle("GET /reports", authed(s.handleReports))
	mux.Handle("GET /reports/export.csv", authed(s.handleExportCSV))
	mux.Handle("POST /reports/calendar-sync", admin(s.handleCalendarSync))

	// AI
	mux.Handle("GET /ai", editor(s.handleAI))
	mux.Handle("POST /ai/image", editor(s.handleAIImage))
	mux.Handle("POST /ai/chat", editor(s.handleAIChat))
	mux.Handle("POST /ai/plan", editor(s.handleAIPlan))
	mux.Handle("POST /ai/approve", editor(s.handleAIApprove))
	mux.Handle("POST /ai/discard", editor(s.handleAIDiscard))

	// Admin
	mux.Handle("GET /admin", admin(s.handleAdmin))
	mux.Handle("POST /admin/users", admin(s.handleAdminCreateUser))
	mux.Handle("POST /admin/users/{index}", admin(s.handleAdminUpdateUser))

	// Chat and mail
	mux.Handle("GET /chat", authed(s.handleChat))
	mux.Handle("POST /chat", authed(s.handleSendMessage))
	mux.Handle("GET /mail", authed(s.handleMail))
	mux.Handle("POST /mail", authed(s.handleSendMail))
	mux.Handle("POST /mail/{index}/read", authed(s.handleMarkRead))

	return s.requestLogger(mux)
}
