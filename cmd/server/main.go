package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/skycanvas/internal/auth"
	"github.com/inamate/skycanvas/internal/canvasapi"
	"github.com/inamate/skycanvas/internal/collab"
	"github.com/inamate/skycanvas/internal/config"
	mw "github.com/inamate/skycanvas/internal/middleware"
	"github.com/inamate/skycanvas/internal/shape"
	"github.com/inamate/skycanvas/internal/store"
	"github.com/inamate/skycanvas/internal/typeid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))
	shape.SetLogger(slog.Default())

	viewerOpts, err := cfg.Viewer()
	if err != nil {
		slog.Error("viewer config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := shape.NewRegistry()
	hubOpts := collab.HubOptions{Registry: reg, Viewer: viewerOpts}

	// Without a database canvases live only as long as their rooms.
	var snaps canvasapi.Snapshots
	if cfg.DatabaseURL != "" {
		pool, err := store.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		st := store.New(pool)
		if err := st.Migrate(ctx); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}
		hubOpts.Load, hubOpts.Save = st.Load, st.Put
		snaps = st
	} else {
		slog.Warn("DATABASE_URL not set, persistence disabled")
	}

	hub := collab.NewHub(hubOpts)
	go hub.Run()

	authService := auth.NewService(cfg.JWTSecret, cfg.OperatorPasswordHash)
	authHandler := auth.NewHandler(authService)

	canvasHandler := canvasapi.NewHandler(canvasapi.NewService(hub, snaps), reg)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","rooms":` + strconv.Itoa(hub.RoomCount()) + `}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	canvasHandler.Routes(api)

	// WebSocket endpoint
	wsHosts := mw.Hosts(cfg.Origins())
	r.HandleFunc("/ws/canvas/{canvasId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, wsHosts)
	})

	addr := ":" + strconv.Itoa(cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty canvases
		slog.Info("saving open canvases...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "persistence", snaps != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, hosts []string) {
	canvasID := mux.Vars(r)["canvasId"]
	if err := typeid.Validate(canvasID, typeid.PrefixCanvas); err != nil {
		http.Error(w, "invalid canvas id", http.StatusBadRequest)
		return
	}

	var userID, displayName string

	// A token is optional: without one the client joins anonymously.
	if token := r.URL.Query().Get("token"); token != "" {
		user, err := authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID, displayName = user.ID, user.DisplayName
	} else {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: hosts,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(hub, conn, userID, displayName, canvasID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
