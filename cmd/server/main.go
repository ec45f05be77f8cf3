package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/siteplan/siteplan/backend-go/internal/auth"
	"github.com/siteplan/siteplan/backend-go/internal/catalog"
	"github.com/siteplan/siteplan/backend-go/internal/collab"
	"github.com/siteplan/siteplan/backend-go/internal/config"
	"github.com/siteplan/siteplan/backend-go/internal/db"
	"github.com/siteplan/siteplan/backend-go/internal/drop"
	"github.com/siteplan/siteplan/backend-go/internal/export"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/metrics"
	mw "github.com/siteplan/siteplan/backend-go/internal/middleware"
	"github.com/siteplan/siteplan/backend-go/internal/project"
)

// Playground project allows anonymous access and is never persisted
const playgroundProjectID = "proj_playground"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	devices, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		slog.Error("load device catalog", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	queries := db.New(pool)

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	projectService := project.NewService(queries, devices)
	projectHandler := project.NewHandler(projectService)

	exportHandler := export.NewHandler(projectService, devices, project.StatusForError)

	// Floorplan loader for the collaboration hub
	loader := func(ctx context.Context, projectID string) (floorplan.FloorplanWithStairs, error) {
		if projectID == playgroundProjectID {
			return floorplan.NewSample(), nil
		}
		return projectService.LoadFloorplan(ctx, projectID)
	}

	// Floorplan saver for the collaboration hub
	saver := func(ctx context.Context, projectID string, fp floorplan.FloorplanWithStairs) error {
		if projectID == playgroundProjectID {
			return nil
		}
		version, err := projectService.SaveFloorplan(ctx, projectID, fp)
		if err != nil {
			return err
		}
		slog.Debug("snapshot written", "project", projectID, "version", version)
		return nil
	}

	hub := collab.NewHub(loader, saver,
		collab.WithSaveInterval(cfg.SaveInterval),
		collab.WithResolver(drop.NewResolver(devices)),
	)
	go hub.Run()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Export of a posted floorplan (public, used by the playground)
	r.HandleFunc("/export/{format}", exportHandler.ExportFloorplan).Methods("POST", "OPTIONS")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/projects", projectHandler.List).Methods("GET")
	api.HandleFunc("/projects", projectHandler.Create).Methods("POST")
	api.HandleFunc("/projects/{projectId}", projectHandler.Get).Methods("GET")
	api.HandleFunc("/projects/{projectId}", projectHandler.Delete).Methods("DELETE")
	api.HandleFunc("/projects/{projectId}/invite", projectHandler.Invite).Methods("POST")
	api.HandleFunc("/projects/{projectId}/members", projectHandler.ListMembers).Methods("GET")
	api.HandleFunc("/projects/{projectId}/members/{userId}", projectHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/projects/{projectId}/floorplan", projectHandler.GetFloorplan).Methods("GET")
	api.HandleFunc("/projects/{projectId}/floorplan", projectHandler.PutFloorplan).Methods("PUT")
	api.HandleFunc("/projects/{projectId}/validation", projectHandler.Validation).Methods("GET")
	api.HandleFunc("/projects/{projectId}/export/{format}", exportHandler.ExportProject).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws/project/{projectId}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["projectId"] == playgroundProjectID && !cfg.Playground {
			http.Error(w, "playground disabled", http.StatusNotFound)
			return
		}
		handleWebSocket(w, r, hub, authService, projectService, cfg.OriginPatterns())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
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

		// Stop hub first to save all dirty floorplans
		slog.Info("saving all floorplans...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "devices", len(devices.Types()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, projects *project.Service, originPatterns []string) {
	vars := mux.Vars(r)
	projectID := vars["projectId"]

	var userID string
	var displayName string

	if projectID == playgroundProjectID {
		// Anonymous user for playground
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		// Auth via query param for real projects
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		var err error
		userID, err = authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if err := projects.CheckAccess(r.Context(), projectID, userID); err != nil {
			http.Error(w, "not a project member", project.StatusForError(err))
			return
		}

		user, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusInternalServerError)
			return
		}
		displayName = user.DisplayName
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, userID, displayName, projectID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
