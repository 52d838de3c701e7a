package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowternity/facility-assistant/internal/aggregate"
	"github.com/flowternity/facility-assistant/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		// Store is migrated; statuses start as pending, then a
		// best-effort aggregation runs before the first request lands.
		a.Orchestrator.SeedStatuses(ctx)
		if cfg.Aggregate.RunOnStartup {
			go a.Orchestrator.RunCycle(context.WithoutCancel(ctx))
		}

		sched, err := aggregate.NewScheduler(a.Orchestrator, cfg.Aggregate.Schedule)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(a),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/chat", a.handleChat)
	r.Get("/api/facility", a.handleFacility)
	r.Get("/api/facility/summary", a.handleSummary)
	r.Get("/api/conversations/{sessionID}", a.handleConversations)
	r.Get("/api/scraping-status", a.handleStatuses)
	r.Post("/api/refresh-data", a.handleRefresh)

	return r
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
}

const apologyText = "I apologize, but I'm experiencing technical difficulties. Please try again or contact FlowTernity Sports directly at +91 8123999768."

func (a *app) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, chatResponse{Response: "invalid request body", Success: false})
		return
	}
	if req.Message == "" || req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, chatResponse{Response: "message and sessionId are required", Success: false})
		return
	}

	reply, err := a.Chat.Send(r.Context(), req.SessionID, req.Message)
	if err != nil {
		zap.L().Error("chat request failed", zap.Error(err))

		// Still record the failed exchange, best effort.
		turn := model.ConversationTurn{
			SessionID:    req.SessionID,
			UserText:     req.Message,
			ResponseText: apologyText,
			IsError:      true,
			OccurredAt:   time.Now().UTC(),
		}
		if perr := a.Store.AppendTurn(r.Context(), turn); perr != nil {
			zap.L().Error("persist error turn failed", zap.Error(perr))
		}

		writeJSON(w, http.StatusInternalServerError, chatResponse{Response: apologyText, Success: false})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply.Text, Success: true})
}

func (a *app) handleFacility(w http.ResponseWriter, r *http.Request) {
	record, err := a.Reconciler.Reconcile(r.Context())
	if err != nil {
		zap.L().Error("facility snapshot failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get facility information"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *app) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Chat.Summary(r.Context())
	if err != nil {
		zap.L().Error("facility summary failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate summary"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (a *app) handleConversations(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	turns, err := a.Chat.History(r.Context(), sessionID)
	if err != nil {
		zap.L().Error("conversation history failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get conversations"})
		return
	}
	if turns == nil {
		turns = []model.ConversationTurn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

func (a *app) handleStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := a.Store.SnapshotStatuses(r.Context())
	if err != nil {
		zap.L().Error("status snapshot failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get scraping status"})
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (a *app) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	// Fire and forget; the cycle serializes itself.
	go a.Orchestrator.RunCycle(context.Background())
	writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
