package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"quill/internal/api"
	"quill/internal/artifacts"
	"quill/internal/config"
	"quill/internal/logging"
	"quill/internal/logs"
	"quill/internal/queue"
)

const defaultLogTailLines = 200

type apiServer struct {
	bind     string
	logger   *slog.Logger
	daemon   *Daemon
	queueSvc *api.QueueService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	if cfg == nil || d == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:     bind,
		logger:   logger,
		daemon:   d,
		queueSvc: api.NewQueueService(d.store),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/stats", srv.handleStats)
	mux.HandleFunc("/api/jobs", srv.handleJobs)
	mux.HandleFunc("/api/queue", srv.handleQueue)
	mux.HandleFunc("/api/queue/clear", srv.handleQueueClear)
	mux.HandleFunc("/api/queue/", srv.handleQueueItem)
	mux.HandleFunc("/api/logs", srv.handleLogs)
	mux.HandleFunc("/api/notify/test", srv.handleNotifyTest)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		QueueDBPath:  status.QueueDBPath,
		LockFilePath: status.LockFilePath,
		LogPath:      status.LogPath,
		Workflow:     api.FromStatusSummary(status.Workflow),
		Dependencies: api.FromDependencyStatuses(status.Dependencies),
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	counts, err := s.queueSvc.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueStatsResponse{Counts: counts})
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		item *queue.Item
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(req.Kind)) {
	case api.JobKindFile:
		item, err = s.daemon.AddFile(r.Context(), req.Path, req.Title)
	case api.JobKindURL:
		item, err = s.daemon.AddURL(r.Context(), req.URL)
	case api.JobKindTranscript:
		item, err = s.daemon.AddTranscript(r.Context(), req.Title, req.Path, req.Text, req.Format)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown job kind %q", req.Kind))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, api.QueueItemResponse{Item: api.FromQueueItem(item)})
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		status, ok := queue.ParseStatus(trimmed)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", trimmed))
			return
		}
		statuses = append(statuses, status)
	}

	items, err := s.queueSvc.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueListResponse{Items: items})
}

func (s *apiServer) handleQueueClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var (
		removed int64
		err     error
	)
	switch scope := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("scope"))); scope {
	case "", "all":
		removed, err = s.daemon.ClearQueue(r.Context())
	case "completed":
		removed, err = s.daemon.ClearCompleted(r.Context())
	case "failed":
		removed, err = s.daemon.ClearFailed(r.Context())
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown clear scope %q", scope))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueActionResponse{Updated: removed})
}

// handleQueueItem serves /api/queue/{id}, /api/queue/{id}/retry, and
// /api/queue/{id}/artifacts/{format}.
func (s *apiServer) handleQueueItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/queue/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid queue item id")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.serveQueueItem(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		s.removeQueueItem(w, r, id)
	case len(parts) == 2 && parts[1] == "retry" && r.Method == http.MethodPost:
		s.retryQueueItem(w, r, id)
	case len(parts) == 3 && parts[1] == "artifacts" && r.Method == http.MethodGet:
		s.serveArtifact(w, r, id, parts[2])
	case len(parts) == 1 || (len(parts) == 2 && parts[1] == "retry") || (len(parts) == 3 && parts[1] == "artifacts"):
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		s.writeError(w, http.StatusNotFound, "queue item not found")
	}
}

func (s *apiServer) serveQueueItem(w http.ResponseWriter, r *http.Request, id int64) {
	item, err := s.queueSvc.Describe(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueItemResponse{Item: *item})
}

func (s *apiServer) removeQueueItem(w http.ResponseWriter, r *http.Request, id int64) {
	removed, err := s.daemon.RemoveItem(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueRemoveResponse{Removed: true})
}

func (s *apiServer) retryQueueItem(w http.ResponseWriter, r *http.Request, id int64) {
	updated, err := s.daemon.RetryFailed(r.Context(), []int64{id})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if updated == 0 {
		s.writeError(w, http.StatusConflict, "queue item is not failed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueActionResponse{Updated: updated})
}

func (s *apiServer) serveArtifact(w http.ResponseWriter, r *http.Request, id int64, format string) {
	item, err := s.daemon.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	path, ok := artifactPathFor(item, format)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no %s artifact recorded for job %d", format, id))
		return
	}
	http.ServeFile(w, r, path)
}

func artifactPathFor(item *queue.Item, format string) (string, bool) {
	if item == nil || strings.TrimSpace(item.ArtifactsJSON) == "" {
		return "", false
	}
	var paths artifacts.Paths
	if err := json.Unmarshal([]byte(item.ArtifactsJSON), &paths); err != nil {
		return "", false
	}
	return paths.ForFormat(format)
}

func (s *apiServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	lines := defaultLogTailLines
	if raw := strings.TrimSpace(r.URL.Query().Get("lines")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid lines parameter")
			return
		}
		lines = parsed
	}

	logPath := s.daemon.LogPath()
	tail, err := logs.Tail(logPath, lines)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.LogTailResponse{Path: logPath, Lines: tail})
}

func (s *apiServer) handleNotifyTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sent, message, err := s.daemon.TestNotification(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, message)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NotifyTestResponse{Sent: sent, Message: message})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
