package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"bridgedemo/db"
	"bridgedemo/monitoring"
)

// WelcomeMessage GET / 返回的固定问候
const WelcomeMessage = "Hello, World! from Python.NET with FastAPI."

// MessageResponse 问候响应
type MessageResponse struct {
	Message string `json:"message"`
}

// HelloMessage 将name原样嵌入问候语
func HelloMessage(name string) string {
	return fmt.Sprintf("Hello, %s! from Python.NET with FastAPI.", name)
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("GET /hello/{name}", handleHello)
	mux.HandleFunc("GET /api/health", handleHealth)
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: WelcomeMessage})
}

func handleHello(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: HelloMessage(r.PathValue("name"))})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func RegisterTrainingHandlers(mux *http.ServeMux, logger *zap.Logger) {
	mux.HandleFunc("GET /api/training/runs", func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			l, err := strconv.Atoi(limitStr)
			if err != nil || l <= 0 {
				respondError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = l
		}

		runs, err := db.QueryTrainingRuns(r.Context(), limit)
		if errors.Is(err, db.ErrNotInitialized) {
			respondError(w, http.StatusServiceUnavailable, "training log not available")
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			respondError(w, http.StatusGatewayTimeout, "request timed out")
			return
		}
		if err != nil {
			logger.Error("query training runs", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to query training runs")
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
	})
}

func RegisterMonitoringRoutes(mux *http.ServeMux, collector *monitoring.MetricsCollector) {
	mux.HandleFunc("GET /api/metrics", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, collector.Snapshot())
	})
}

// respondJSON 统一JSON响应，不转义HTML以保持字段原样
// 先编码到缓冲区，编码失败时返回500而不是空的200
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		buf.Reset()
		buf.WriteString(`{"error":"failed to encode response"}` + "\n")
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
