package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/kensho/internal/storage"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Error("status: count results failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"results": count,
	}

	if s.config != nil {
		out := s.config.Output
		resp["config"] = map[string]interface{}{
			"output_backend":     out.Backend,
			"claims_path":        s.config.Input.ClaimsPath,
			"documents_dir":      s.config.Input.DocumentsDir,
			"embedding_provider": s.config.Embedding.Provider,
			"embedding_model":    s.config.Embedding.Model,
			"oracle_provider":    s.config.Oracle.Provider,
			"oracle_model":       s.config.Oracle.Model,
			"retrieval_mode":     s.config.Retrieval.Mode,
			"top_k":              s.config.Retrieval.TopK,
		}
		diskBytes, err := storage.DiskUsageBytes(storage.Files(out.Backend, out.ResultsPath, out.SQLitePath)...)
		if err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	if s.runner != nil {
		resp["run"] = s.runner.Status()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil || limit <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	results, err := s.store.List(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list results failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.store.Count(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.store.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "result not found")
		return
	}
	if err != nil {
		s.logger.Error("get result failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.respondError(w, http.StatusNotImplemented, "runs not enabled")
		return
	}
	if s.runner.Trigger() {
		s.logger.Info("run triggered via API")
		s.respondJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
		return
	}
	s.respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleLastRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.respondError(w, http.StatusNotImplemented, "runs not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, s.runner.Status())
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
