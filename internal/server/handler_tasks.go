package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/me/godp/pkg/model"
)

func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req model.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("invalid JSON body: "+err.Error()))
		return
	}
	if req.Dataset.Type == "" || req.Dataset.Source == "" {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("dataset.type and dataset.source are required"))
		return
	}
	if req.Algorithm.Type == "" {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("algorithm.type is required"))
		return
	}

	cfg := model.DefaultTaskConfig()
	cfg.Name = req.Name
	cfg.Async = req.Async
	cfg.Parameters = req.Params
	if req.Priority != "" {
		cfg.Priority = model.ParsePriority(req.Priority)
	}
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest,
				model.NewValidationError("invalid timeout: "+err.Error()))
			return
		}
		cfg.Timeout = d
	}

	ds, err := s.datasets.New(req.Dataset.Type)
	if err != nil {
		respondAPIError(w, reqID, err)
		return
	}
	alg, err := s.algorithms.New(req.Algorithm.Type)
	if err != nil {
		respondAPIError(w, reqID, err)
		return
	}

	path, cleanup, err := s.stager.Resolve(r.Context(), req.Dataset.Source)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("stage dataset source: "+err.Error()))
		return
	}
	defer cleanup()

	if err := ds.Load(path); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("load dataset: "+err.Error()))
		return
	}
	if req.Dataset.Preprocess {
		if err := ds.Preprocess(); err != nil {
			respondError(w, reqID, http.StatusBadRequest,
				model.NewValidationError("preprocess dataset: "+err.Error()))
			return
		}
	}
	if !ds.Validate() {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("dataset failed validation: "+ds.Description()))
		return
	}

	id, err := s.engine.Submit(req.Submitter, cfg, ds, alg)
	if err != nil {
		respondAPIError(w, reqID, err)
		return
	}

	s.logger.Info("task submitted",
		"id", id, "algorithm", req.Algorithm.Type, "dataset", req.Dataset.Type,
		"priority", cfg.Priority)
	respondCreated(w, reqID, model.SubmitResponse{TaskID: id})
}

// findTask looks a task up in the live engine first, then in the archive.
func (s *Server) findTask(ctx context.Context, id string) (model.Task, error) {
	task, err := s.engine.Task(id)
	if err == nil {
		return task, nil
	}
	if !model.IsNotFound(err) || s.archive == nil {
		return model.Task{}, err
	}

	archived, aerr := s.archive.GetTask(ctx, id)
	if aerr != nil {
		return model.Task{}, aerr
	}
	if archived == nil {
		return model.Task{}, err
	}
	return *archived, nil
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	task, err := s.findTask(r.Context(), id)
	if err != nil {
		respondAPIError(w, reqID, err)
		return
	}
	respondOK(w, reqID, task)
}

func (s *Server) handleGetTaskStatus(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	task, err := s.findTask(r.Context(), id)
	if err != nil {
		respondAPIError(w, reqID, err)
		return
	}
	respondOK(w, reqID, model.StatusResponse{TaskID: task.ID, Status: task.Status})
}

func (s *Server) handleGetTaskResult(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	task, err := s.findTask(r.Context(), id)
	if err != nil {
		respondAPIError(w, reqID, err)
		return
	}
	respondOK(w, reqID, task.Result)
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	cancelled, err := s.engine.Cancel(id)
	if err != nil {
		respondAPIError(w, reqID, err)
		return
	}

	s.logger.Info("task cancel requested", "id", id, "cancelled", cancelled)
	respondOK(w, reqID, model.CancelResponse{TaskID: id, Cancelled: cancelled})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	if s.archive == nil {
		respondError(w, reqID, http.StatusNotFound,
			&model.APIError{Code: model.ErrNotFound, Message: "task history is not enabled"})
		return
	}

	opts := model.ListOptions{Status: r.URL.Query().Get("status")}
	if v := r.URL.Query().Get("limit"); v != "" {
		opts.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		opts.Offset, _ = strconv.Atoi(v)
	}

	tasks, total, err := s.archive.ListTasks(r.Context(), opts)
	if err != nil {
		respondAPIError(w, reqID, err)
		return
	}

	list := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		list = append(list, *t)
	}
	respondOK(w, reqID, model.TaskListResponse{Tasks: list, Total: total})
}
