package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jellydator/ttlcache/v3"

	"github.com/cschleiden/resume-publisher/internal/model"
	"github.com/cschleiden/resume-publisher/internal/storage"
)

func (s *Server) createResume(w http.ResponseWriter, r *http.Request) {
	var input model.CreateResumeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if input.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if input.FullName == "" {
		writeError(w, http.StatusBadRequest, "fullName is required")
		return
	}

	resume, err := s.store.CreateResume(r.Context(), input)
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		s.logger.Error("creating resume", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to create resume")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"resume": resume})
}

func (s *Server) listResumes(w http.ResponseWriter, r *http.Request) {
	resumes, err := s.store.ListResumes(r.Context())
	if err != nil {
		s.logger.Error("listing resumes", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list resumes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"resumes": resumes})
}

func (s *Server) getResume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if item := s.resumeCache.Get(id); item != nil {
		writeJSON(w, http.StatusOK, map[string]any{"resume": item.Value()})
		return
	}

	resume, err := s.store.GetResume(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrResumeNotFound) {
			writeError(w, http.StatusNotFound, "resume not found")
			return
		}

		s.logger.Error("getting resume", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to get resume")
		return
	}

	s.resumeCache.Set(id, resume, ttlcache.DefaultTTL)

	writeJSON(w, http.StatusOK, map[string]any{"resume": resume})
}

func (s *Server) updateResume(w http.ResponseWriter, r *http.Request) {
	var input model.UpdateResumeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input.ID = chi.URLParam(r, "id")

	if input.FullName == "" {
		writeError(w, http.StatusBadRequest, "fullName is required")
		return
	}

	resume, err := s.store.UpdateResume(r.Context(), input)
	if err != nil {
		if errors.Is(err, storage.ErrResumeNotFound) {
			writeError(w, http.StatusNotFound, "resume not found")
			return
		}

		s.logger.Error("updating resume", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update resume")
		return
	}

	// The cached copy is stale after an update.
	s.resumeCache.Delete(input.ID)

	writeJSON(w, http.StatusOK, map[string]any{"resume": resume})
}
