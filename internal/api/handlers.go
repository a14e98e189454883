package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/nishad/tcgaimport/internal/catalog"
	"github.com/nishad/tcgaimport/internal/models"
)

const maxListLimit = 1000

type listResponse struct {
	Artifacts []models.Artifact `json:"artifacts"`
	Count     int               `json:"count"`
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.Filter{
		Basename:    q.Get("basename"),
		Platform:    q.Get("platform"),
		DataSubType: q.Get("data_sub_type"),
		Limit:       100,
	}

	if l := q.Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = min(parsed, maxListLimit)
	}

	artifacts, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list artifacts", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if artifacts == nil {
		artifacts = []models.Artifact{}
	}

	s.writeJSON(w, http.StatusOK, listResponse{Artifacts: artifacts, Count: len(artifacts)})
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	artifact, err := s.store.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Artifact not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, artifact)
}
