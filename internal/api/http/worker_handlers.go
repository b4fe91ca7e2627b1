package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/execution-hub/supervisor/internal/domain/worker"
)

func (s *Server) listWorkers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 500)
	filter := worker.Health(strings.ToUpper(r.URL.Query().Get("health")))

	all := s.registry.All()
	workers := make([]worker.Descriptor, 0, len(all))
	for _, d := range all {
		if filter != "" && d.Health != filter {
			continue
		}
		workers = append(workers, d)
	}
	total := len(workers)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"workers": workers[offset:end],
		"total":   total,
	})
}

func (s *Server) getWorker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workerId")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid workerId")
		return
	}
	d, err := s.registry.Lookup(id)
	if err != nil {
		respondWorkerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) checkWorker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workerId")
	d, err := s.monitor.Check(contextFromRequest(r), id)
	if err != nil {
		respondWorkerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"worker_id":    d.ID,
		"health":       d.Health,
		"last_checked": d.LastChecked,
	})
}

func (s *Server) sweepWorkers(w http.ResponseWriter, r *http.Request) {
	results := s.monitor.SweepOnce(contextFromRequest(r))
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func respondWorkerError(w http.ResponseWriter, err error) {
	if errors.Is(err, worker.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}
