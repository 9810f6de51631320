package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"zoo-assistant/internal/domain"
)

func animalID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	return id, nil
}

func (s *Server) handleTranscriptions(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	obs, err := s.animals.Transcriptions(r.Context(), limit, offset)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, observationViews(obs))
}

func (s *Server) handleListAnimals(w http.ResponseWriter, r *http.Request) {
	animals, err := s.animals.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]AnimalView, 0, len(animals))
	for _, a := range animals {
		out = append(out, animalView(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAnimal(w http.ResponseWriter, r *http.Request) {
	id, err := animalID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	d, err := s.animals.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, animalDetailView(d))
}

func (s *Server) handleAnimalLog(w http.ResponseWriter, r *http.Request) {
	id, err := animalID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, offset, err := page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	obs, err := s.animals.Log(r.Context(), id, limit, offset)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, observationViews(obs))
}
