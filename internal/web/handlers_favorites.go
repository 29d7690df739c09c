package web

import (
	"net/http"

	"github.com/JonMunkholm/facility-export/internal/core"
)

// handleListFavorites returns the caller's favorites.
func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.service.ListFavorites(r.Context(), ownerID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string][]core.Favorite{"favorites": favs})
}

// handleCreateFavorite saves a named selection.
func (s *Server) handleCreateFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.validateRequest(&req); err != nil {
		s.respondError(w, r, err)
		return
	}

	fav, err := s.service.SaveFavorite(WithRequestMetadata(r.Context(), r), ownerID(r), req.Name, req.FacilityIDs, req.FieldKeys)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, fav)
}

// handleGetFavorite returns one of the caller's favorites.
func (s *Server) handleGetFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	fav, err := s.service.GetFavorite(r.Context(), ownerID(r), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, fav)
}

// renameRequest is the body of a favorite rename.
type renameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// handleRenameFavorite renames one of the caller's favorites.
func (s *Server) handleRenameFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.validateRequest(&req); err != nil {
		s.respondError(w, r, err)
		return
	}

	fav, err := s.service.RenameFavorite(WithRequestMetadata(r.Context(), r), ownerID(r), id, req.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, fav)
}

// handleDeleteFavorite deletes one of the caller's favorites.
func (s *Server) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.DeleteFavorite(WithRequestMetadata(r.Context(), r), ownerID(r), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
