package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/macontouch/notebook/internal/http/response"
)

// handleEntryImage serves the decoded image bytes of an entry.
// ?size=thumb returns the thumbnail instead.
func (s *Server) handleEntryImage(w http.ResponseWriter, r *http.Request) {
	name := pathName(r.Context(), chi.URLParam(r, "name"))
	if name == "" {
		response.BadRequest(w, "entry name is required", s.logger)
		return
	}

	thumb := r.URL.Query().Get("size") == "thumb"
	mime, data, err := s.services.Catalog.Image(r.Context(), name, thumb)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Blob(w, mime, CacheNoStore, data)
}
