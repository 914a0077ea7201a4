package handlers

import (
	"fmt"
	"net/http"
	"time"
)

// MetaHandler serves the service-level endpoints that need no state.
type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

// Health handles GET /api/health.
func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Disclaimer handles GET /api/disclaimer.
func (h *MetaHandler) Disclaimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"copyright": fmt.Sprintf("© %d StreamScout. All rights reserved.", time.Now().Year()),
		"message": "This service does not host or link torrent/magnet content. " +
			"Metadata and images: TMDB and/or TVmaze. This product uses the TMDB API " +
			"but is not endorsed or certified by TMDB.",
	})
}
