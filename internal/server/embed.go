package server

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"
)

//go:embed static/embed.html
var embedPage string

// episodeIDAttr is the placeholder the player script reads its episode id
// from; handleEmbed swaps the requested id into it.
const episodeIDAttr = `data-episode-id=""`

// handleEmbed serves the embeddable player page, optionally injecting the
// requested episode id as a page attribute.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	if embedPage == "" {
		http.Error(w, "embed page not available", http.StatusNotFound)
		return
	}

	page := embedPage
	if id := r.PathValue("id"); id != "" {
		page = strings.Replace(page, episodeIDAttr, fmt.Sprintf(`data-episode-id=%q`, id), 1)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}
