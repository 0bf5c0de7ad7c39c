package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alvarorichard/anirelay/internal/models"
	"github.com/alvarorichard/anirelay/internal/provider"
	"github.com/alvarorichard/anirelay/internal/util"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type multiServerResponse struct {
	Success     bool                  `json:"success"`
	ContentType string                `json:"contentType"`
	ContentID   string                `json:"contentId"`
	Episode     string                `json:"episode,omitempty"`
	Servers     []models.ServerBundle `json:"servers"`
}

type serverListResponse struct {
	Success bool     `json:"success"`
	Servers []string `json:"servers"`
}

type healthResponse struct {
	Alive     bool   `json:"alive"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		util.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// handleEpisodeStream serves GET /api/stream?id=&server=. Provider failures
// never reach here as errors; the aggregator folds them into the response.
func (s *Server) handleEpisodeStream(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	resp := s.aggregator.GetEpisodeStreams(r.Context(), id, r.URL.Query().Get("server"))
	writeJSON(w, http.StatusOK, resp)
}

// handleServerList serves GET /api/servers?id=, the upstream's server list
// for one episode. Unlike stream aggregation, a failure here is surfaced: the
// client has nothing to render without the list.
func (s *Server) handleServerList(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	servers, err := s.servers.AvailableServers(r.Context(), provider.NormalizeEpisodeID(id))
	if err != nil {
		util.Error("server list fetch failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch server list")
		return
	}

	writeJSON(w, http.StatusOK, serverListResponse{Success: true, Servers: servers})
}

// handleMultiServerEpisode serves GET /api/stream/{type}/{tvId}/ep/{epid}.
func (s *Server) handleMultiServerEpisode(w http.ResponseWriter, r *http.Request) {
	s.serveMultiServer(w, r, r.PathValue("epid"))
}

// handleMultiServer serves GET /api/stream/{type}/{tvId} for movies and
// full shows.
func (s *Server) handleMultiServer(w http.ResponseWriter, r *http.Request) {
	s.serveMultiServer(w, r, "")
}

func (s *Server) serveMultiServer(w http.ResponseWriter, r *http.Request, episode string) {
	contentType := r.PathValue("type")
	contentID := r.PathValue("tvId")

	bundles, err := s.aggregator.GetMultiServerStreams(r.Context(), contentType, contentID, episode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, multiServerResponse{
		Success:     true,
		ContentType: contentType,
		ContentID:   contentID,
		Episode:     episode,
		Servers:     bundles,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Alive:     true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
