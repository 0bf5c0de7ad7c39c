package proxy

import (
	"io"
	"net/http"
	"strings"

	"github.com/alvarorichard/anirelay/internal/util"
)

// Handler is the media proxy. It fetches arbitrary target URLs with spoofed
// headers and either rewrites playlist bodies or streams bytes through
// untouched. Fetch failures are surfaced as 500s; retrying is the caller's
// business.
type Handler struct {
	client    *http.Client
	referer   string
	userAgent string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Client overrides the default short-timeout proxy client, mainly for
	// tests.
	Client    *http.Client
	Referer   string
	UserAgent string
}

// NewHandler builds a media proxy handler.
func NewHandler(opts HandlerOptions) *Handler {
	client := opts.Client
	if client == nil {
		client = util.GetProxyClient()
	}
	return &Handler{
		client:    client,
		referer:   opts.Referer,
		userAgent: opts.UserAgent,
	}
}

// isPlaylist classifies the response: playlist by target extension or by the
// upstream's declared content type, opaque binary otherwise.
func isPlaylist(target, contentType string) bool {
	return strings.HasSuffix(target, ".m3u8") ||
		strings.Contains(strings.ToLower(contentType), "mpegurl")
}

// ServeHTTP handles GET /proxy?url=<target>.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		http.Error(w, "invalid url parameter", http.StatusBadRequest)
		return
	}
	req.Header.Set("Referer", h.referer)
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		util.Error("proxy fetch failed", "url", target, "err", err)
		http.Error(w, "failed to fetch upstream media", http.StatusInternalServerError)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	contentType := resp.Header.Get("Content-Type")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if isPlaylist(target, contentType) {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			util.Error("proxy read failed", "url", target, "err", err)
			http.Error(w, "failed to read upstream media", http.StatusInternalServerError)
			return
		}

		rewritten := Rewrite(string(body), BaseURL(target))
		w.Header().Set("Content-Type", PlaylistContentType)
		_, _ = w.Write([]byte(rewritten))
		return
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		util.Debug("proxy passthrough interrupted", "url", target, "err", err)
	}
}
