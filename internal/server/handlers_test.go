package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvarorichard/anirelay/internal/config"
	"github.com/alvarorichard/anirelay/internal/models"
	"github.com/alvarorichard/anirelay/internal/provider"
	"github.com/alvarorichard/anirelay/internal/proxy"
	"github.com/alvarorichard/anirelay/internal/stream"
)

// mockFetcher implements provider.SourceFetcher and provider.ServerLister
// with one source and two tracks per fetch.
type mockFetcher struct{}

func (mockFetcher) FetchSources(_ context.Context, episodeID, server string, category provider.Category) (*provider.RawSource, error) {
	return &provider.RawSource{
		Sources: []provider.RawVideo{{URL: "https://cdn.example/" + server + "/" + string(category) + ".m3u8"}},
		Tracks: []provider.RawTrack{
			{URL: "https://cdn.example/en.vtt", Label: "English"},
			{URL: "https://cdn.example/thumbs.vtt", Label: "thumbnails"},
		},
	}, nil
}

func (mockFetcher) AvailableServers(_ context.Context, episodeID string) ([]string, error) {
	return []string{"hd-1", "hd-2"}, nil
}

func newTestServer(policy provider.DubPolicy) *Server {
	adapter := provider.NewAdapter(mockFetcher{}, policy)
	aggregator := stream.NewAggregator(adapter)
	proxyHandler := proxy.NewHandler(proxy.HandlerOptions{Client: http.DefaultClient})
	return New(config.Config{Port: 5000}, aggregator, proxyHandler, mockFetcher{})
}

func do(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestEpisodeStream_EndToEnd(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(provider.DubFetch), "/api/stream?id=anime-1::ep=2&server=hd-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Sub     struct {
			VideoURL *string                 `json:"videoUrl"`
			Tracks   []models.TrackReference `json:"tracks"`
		} `json:"sub"`
		Dub  json.RawMessage `json:"dub"`
		Note string          `json:"note"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, models.NoteLoaded, resp.Note)
	require.NotNil(t, resp.Sub.VideoURL)
	assert.Equal(t, "https://cdn.example/hd-1/sub.m3u8", *resp.Sub.VideoURL)

	require.Len(t, resp.Sub.Tracks, 2)
	assert.Equal(t, models.KindCaptions, resp.Sub.Tracks[0].Kind)
	assert.Equal(t, "English", resp.Sub.Tracks[0].Label)
	assert.Equal(t, models.KindThumbnails, resp.Sub.Tracks[1].Kind)

	assert.NotEqual(t, "{}", string(resp.Dub), "dub policy fetch yields a populated dub")
}

func TestEpisodeStream_DubNoneYieldsEmptyObject(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(provider.DubNone), "/api/stream?id=anime-1::ep=2&server=hd-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.JSONEq(t, `{}`, string(resp["dub"]))
}

func TestEpisodeStream_MissingID(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(provider.DubFetch), "/api/stream")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestMultiServerEpisode(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(provider.DubFetch), "/api/stream/tv/anime-1/ep/2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp multiServerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "tv", resp.ContentType)
	assert.Equal(t, "anime-1", resp.ContentID)
	assert.Equal(t, "2", resp.Episode)

	require.Len(t, resp.Servers, 3)
	for i, bundle := range resp.Servers {
		assert.Equal(t, models.CandidateServers[i], bundle.Server)
		assert.Equal(t, "https://cdn.example/en.vtt", bundle.Captions["English"])
		assert.NotContains(t, bundle.Captions, "thumbnails")
	}
}

func TestMultiServerMovie(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(provider.DubFetch), "/api/stream/movie/movie-9")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp multiServerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Episode)
	require.Len(t, resp.Servers, 3)
}

func TestServerList(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(provider.DubFetch), "/api/servers?id=anime-1::ep=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp serverListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"hd-1", "hd-2"}, resp.Servers)
}

func TestServerList_MissingID(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(provider.DubFetch), "/api/servers")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(provider.DubFetch), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Alive)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestEmbed_InjectsEpisodeID(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(provider.DubFetch), "/embed/anime-1::ep=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `data-episode-id="anime-1::ep=2"`)
}

func TestEmbed_WithoutID(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(provider.DubFetch), "/embed")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-episode-id=""`)
}

func TestCORSHeaderOnEveryRoute(t *testing.T) {
	t.Parallel()

	srv := newTestServer(provider.DubFetch)
	for _, path := range []string{"/health", "/api/stream?id=x", "/embed"} {
		rec := do(t, srv, path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), path)
	}
}
