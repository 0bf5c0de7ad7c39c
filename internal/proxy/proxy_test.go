package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *Handler {
	return NewHandler(HandlerOptions{
		Client:    http.DefaultClient,
		Referer:   "https://embed.example/",
		UserAgent: "test-agent",
	})
}

func doProxy(t *testing.T, handler *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/proxy?url="+url.QueryEscape(target), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestProxy_MissingURL(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/proxy", nil)
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProxy_PlaylistRewritten(t *testing.T) {
	t.Parallel()

	manifest := "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=400000\n200p/index.m3u8\n"
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://embed.example/", r.Header.Get("Referer"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		_, _ = w.Write([]byte(manifest))
	}))
	defer upstream.Close()

	target := upstream.URL + "/path/master.m3u8"
	rec := doProxy(t, newTestHandler(), target)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, PlaylistContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	expectedChild := Prefix + url.QueryEscape(upstream.URL+"/path/200p/index.m3u8")
	assert.Contains(t, rec.Body.String(), expectedChild)
}

func TestProxy_PlaylistByContentTypeAlone(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/x-mpegURL")
		_, _ = w.Write([]byte("#EXTM3U\nseg-1.ts\n"))
	}))
	defer upstream.Close()

	// Target has no .m3u8 extension; classification rides on content type.
	rec := doProxy(t, newTestHandler(), upstream.URL+"/stream")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, PlaylistContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), Prefix)
}

func TestProxy_BinaryPassthrough(t *testing.T) {
	t.Parallel()

	payload := []byte{0x47, 0x40, 0x11, 0x10, 0x00}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/mp2t")
		_, _ = w.Write(payload)
	}))
	defer upstream.Close()

	rec := doProxy(t, newTestHandler(), upstream.URL+"/seg-1.ts")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp2t", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, body, "binary body passes through unmodified")
}

func TestProxy_FetchFailure(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	upstream.Close() // connection refused from here on

	rec := doProxy(t, newTestHandler(), upstream.URL+"/master.m3u8")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
