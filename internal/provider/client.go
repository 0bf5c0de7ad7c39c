package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/alvarorichard/anirelay/internal/util"
)

// Client is the default HTTP SourceFetcher. The upstream rejects requests
// without a recognized Referer/User-Agent pair, so every request is decorated
// with both. The client is built once at startup and holds no per-request
// state.
type Client struct {
	client    *http.Client
	baseURL   string
	referer   string
	userAgent string
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL   string
	Referer   string
	UserAgent string
}

// NewClient builds a Client on the shared pooled HTTP client.
func NewClient(opts ClientOptions) *Client {
	return &Client{
		client:    util.GetSharedClient(),
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		referer:   opts.Referer,
		userAgent: opts.UserAgent,
	}
}

func (c *Client) decorateRequest(req *http.Request) {
	req.Header.Set("Referer", c.referer)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
}

// sourcesResponse is the upstream envelope around a RawSource.
type sourcesResponse struct {
	Data RawSource `json:"data"`
}

// serversResponse is the upstream envelope for the server list: an HTML
// fragment, not JSON data.
type serversResponse struct {
	HTML string `json:"html"`
}

// FetchSources implements SourceFetcher against the upstream sources
// endpoint.
func (c *Client) FetchSources(ctx context.Context, episodeID, server string, category Category) (*RawSource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sources", nil)
	if err != nil {
		return nil, &Error{Op: "fetch sources", Err: errors.Wrap(err, "build request")}
	}

	q := req.URL.Query()
	q.Set("id", episodeID)
	q.Set("server", server)
	q.Set("category", string(category))
	req.URL.RawQuery = q.Encode()
	c.decorateRequest(req)

	util.Debug("fetching sources", "id", episodeID, "server", server, "category", category)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Op: "fetch sources", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Op: "fetch sources", Status: resp.StatusCode, Err: errors.Errorf("upstream returned %s", resp.Status)}
	}

	var payload sourcesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Op: "fetch sources", Err: errors.Wrap(err, "decode response")}
	}

	return &payload.Data, nil
}

// AvailableServers lists the server names the upstream offers for an episode.
// The upstream serves this as an HTML fragment of server items inside a JSON
// envelope.
func (c *Client) AvailableServers(ctx context.Context, episodeID string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/servers", nil)
	if err != nil {
		return nil, &Error{Op: "list servers", Err: errors.Wrap(err, "build request")}
	}

	q := req.URL.Query()
	q.Set("id", episodeID)
	req.URL.RawQuery = q.Encode()
	c.decorateRequest(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Op: "list servers", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Op: "list servers", Status: resp.StatusCode, Err: errors.Errorf("upstream returned %s", resp.Status)}
	}

	var payload serversResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Op: "list servers", Err: errors.Wrap(err, "decode response")}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload.HTML))
	if err != nil {
		return nil, &Error{Op: "list servers", Err: errors.Wrap(err, "parse server list")}
	}

	var servers []string
	doc.Find(".server-item").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(s.Text()))
		if name != "" {
			servers = append(servers, name)
		}
	})

	return servers, nil
}
