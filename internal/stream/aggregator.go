// Package stream aggregates provider fetches into the responses the player
// client renders. Routine provider failures become data here, never errors.
package stream

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/mo"

	"github.com/alvarorichard/anirelay/internal/models"
	"github.com/alvarorichard/anirelay/internal/provider"
	"github.com/alvarorichard/anirelay/internal/retry"
	"github.com/alvarorichard/anirelay/internal/util"
)

// ErrMissingContent is returned when a multi-server request lacks required
// identifiers. It is the only error the aggregator surfaces, and it is a
// caller mistake, not a provider failure.
var ErrMissingContent = errors.New("content type and content id are required")

// Retry budgets. Sub is the stream the client actually needs; dub and
// multi-server probes are best-effort.
var (
	subRetry   = retry.Options{Attempts: 3, BaseDelay: time.Second}
	dubRetry   = retry.Options{Attempts: 2, BaseDelay: 500 * time.Millisecond}
	probeRetry = retry.Options{Attempts: 2, BaseDelay: 500 * time.Millisecond}
)

// Aggregator orchestrates the provider adapter across servers and categories.
// It is built once at startup and read-only afterwards.
type Aggregator struct {
	adapter *provider.Adapter
}

// NewAggregator builds an Aggregator.
func NewAggregator(adapter *provider.Adapter) *Aggregator {
	return &Aggregator{adapter: adapter}
}

// GetEpisodeStreams fetches sub and dub streams for one episode on one
// server. It is total: every provider failure, including exhausted retries,
// is absorbed into a null-videoUrl result plus the note field.
func (g *Aggregator) GetEpisodeStreams(ctx context.Context, episodeID, server string) models.AggregatedResponse {
	server = strings.ToLower(strings.TrimSpace(server))
	if server == "" {
		server = models.DefaultServer
	}

	sub, err := g.adapter.FetchStream(ctx, episodeID, server, provider.CategorySub, subRetry)
	if err != nil {
		util.Warn("sub stream unavailable", "id", episodeID, "server", server, "status", provider.StatusOf(err), "err", err)
		sub = models.StreamResult{Server: server}
	}

	dub := mo.None[models.StreamResult]()
	if g.adapter.DubPolicy() == provider.DubFetch {
		if d, err := g.adapter.FetchStream(ctx, episodeID, server, provider.CategoryDub, dubRetry); err == nil {
			dub = mo.Some(d)
		} else {
			util.Debug("dub stream unavailable", "id", episodeID, "server", server, "err", err)
		}
	}

	note := models.NoteUnavailable
	if sub.Available() {
		note = models.NoteLoaded
	}

	return models.AggregatedResponse{
		Success: true,
		Sub:     sub,
		Dub:     dub,
		Note:    note,
	}
}

// GetMultiServerStreams probes every candidate server for sub and dub
// streams. Servers are probed concurrently but the returned bundles always
// follow the fixed candidate order; one server failing never prevents the
// next from being evaluated.
func (g *Aggregator) GetMultiServerStreams(ctx context.Context, contentType, contentID, episode string) ([]models.ServerBundle, error) {
	if strings.TrimSpace(contentType) == "" || strings.TrimSpace(contentID) == "" {
		return nil, ErrMissingContent
	}

	episodeID := contentID
	if episode != "" {
		episodeID = contentID + "?ep=" + episode
	}

	bundles := make([]models.ServerBundle, len(models.CandidateServers))
	var wg sync.WaitGroup
	for i, server := range models.CandidateServers {
		wg.Add(1)
		go func(i int, server string) {
			defer wg.Done()
			bundles[i] = g.probeServer(ctx, episodeID, server)
		}(i, server)
	}
	wg.Wait()

	return bundles, nil
}

// probeServer fetches both categories from one server, absorbing failures
// per category.
func (g *Aggregator) probeServer(ctx context.Context, episodeID, server string) models.ServerBundle {
	bundle := models.ServerBundle{
		Server:   server,
		Captions: make(map[string]string),
	}

	if sub, err := g.adapter.FetchStream(ctx, episodeID, server, provider.CategorySub, probeRetry); err == nil {
		bundle.Sub = &sub
		collectCaptions(bundle.Captions, sub.Tracks)
	} else {
		util.Debug("server probe failed", "server", server, "category", "sub", "err", err)
	}

	if g.adapter.DubPolicy() == provider.DubFetch {
		if dub, err := g.adapter.FetchStream(ctx, episodeID, server, provider.CategoryDub, probeRetry); err == nil {
			bundle.Dub = &dub
			collectCaptions(bundle.Captions, dub.Tracks)
		} else {
			util.Debug("server probe failed", "server", server, "category", "dub", "err", err)
		}
	}

	return bundle
}

// collectCaptions flattens tracks into the label -> url captions map,
// skipping thumbnail tracks. Duplicate labels overwrite.
func collectCaptions(captions map[string]string, tracks []models.TrackReference) {
	for _, track := range tracks {
		if track.Kind == models.KindThumbnails {
			continue
		}
		captions[track.Label] = track.URL
	}
}
