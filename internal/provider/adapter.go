package provider

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/alvarorichard/anirelay/internal/models"
	"github.com/alvarorichard/anirelay/internal/retry"
)

// DubPolicy names how a deployment treats the dub category. Some upstreams
// serve dub as a second category fetch; others have no dub feed at all. The
// choice is explicit configuration, never inferred.
type DubPolicy string

const (
	// DubFetch probes the upstream for a dub stream with a lighter retry
	// budget.
	DubFetch DubPolicy = "fetch"
	// DubNone never attempts dub; the response carries an empty dub object.
	DubNone DubPolicy = "none"
)

// ParseDubPolicy maps a config string onto a DubPolicy, defaulting to
// DubFetch.
func ParseDubPolicy(s string) DubPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(DubNone)) {
		return DubNone
	}
	return DubFetch
}

// defaultLanguage is the label that marks a track as the default display
// language for this deployment.
const defaultLanguage = "English"

// Adapter turns upstream fetches into canonical StreamResults. It propagates
// upstream failures; absorbing them into "not available" is the aggregator's
// call.
type Adapter struct {
	fetcher   SourceFetcher
	dubPolicy DubPolicy
}

// NewAdapter builds an Adapter around a fetcher.
func NewAdapter(fetcher SourceFetcher, policy DubPolicy) *Adapter {
	return &Adapter{fetcher: fetcher, dubPolicy: policy}
}

// DubPolicy reports the configured dub handling.
func (a *Adapter) DubPolicy() DubPolicy {
	return a.dubPolicy
}

// NormalizeEpisodeID rewrites the "::ep=" surface form into the canonical
// "?ep=" form the upstream accepts. Already-canonical ids pass through.
func NormalizeEpisodeID(id string) string {
	return strings.Replace(id, "::", "?", 1)
}

// FetchStream fetches one (episode, server, category) triple through the
// backoff executor and maps the result into a StreamResult.
func (a *Adapter) FetchStream(ctx context.Context, episodeID, server string, category Category, opts retry.Options) (models.StreamResult, error) {
	id := NormalizeEpisodeID(episodeID)
	if opts.Op == "" {
		opts.Op = "fetch " + string(category) + " sources"
	}

	raw, err := retry.Do(ctx, func(ctx context.Context) (*RawSource, error) {
		return a.fetcher.FetchSources(ctx, id, server, category)
	}, opts)
	if err != nil {
		return models.StreamResult{Server: server}, err
	}

	return mapRawSource(raw, server), nil
}

func mapRawSource(raw *RawSource, server string) models.StreamResult {
	result := models.StreamResult{
		Tracks: lo.Map(raw.Tracks, func(t RawTrack, _ int) models.TrackReference {
			return mapTrack(t)
		}),
		Server: server,
	}

	if len(raw.Sources) > 0 && raw.Sources[0].URL != "" {
		url := raw.Sources[0].URL
		result.VideoURL = &url
	}
	if raw.Intro != nil {
		result.Intro = models.SkipWindow{Start: raw.Intro.Start, End: raw.Intro.End}
	}
	if raw.Outro != nil {
		result.Outro = models.SkipWindow{Start: raw.Outro.Start, End: raw.Outro.End}
	}

	return result
}

func mapTrack(t RawTrack) models.TrackReference {
	label := t.Label
	if label == "" {
		label = "Unknown"
	}

	kind := models.KindCaptions
	if IsThumbnailLabel(label) {
		kind = models.KindThumbnails
	}

	return models.TrackReference{
		URL:     t.URL,
		Label:   label,
		Kind:    kind,
		Default: strings.EqualFold(label, defaultLanguage),
	}
}

// IsThumbnailLabel reports whether a track label names a thumbnails track.
func IsThumbnailLabel(label string) bool {
	return strings.Contains(strings.ToLower(label), "thumbnail")
}
