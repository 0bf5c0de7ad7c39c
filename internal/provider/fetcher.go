// Package provider talks to the upstream source-scraping service and maps its
// responses into the canonical stream model. This is the only package that
// knows the upstream field shapes.
package provider

import "context"

// Category selects the audio track family of a fetch.
type Category string

const (
	CategorySub Category = "sub"
	CategoryDub Category = "dub"
)

// RawVideo is one playable source as the upstream reports it.
type RawVideo struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// RawTrack is one subtitle/caption/thumbnail entry as the upstream reports it.
type RawTrack struct {
	URL     string `json:"file"`
	Label   string `json:"label"`
	Default bool   `json:"default,omitempty"`
}

// RawWindow is an upstream intro/outro interval in seconds.
type RawWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// RawSource is the upstream payload for one (episode, server, category)
// triple. It is the single translation point between upstream field shapes
// and the rest of the relay.
type RawSource struct {
	Sources []RawVideo `json:"sources"`
	Tracks  []RawTrack `json:"tracks"`
	Intro   *RawWindow `json:"intro,omitempty"`
	Outro   *RawWindow `json:"outro,omitempty"`
}

// SourceFetcher is the upstream scraping capability: given an episode id in
// canonical "?ep=" form, a server name and a category, it returns the raw
// sources or fails with *Error.
type SourceFetcher interface {
	FetchSources(ctx context.Context, episodeID, server string, category Category) (*RawSource, error)
}

// ServerLister reports which servers the upstream offers for an episode.
type ServerLister interface {
	AvailableServers(ctx context.Context, episodeID string) ([]string, error)
}
