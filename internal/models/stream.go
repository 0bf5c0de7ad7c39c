// Package models defines the canonical stream data shapes served to the
// player client. Everything here is request-scoped and immutable once built.
package models

import (
	"encoding/json"

	"github.com/samber/mo"
)

// Track kinds understood by the player.
const (
	KindCaptions   = "captions"
	KindThumbnails = "thumbnails"
)

// Notes attached to an AggregatedResponse.
const (
	NoteLoaded      = "Stream loaded"
	NoteUnavailable = "Stream not available - try another server"
)

// DefaultServer is used when a request names no server.
const DefaultServer = "hd-2"

// CandidateServers is the fixed multi-server probe order. Bundles are always
// emitted in this order regardless of which servers responded.
var CandidateServers = []string{"hd-1", "hd-2", "hd-3"}

// SkipWindow is an intro/outro interval in seconds. The zero value means
// "unknown", not a zero-length window.
type SkipWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsZero reports whether the window is the unknown sentinel.
func (w SkipWindow) IsZero() bool {
	return w.Start == 0 && w.End == 0
}

// TrackReference is a subtitle, caption or thumbnail asset attached to a
// stream.
type TrackReference struct {
	URL     string `json:"file"`
	Label   string `json:"label"`
	Kind    string `json:"kind"`
	Default bool   `json:"default,omitempty"`
}

// StreamResult is the per-server, per-category outcome. A nil VideoURL means
// the category had no playable source on that server.
type StreamResult struct {
	VideoURL *string          `json:"videoUrl"`
	Tracks   []TrackReference `json:"tracks"`
	Intro    SkipWindow       `json:"intro"`
	Outro    SkipWindow       `json:"outro"`
	Server   string           `json:"server"`
}

// Available reports whether the result carries a playable source.
func (r StreamResult) Available() bool {
	return r.VideoURL != nil && *r.VideoURL != ""
}

// AggregatedResponse is the single-episode payload. Dub is optional: None
// means dub was never attempted or the deployment has no dub feed, which the
// client sees as an empty object, distinct from an attempted-and-failed
// result with a null videoUrl.
type AggregatedResponse struct {
	Success bool                    `json:"success"`
	Sub     StreamResult            `json:"sub"`
	Dub     mo.Option[StreamResult] `json:"dub"`
	Note    string                  `json:"note"`
}

// MarshalJSON renders a None dub as {} rather than null.
func (a AggregatedResponse) MarshalJSON() ([]byte, error) {
	dub := json.RawMessage("{}")
	if result, ok := a.Dub.Get(); ok {
		raw, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		dub = raw
	}
	return json.Marshal(struct {
		Success bool            `json:"success"`
		Sub     StreamResult    `json:"sub"`
		Dub     json.RawMessage `json:"dub"`
		Note    string          `json:"note"`
	}{
		Success: a.Success,
		Sub:     a.Sub,
		Dub:     dub,
		Note:    a.Note,
	})
}

// ServerBundle is one multi-server entry: the sub/dub results obtained from a
// single candidate server plus a flat captions map (label -> url, thumbnail
// tracks excluded, duplicate labels overwrite).
type ServerBundle struct {
	Server   string            `json:"server"`
	Sub      *StreamResult     `json:"sub,omitempty"`
	Dub      *StreamResult     `json:"dub,omitempty"`
	Captions map[string]string `json:"captions"`
}
