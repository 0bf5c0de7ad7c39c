// Package proxy fetches media on behalf of the player and rewrites HLS
// manifests so every child reference routes back through the proxy.
package proxy

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	// masterMarker tags variant entries in a master playlist.
	masterMarker = "#EXT-X-STREAM-INF"
	// Prefix is the proxied-reference form emitted for every child URL.
	Prefix = "/proxy?url="
	// PlaylistContentType is served for every rewritten manifest.
	PlaylistContentType = "application/vnd.apple.mpegurl"
)

// codecsAttr matches a CODECS attribute with its leading separator comma.
// Some embedded players choke on the codec strings upstream advertises, so
// the attribute is dropped outright in master playlists.
var codecsAttr = regexp.MustCompile(`,?CODECS="[^"]*"`)

// IsMaster reports whether the manifest is a master playlist. It must be
// decided over the whole content before per-line processing.
func IsMaster(content string) bool {
	return strings.Contains(content, masterMarker)
}

// BaseURL truncates a target URL after its final path separator, yielding the
// base that relative child references resolve against.
func BaseURL(target string) string {
	idx := strings.LastIndex(target, "/")
	if idx < 0 {
		return target
	}
	return target[:idx+1]
}

// Rewrite transforms raw m3u8 content so every child reference points back at
// the proxy endpoint. Comments and blank lines pass through; lines already in
// proxied form are left alone, so rewriting is idempotent. Pure text
// transform, no I/O.
func Rewrite(content, baseURL string) string {
	isMaster := IsMaster(content)
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)

		if isMaster && strings.Contains(line, `CODECS="`) {
			line = codecsAttr.ReplaceAllString(line, "")
		}

		if line == "" || strings.HasPrefix(line, "#") {
			lines[i] = line
			continue
		}

		if strings.HasPrefix(line, Prefix) {
			lines[i] = line
			continue
		}

		absolute := line
		if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
			absolute = baseURL + line
		}

		lines[i] = Prefix + url.QueryEscape(absolute)
	}

	return strings.Join(lines, "\n")
}
