package providers

import (
	"context"
	"strings"
)

// Source identifies which external service produced a candidate.
type Source string

const (
	SourceMusicBrainz Source = "musicbrainz"
	SourceLastFm      Source = "lastfm"
)

// ReleaseType classifies an album candidate by release kind.
type ReleaseType string

const (
	ReleaseAlbum       ReleaseType = "album"
	ReleaseSingle      ReleaseType = "single"
	ReleaseCompilation ReleaseType = "compilation"
	ReleaseOther       ReleaseType = "other"
)

// ParseReleaseType maps a provider's primary-type string onto the
// internal classification. Unrecognized values fall through to Other.
func ParseReleaseType(s string) ReleaseType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "album":
		return ReleaseAlbum
	case "single":
		return ReleaseSingle
	case "compilation":
		return ReleaseCompilation
	default:
		return ReleaseOther
	}
}

// AlbumCandidate is one possible album attribution for a track, as
// reported by a single source. Confidence is the source's own belief
// in the match, normalized to [0, 1]; the scorer combines it with
// release-type policy to produce the final ranking.
type AlbumCandidate struct {
	Album      string
	Artist     string
	Source     Source
	Confidence float64
	Official   bool
	Type       ReleaseType
}

// Resolver resolves album candidates for a track. Implementations
// return an empty slice, not an error, when the service simply has no
// match; errors signal the service itself was unreachable or broken.
type Resolver interface {
	Name() Source
	ResolveAlbum(ctx context.Context, artist, title string) ([]AlbumCandidate, error)
}
