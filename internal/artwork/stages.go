package artwork

import (
	"context"

	"tonearm/internal/providers/dbpedia"
	"tonearm/internal/providers/lastfm"
	"tonearm/internal/providers/wikipedia"
)

// LastFmStage tries the album's own Last.fm art first, then the art
// attached to the track lookup.
type LastFmStage struct {
	Client *lastfm.Client
}

func (s *LastFmStage) Name() string { return "lastfm" }

func (s *LastFmStage) CoverURL(ctx context.Context, artist, album, title string) (string, error) {
	url, err := s.Client.AlbumImage(ctx, artist, album)
	if err != nil {
		return "", err
	}
	if url != "" {
		return url, nil
	}
	if title == "" {
		return "", nil
	}
	return s.Client.TrackImage(ctx, artist, title)
}

// WikipediaStage searches for the album's article and picks the most
// cover-like image on it.
type WikipediaStage struct {
	Client *wikipedia.Client
}

func (s *WikipediaStage) Name() string { return "wikipedia" }

func (s *WikipediaStage) CoverURL(ctx context.Context, artist, album, _ string) (string, error) {
	return s.Client.FindCoverImage(ctx, artist, album)
}

// DBpediaStage asks DBpedia for the album's cover property and
// resolves the file name to a URL through the MediaWiki image API.
type DBpediaStage struct {
	Client   *dbpedia.Client
	Resolver *wikipedia.Client
}

func (s *DBpediaStage) Name() string { return "dbpedia" }

func (s *DBpediaStage) CoverURL(ctx context.Context, artist, album, _ string) (string, error) {
	fileName, err := s.Client.CoverFileName(ctx, artist, album)
	if err != nil {
		return "", err
	}
	if fileName == "" {
		return "", nil
	}
	return s.Resolver.ImageURL(ctx, fileName)
}
