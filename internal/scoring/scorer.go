// Package scoring ranks album candidates gathered from the metadata
// providers and picks the attribution a track should be filed under.
package scoring

import (
	"sort"

	"tonearm/internal/config"
	"tonearm/internal/providers"
	"tonearm/internal/textutil"
)

// Ranked pairs a candidate with its composite score.
type Ranked struct {
	Candidate providers.AlbumCandidate
	Score     float64
}

// Scorer applies the configured scoring policy to candidate lists.
type Scorer struct {
	policy config.Scoring
}

// New creates a Scorer with the given policy.
func New(policy config.Scoring) *Scorer {
	return &Scorer{policy: policy}
}

// Score computes the composite score for one candidate: the source's
// own confidence, boosted for official releases, weighted by release
// type so studio albums outrank singles and compilations rank last.
func (s *Scorer) Score(c providers.AlbumCandidate) float64 {
	score := c.Confidence
	if c.Official {
		score *= s.policy.OfficialBonus
	}
	return score * s.typeWeight(c.Type)
}

// Rank filters candidates whose artist does not plausibly match the
// track's artist, scores the rest, and sorts strictly by score, best
// first. A studio album within the policy epsilon of a non-album
// leader then takes the top spot; the tie-break applies only between
// the top two, keeping the sort a plain score ordering.
func (s *Scorer) Rank(artist string, candidates []providers.AlbumCandidate) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		if c.Album == "" {
			continue
		}
		if textutil.Similarity(artist, c.Artist) < s.policy.ArtistMatchThreshold {
			continue
		}
		ranked = append(ranked, Ranked{Candidate: c, Score: s.Score(c)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > 1 {
		top, next := ranked[0], ranked[1]
		if top.Candidate.Type != providers.ReleaseAlbum &&
			next.Candidate.Type == providers.ReleaseAlbum &&
			top.Score-next.Score <= s.policy.TieEpsilon {
			ranked[0], ranked[1] = next, top
		}
	}
	return ranked
}

// Best returns the winning candidate, or ok=false when no candidate
// survives the artist filter and the acceptance threshold.
func (s *Scorer) Best(artist string, candidates []providers.AlbumCandidate) (Ranked, bool) {
	ranked := s.Rank(artist, candidates)
	if len(ranked) == 0 || ranked[0].Score < s.policy.AcceptanceThreshold {
		return Ranked{}, false
	}
	return ranked[0], true
}

func (s *Scorer) typeWeight(t providers.ReleaseType) float64 {
	switch t {
	case providers.ReleaseAlbum:
		return s.policy.AlbumWeight
	case providers.ReleaseSingle:
		return s.policy.SingleWeight
	case providers.ReleaseCompilation:
		return s.policy.CompilationWeight
	default:
		return s.policy.OtherWeight
	}
}
