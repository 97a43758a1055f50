package recommend

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"groovr/models"
)

// CatalogSearcher is the slice of the catalog API the strategy runner
// needs: one search call returning a single page of tracks.
type CatalogSearcher interface {
	SearchTracks(ctx context.Context, query string, limit, offset int) ([]models.Track, error)
}

// searchStrategies returns the query formulations to try for a genre, in
// order, each looser than the last. The year-range fallback biases toward
// the modern era where Spotify's genre tagging is sparse for some labels.
func searchStrategies(genre string) []string {
	return []string{
		fmt.Sprintf("genre:%s", genre),
		genre,
		fmt.Sprintf("genre:%s year:2000-2024", genre),
	}
}

// runStrategies executes the strategies in order and stops at the first
// one yielding results. A transport failure aborts the whole run; it does
// not fall through to the next strategy. All strategies empty is not an
// error here, the orchestrator decides what that means.
func runStrategies(ctx context.Context, catalog CatalogSearcher, genre string, limit, offset int) ([]models.Track, error) {
	logger := log.WithFields(log.Fields{"module": "recommend", "genre": genre})

	for i, query := range searchStrategies(genre) {
		tracks, err := catalog.SearchTracks(ctx, query, limit, offset)
		if err != nil {
			logger.Errorf("search strategy %d (%q) failed: %v", i+1, query, err)
			return nil, err
		}
		if len(tracks) > 0 {
			logger.Debugf("search strategy %d (%q) returned %d tracks", i+1, query, len(tracks))
			return tracks, nil
		}
		logger.Tracef("search strategy %d (%q) returned nothing, trying next", i+1, query)
	}

	return nil, nil
}
