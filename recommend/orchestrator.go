package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	log "github.com/sirupsen/logrus"

	"groovr/models"
)

// PreviewResolver finds a short playable clip for a track. An empty URL
// with a nil error means the catalog simply has no preview.
type PreviewResolver interface {
	Resolve(ctx context.Context, trackName, artistName string) (string, error)
}

// GenreClassifier submits an audio URL and returns predicted genre labels
// ordered by descending confidence. An empty slice is a valid outcome.
type GenreClassifier interface {
	Classify(ctx context.Context, audioURL string) ([]string, error)
}

// Request is one recommendation invocation. PreviewURL is optional; when
// empty the orchestrator resolves one from the seed's name and artist.
type Request struct {
	Seed       models.Track
	PreviewURL string
	SeedTracks []models.SeedSong
}

type Options struct {
	// Limit is the search page size (one page per strategy, no paging).
	Limit int
	// MaxOffset bounds the randomized search offset that varies results
	// across repeated calls with the same genre. Zero disables the jitter.
	MaxOffset int
	// Rand overrides the offset source; tests pin it for determinism.
	Rand func(n int) int
}

// Orchestrator runs the linear pipeline:
// resolve preview -> classify -> normalize -> search -> exclude.
// Each stage is a hard gate; failure short-circuits with a typed error.
// It keeps no state between calls, so concurrent requests are independent
// and cancellation rides entirely on the request context.
type Orchestrator struct {
	previews   PreviewResolver
	classifier GenreClassifier
	catalog    CatalogSearcher
	opts       Options
}

func NewOrchestrator(previews PreviewResolver, classifier GenreClassifier, catalog CatalogSearcher, opts Options) *Orchestrator {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Rand == nil {
		opts.Rand = rand.Intn
	}
	return &Orchestrator{
		previews:   previews,
		classifier: classifier,
		catalog:    catalog,
		opts:       opts,
	}
}

func (o *Orchestrator) Recommend(ctx context.Context, req Request) (*models.RecommendationResult, error) {
	logger := log.WithFields(log.Fields{
		"module": "recommend",
		"seed":   req.Seed.ID,
	})

	if req.Seed.ID == "" {
		return nil, newError(KindInvalidInput, "seed track id is required", nil)
	}
	if req.PreviewURL == "" && (req.Seed.Name == "" || req.Seed.Artist == "") {
		return nil, newError(KindInvalidInput, "track name and artist are required to resolve a preview", nil)
	}

	previewURL := req.PreviewURL
	if previewURL == "" {
		resolved, err := o.previews.Resolve(ctx, req.Seed.Name, req.Seed.Artist)
		if err != nil {
			return nil, newError(KindInvalidInput, "preview lookup rejected the seed track", err)
		}
		previewURL = resolved
	}
	// The resolver treats "no clip" as a non-error, but this pipeline
	// cannot classify without audio, so absence is fatal here.
	if previewURL == "" {
		logger.Infof("no preview clip found for %q by %q", req.Seed.Name, req.Seed.Artist)
		return nil, newError(KindPreviewUnavailable, "no audio preview available for this track", nil)
	}

	predictions, err := o.classifier.Classify(ctx, previewURL)
	if err != nil {
		return nil, newError(KindClassificationUnavailable, "genre classifier is unavailable", err)
	}
	if len(predictions) == 0 {
		return nil, newError(KindNoGenrePredicted, "no genres predicted from the audio", nil)
	}

	// Only the top-ranked label is normalized and searched; the rest are
	// kept raw for display.
	primaryGenre := Normalize(predictions[0])
	logger.Debugf("classifier predicted %v, searching as %q", predictions, primaryGenre)

	var offset int
	if o.opts.MaxOffset > 0 {
		offset = o.opts.Rand(o.opts.MaxOffset)
	}

	candidates, err := runStrategies(ctx, o.catalog, primaryGenre, o.opts.Limit, offset)
	if err != nil {
		return nil, newError(KindUpstreamServiceError, "catalog search failed", err)
	}
	if len(candidates) == 0 {
		return nil, &PipelineError{
			Kind:    KindNoCandidatesFound,
			Message: "no tracks found for the predicted genre",
			Genre:   primaryGenre,
		}
	}

	tracks := Exclude(candidates, ExclusionSet(req.Seed.ID, req.SeedTracks))
	if len(tracks) == 0 {
		return nil, &PipelineError{
			Kind:    KindNoCandidatesFound,
			Message: "every candidate was already in the seed set",
			Genre:   primaryGenre,
		}
	}

	logger.Debugf("returning %d candidates (%d excluded as seeds)", len(tracks), len(candidates)-len(tracks))
	return &models.RecommendationResult{
		Message:      fmt.Sprintf("Recommendations based on predicted genres: %s", strings.Join(predictions, ", ")),
		PrimaryGenre: primaryGenre,
		AllGenres:    predictions,
		Tracks:       tracks,
	}, nil
}
