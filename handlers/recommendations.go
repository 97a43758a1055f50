package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	sentry "github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"groovr/config"
	"groovr/models"
	"groovr/recommend"
	"groovr/sentryhelper"
	"groovr/spotify"
)

// Recommendations runs the full pipeline for one seed track: resolve a
// preview clip, classify its genre, search the catalog and strip the
// user's own seeds from the results.
func (m *Manager) Recommendations(c *gin.Context) {
	trackID := spotify.ParseTrackURI(c.Param("trackId"))
	if trackID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Track id is required"})
		return
	}

	// An absent body is fine; the pipeline resolves its own preview then.
	var body models.RecommendationRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	catalog, ok := m.catalog(c)
	if !ok {
		return
	}

	ctx, transaction := sentryhelper.StartPipelineTransaction(c.Request.Context(), trackID)
	defer transaction.Finish()

	seed, err := catalog.GetTrack(ctx, trackID)
	if err != nil {
		log.Errorf("fetching seed track %s: %v", trackID, err)
		sentryhelper.CaptureException(ctx, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recommendations", "details": err.Error()})
		return
	}

	orch := recommend.NewOrchestrator(m.Previews, m.Classifier, catalog, recommend.Options{
		Limit:     config.Config.Spotify.SearchLimit,
		MaxOffset: config.Config.Options.MaxSearchOffset,
	})

	result, err := orch.Recommend(ctx, recommend.Request{
		Seed:       *seed,
		PreviewURL: body.PreviewURL,
		SeedTracks: body.SeedTracks,
	})
	if err != nil {
		m.writePipelineError(c, ctx, err)
		return
	}

	sentryhelper.AddBreadcrumb(ctx, &sentry.Breadcrumb{
		Category: "recommendation",
		Message:  "pipeline completed",
		Data: map[string]interface{}{
			"genre":  result.PrimaryGenre,
			"tracks": len(result.Tracks),
		},
	})
	c.JSON(http.StatusOK, result)
}

// writePipelineError maps the pipeline's typed failures onto the HTTP
// contract: user mistakes are 400s, empty outcomes are 404s with a
// human-readable message, and everything upstream is a 500.
func (m *Manager) writePipelineError(c *gin.Context, ctx context.Context, err error) {
	var perr *recommend.PipelineError
	if !errors.As(err, &perr) {
		sentryhelper.CaptureException(ctx, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recommendations", "details": err.Error()})
		return
	}

	switch perr.Kind {
	case recommend.KindInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": perr.Message})
	case recommend.KindPreviewUnavailable:
		c.JSON(http.StatusNotFound, gin.H{"message": "No audio preview available for this track. Try a different song."})
	case recommend.KindNoGenrePredicted:
		c.JSON(http.StatusNotFound, gin.H{"message": "No genres predicted from the audio."})
	case recommend.KindNoCandidatesFound:
		c.JSON(http.StatusNotFound, gin.H{
			"message": "No recommendations found for the predicted genre.",
			"genre":   perr.Genre,
		})
	default:
		// classification_unavailable and upstream_service_error both mean a
		// dependency is down, which operators need to hear about.
		log.Errorf("recommendation pipeline failed: %v", perr)
		sentryhelper.CaptureException(ctx, perr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recommendations", "details": perr.Error()})
	}
}
