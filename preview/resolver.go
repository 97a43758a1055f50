package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"groovr/config"
)

// ErrMissingInput is returned before any network call when the track or
// artist name is empty.
var ErrMissingInput = errors.New("track and artist are required")

type deezerTrack struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
	Artist  struct {
		Name string `json:"name"`
	} `json:"artist"`
}

type deezerSearchResponse struct {
	Data []deezerTrack `json:"data"`
}

type Resolver struct {
	httpClient *http.Client
	baseURL    string
}

func NewResolver() *Resolver {
	timeout := 10 * time.Second
	baseURL := "https://api.deezer.com"
	if config.Config != nil {
		timeout = time.Duration(config.Config.Preview.TimeoutSeconds) * time.Second
		baseURL = config.Config.Preview.DeezerBaseURL
	}
	return &Resolver{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Resolve finds a short playable clip for a track via Deezer's public
// search. An empty URL with a nil error means no clip exists; transport
// failures are logged and degrade to the same empty result, because a
// missing preview is an expected outcome the caller decides how to treat.
func (r *Resolver) Resolve(ctx context.Context, trackName, artistName string) (string, error) {
	if trackName == "" || artistName == "" {
		return "", ErrMissingInput
	}

	span := sentry.StartSpan(ctx, "preview.resolve")
	span.Description = "Resolve preview clip via Deezer search"
	span.SetTag("track", trackName)
	span.SetTag("artist", artistName)
	defer span.Finish()

	query := fmt.Sprintf("track:%q artist:%q", trackName, artistName)
	searchURL := fmt.Sprintf("%s/search?q=%s", r.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		log.Errorf("building Deezer request failed: %v", err)
		return "", nil
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		// Context cancellation must propagate; a superseded request should
		// not masquerade as "no preview found".
		if ctx.Err() != nil {
			span.Status = sentry.SpanStatusCanceled
			return "", ctx.Err()
		}
		span.Status = sentry.SpanStatusInternalError
		sentry.CaptureException(err)
		log.Errorf("Deezer search failed for %q by %q: %v", trackName, artistName, err)
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		span.Status = sentry.SpanStatusInternalError
		log.Warnf("Deezer search returned status %d for %q by %q", resp.StatusCode, trackName, artistName)
		return "", nil
	}

	var result deezerSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		span.Status = sentry.SpanStatusInternalError
		sentry.CaptureException(err)
		log.Errorf("decoding Deezer response failed: %v", err)
		return "", nil
	}

	if len(result.Data) == 0 || result.Data[0].Preview == "" {
		span.Status = sentry.SpanStatusNotFound
		log.Debugf("no Deezer preview for %q by %q", trackName, artistName)
		return "", nil
	}

	span.Status = sentry.SpanStatusOK
	log.Tracef("resolved preview for %q by %q", trackName, artistName)
	return result.Data[0].Preview, nil
}
