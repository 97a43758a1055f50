package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"groovr/config"
)

type predictRequest struct {
	URL string `json:"url"`
}

type predictResponse struct {
	Predictions []string `json:"predictions"`
}

// Client talks to the external genre-classification service. The service
// downloads the clip, extracts features, and returns genre labels ordered
// by descending confidence.
type Client struct {
	httpClient *http.Client
	url        string
}

func New() *Client {
	timeout := 30 * time.Second
	endpoint := "http://127.0.0.1:5000/predict"
	if config.Config != nil {
		timeout = time.Duration(config.Config.Classifier.TimeoutSeconds) * time.Second
		endpoint = config.Config.Classifier.URL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        endpoint,
	}
}

// Classify submits an audio URL and returns the predicted labels in the
// order the service supplied them. An empty slice is a valid result and is
// not an error at this layer. Ordering is never re-sorted here.
func (c *Client) Classify(ctx context.Context, audioURL string) ([]string, error) {
	span := sentry.StartSpan(ctx, "classifier.classify")
	span.Description = "Classify audio clip genre"
	defer span.Finish()

	body, err := json.Marshal(predictRequest{URL: audioURL})
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		sentry.CaptureException(err)
		log.Errorf("classifier request failed: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		span.Status = sentry.SpanStatusInternalError
		err := fmt.Errorf("classifier returned status %d", resp.StatusCode)
		sentry.CaptureException(err)
		return nil, err
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		span.Status = sentry.SpanStatusInternalError
		sentry.CaptureException(err)
		return nil, fmt.Errorf("decoding classifier response: %w", err)
	}

	span.Status = sentry.SpanStatusOK
	span.SetData("predictions_count", len(result.Predictions))
	log.Debugf("classifier predicted %v", result.Predictions)
	return result.Predictions, nil
}
