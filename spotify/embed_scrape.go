package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// The Web API stopped returning preview_url for most tracks in late 2024.
// The public embed player page still carries the clip URL in its hydration
// payload, so we scrape it as a fallback.
type embedScraper struct {
	httpClient *http.Client
	baseURL    string
}

func newEmbedScraper() *embedScraper {
	return &embedScraper{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://open.spotify.com",
	}
}

func (s *embedScraper) previewURL(ctx context.Context, trackID string) (string, error) {
	url := fmt.Sprintf("%s/embed/track/%s", s.baseURL, trackID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	// Set realistic User-Agent to avoid blocks
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	log.Tracef("Fetching embed page: %s", url)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	return extractAudioPreview(doc)
}

// extractAudioPreview digs the clip URL out of the __NEXT_DATA__ hydration
// blob: props.pageProps.state.data.entity.audioPreview.url.
func extractAudioPreview(doc *goquery.Document) (string, error) {
	script := doc.Find("script#__NEXT_DATA__").First()
	if script.Length() == 0 {
		return "", errors.New("no __NEXT_DATA__ script found")
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
		return "", fmt.Errorf("failed to parse __NEXT_DATA__: %w", err)
	}

	entity := dig(data, "props", "pageProps", "state", "data", "entity")
	if entity == nil {
		return "", errors.New("no entity data in embed payload")
	}

	preview := dig(entity, "audioPreview")
	if preview == nil {
		return "", errors.New("entity has no audio preview")
	}

	url, _ := preview["url"].(string)
	if url == "" {
		return "", errors.New("audio preview has no url")
	}
	return url, nil
}

func dig(data map[string]interface{}, keys ...string) map[string]interface{} {
	current := data
	for _, key := range keys {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil
		}
		current = next
	}
	return current
}
