package config

import (
	"os"
	"strconv"
)

type ConfigStruct struct {
	Spotify    SpotifyConfig
	Classifier ClassifierConfig
	Preview    PreviewConfig
	Options    Options
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Market       string
	SearchLimit  int
}

type ClassifierConfig struct {
	URL            string
	TimeoutSeconds int
}

type PreviewConfig struct {
	DeezerBaseURL  string
	TimeoutSeconds int
	EmbedFallback  bool
}

type Options struct {
	Port            string
	DBPath          string
	SessionTTLHours int
	MaxSearchOffset int
}

var Config *ConfigStruct

func NewConfig() {
	config := &ConfigStruct{
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("SPOTIFY_REDIRECT_URI"),
			Market:       getMarket(),
			SearchLimit:  getSearchLimit(),
		},
		Classifier: ClassifierConfig{
			URL:            getClassifierURL(),
			TimeoutSeconds: getClassifierTimeout(),
		},
		Preview: PreviewConfig{
			DeezerBaseURL:  getDeezerBaseURL(),
			TimeoutSeconds: getPreviewTimeout(),
			EmbedFallback:  os.Getenv("PREVIEW_EMBED_FALLBACK") != "false",
		},
		Options: Options{
			Port:            os.Getenv("PORT"),
			DBPath:          os.Getenv("DB_PATH"),
			SessionTTLHours: getSessionTTL(),
			MaxSearchOffset: getMaxSearchOffset(),
		},
	}

	Config = config
}

func getMarket() string {
	market := os.Getenv("SPOTIFY_MARKET")
	if market == "" {
		return "US"
	}
	return market
}

func getSearchLimit() int {
	limitStr := os.Getenv("SPOTIFY_SEARCH_LIMIT")
	if limitStr == "" {
		return 50
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return 50
	}
	if limit > 50 {
		return 50 // Spotify API max per search page
	}
	return limit
}

func getClassifierURL() string {
	url := os.Getenv("CLASSIFIER_URL")
	if url == "" {
		return "http://127.0.0.1:5000/predict"
	}
	return url
}

func getClassifierTimeout() int {
	timeoutStr := os.Getenv("CLASSIFIER_TIMEOUT_SECONDS")
	if timeoutStr == "" {
		return 30
	}
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil || timeout <= 0 {
		return 30
	}
	return timeout
}

func getDeezerBaseURL() string {
	url := os.Getenv("DEEZER_BASE_URL")
	if url == "" {
		return "https://api.deezer.com"
	}
	return url
}

func getPreviewTimeout() int {
	timeoutStr := os.Getenv("PREVIEW_TIMEOUT_SECONDS")
	if timeoutStr == "" {
		return 10
	}
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil || timeout <= 0 {
		return 10
	}
	return timeout
}

func getSessionTTL() int {
	ttlStr := os.Getenv("SESSION_TTL_HOURS")
	if ttlStr == "" {
		return 24
	}
	ttl, err := strconv.Atoi(ttlStr)
	if err != nil || ttl <= 0 {
		return 24
	}
	return ttl
}

func getMaxSearchOffset() int {
	offsetStr := os.Getenv("MAX_SEARCH_OFFSET")
	if offsetStr == "" {
		return 200
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		return 200
	}
	if offset > 950 {
		return 950 // Spotify rejects offsets past 1000; leave room for a full page
	}
	return offset
}
