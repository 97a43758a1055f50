package models

// Track is the local view of a catalog track. Field names mirror what the
// web client consumes, so JSON tags stay in the client's camel/snake mix.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	ArtistID   string `json:"artistId,omitempty"`
	AlbumArt   string `json:"albumArt,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
	URI        string `json:"uri"`
	DurationMs int    `json:"duration_ms"`
	Popularity int    `json:"popularity"`
	Explicit   bool   `json:"explicit"`
}

// GenrePending marks a seed song whose classification has not resolved yet.
const GenrePending = "pending"

// SeedSong is a track the user picked as a recommendation seed. Genre starts
// as "pending" and is overwritten once per classification round-trip. The
// seed set accumulates client-side across a session and is passed back in
// on every recommendation call as the exclusion basis.
type SeedSong struct {
	Track
	Genre string `json:"genre"`
}

// RecommendationRequest is the body of POST /api/recommendations/:trackId.
// PreviewURL may be empty; the server resolves one itself in that case.
type RecommendationRequest struct {
	PreviewURL string     `json:"previewUrl"`
	SeedTracks []SeedSong `json:"seedTracks"`
}

// RecommendationResult is produced fresh per request and never cached.
type RecommendationResult struct {
	Message      string   `json:"message"`
	PrimaryGenre string   `json:"primaryGenre"`
	AllGenres    []string `json:"allGenres"`
	Tracks       []Track  `json:"tracks"`
}
