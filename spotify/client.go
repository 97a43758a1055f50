package spotify

import (
	"context"
	"errors"
	"strings"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	spotifyclient "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"groovr/config"
	"groovr/models"
)

// Client wraps the Spotify Web API for one user. Every request rides the
// user's OAuth token, so a Client is built per request from the session.
type Client struct {
	api     *spotifyclient.Client
	market  string
	scraper *embedScraper
}

// NewUserClient builds a catalog client from a session token. The
// underlying http.Client refreshes the token transparently when expired.
func NewUserClient(ctx context.Context, token *oauth2.Token) *Client {
	httpClient := spotifyauth.New().Client(ctx, token)
	market := "US"
	embedFallback := true
	if config.Config != nil {
		market = config.Config.Spotify.Market
		embedFallback = config.Config.Preview.EmbedFallback
	}
	c := &Client{
		api:    spotifyclient.New(httpClient),
		market: market,
	}
	if embedFallback {
		c.scraper = newEmbedScraper()
	}
	return c
}

// SearchTracks issues one track search and returns a single page. No
// paging: the recommendation strategies each get exactly one shot.
func (c *Client) SearchTracks(ctx context.Context, query string, limit, offset int) ([]models.Track, error) {
	span := sentry.StartSpan(ctx, "spotify.search")
	span.Description = "Search Spotify tracks"
	span.SetTag("query", query)
	defer span.Finish()

	results, err := c.api.Search(ctx, query, spotifyclient.SearchTypeTrack,
		spotifyclient.Limit(limit),
		spotifyclient.Offset(offset),
		spotifyclient.Market(c.market),
	)
	if err != nil {
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	if results.Tracks == nil {
		span.Status = sentry.SpanStatusOK
		return nil, nil
	}

	tracks := make([]models.Track, 0, len(results.Tracks.Tracks))
	for _, item := range results.Tracks.Tracks {
		tracks = append(tracks, trackFromFull(item))
	}

	span.Status = sentry.SpanStatusOK
	span.SetData("results_count", len(tracks))
	return tracks, nil
}

// GetTrack fetches one track by id. When the catalog carries no preview
// clip, the embed page is scraped as a fallback source.
func (c *Client) GetTrack(ctx context.Context, trackID string) (*models.Track, error) {
	log.Tracef("Fetching track from Spotify API: %s", trackID)

	span := sentry.StartSpan(ctx, "spotify.get_track")
	span.Description = "Get track from Spotify API"
	span.SetTag("track_id", trackID)
	defer span.Finish()

	full, err := c.api.GetTrack(ctx, spotifyclient.ID(trackID), spotifyclient.Market(c.market))
	if err != nil {
		log.Errorf("Failed to fetch Spotify track %s: %v", trackID, err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	track := trackFromFull(*full)
	if track.PreviewURL == "" && c.scraper != nil {
		if url, err := c.scraper.previewURL(ctx, trackID); err == nil && url != "" {
			log.Debugf("backfilled preview for %s from embed page", trackID)
			track.PreviewURL = url
		}
	}

	span.Status = sentry.SpanStatusOK
	return &track, nil
}

type ArtistInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	Popularity int      `json:"popularity"`
}

// GetArtist looks up an artist, mainly as a secondary genre source when a
// track's own classification needs corroborating.
func (c *Client) GetArtist(ctx context.Context, artistID string) (*ArtistInfo, error) {
	span := sentry.StartSpan(ctx, "spotify.get_artist")
	span.Description = "Get artist from Spotify API"
	span.SetTag("artist_id", artistID)
	defer span.Finish()

	artist, err := c.api.GetArtist(ctx, spotifyclient.ID(artistID))
	if err != nil {
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	info := &ArtistInfo{
		ID:         string(artist.ID),
		Name:       artist.Name,
		Genres:     artist.Genres,
		Popularity: int(artist.Popularity),
	}
	if len(artist.Images) > 0 {
		info.ImageURL = artist.Images[0].URL
	}

	span.Status = sentry.SpanStatusOK
	return info, nil
}

type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

func (c *Client) CurrentUser(ctx context.Context) (*Profile, error) {
	span := sentry.StartSpan(ctx, "spotify.current_user")
	span.Description = "Get current user profile"
	defer span.Finish()

	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	profile := &Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
	}
	if len(user.Images) > 0 {
		profile.ImageURL = user.Images[0].URL
	}

	span.Status = sentry.SpanStatusOK
	return profile, nil
}

type PlayedTrack struct {
	models.Track
	PlayedAt string `json:"played_at"`
}

func (c *Client) RecentlyPlayed(ctx context.Context, limit int) ([]PlayedTrack, error) {
	span := sentry.StartSpan(ctx, "spotify.recently_played")
	span.Description = "Get recently played tracks"
	defer span.Finish()

	items, err := c.api.PlayerRecentlyPlayedOpt(ctx, &spotifyclient.RecentlyPlayedOptions{Limit: spotifyclient.Numeric(limit)})
	if err != nil {
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	tracks := make([]PlayedTrack, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, PlayedTrack{
			Track:    trackFromSimple(item.Track),
			PlayedAt: item.PlayedAt.Format("2006-01-02T15:04:05.000Z"),
		})
	}

	span.Status = sentry.SpanStatusOK
	span.SetData("tracks_count", len(tracks))
	return tracks, nil
}

func (c *Client) TopArtists(ctx context.Context, limit int) ([]ArtistInfo, error) {
	span := sentry.StartSpan(ctx, "spotify.top_artists")
	span.Description = "Get user's top artists"
	defer span.Finish()

	page, err := c.api.CurrentUsersTopArtists(ctx,
		spotifyclient.Limit(limit),
		spotifyclient.Timerange(spotifyclient.MediumTermRange),
	)
	if err != nil {
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	artists := make([]ArtistInfo, 0, len(page.Artists))
	for _, artist := range page.Artists {
		info := ArtistInfo{
			ID:         string(artist.ID),
			Name:       artist.Name,
			Genres:     artist.Genres,
			Popularity: int(artist.Popularity),
		}
		if len(artist.Images) > 0 {
			info.ImageURL = artist.Images[0].URL
		}
		artists = append(artists, info)
	}

	span.Status = sentry.SpanStatusOK
	return artists, nil
}

type PlaylistInfo struct {
	ID   string `json:"playlistId"`
	Name string `json:"name"`
	URL  string `json:"playlistUrl"`
}

// CreatePlaylist creates a private playlist for the current user and adds
// the given tracks to it in order.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, trackIDs []string) (*PlaylistInfo, error) {
	if name == "" {
		return nil, errors.New("playlist name is required")
	}
	if len(trackIDs) == 0 {
		return nil, errors.New("at least one track is required")
	}

	span := sentry.StartSpan(ctx, "spotify.create_playlist")
	span.Description = "Create playlist and add tracks"
	span.SetTag("name", name)
	defer span.Finish()

	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	playlist, err := c.api.CreatePlaylistForUser(ctx, user.ID, name, description, false, false)
	if err != nil {
		log.Errorf("Failed to create playlist %q: %v", name, err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	ids := make([]spotifyclient.ID, 0, len(trackIDs))
	for _, id := range trackIDs {
		ids = append(ids, spotifyclient.ID(ParseTrackURI(id)))
	}

	if _, err := c.api.AddTracksToPlaylist(ctx, playlist.ID, ids...); err != nil {
		log.Errorf("Failed to add %d tracks to playlist %s: %v", len(ids), playlist.ID, err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	span.Status = sentry.SpanStatusOK
	span.SetData("tracks_count", len(ids))
	return &PlaylistInfo{
		ID:   string(playlist.ID),
		Name: playlist.Name,
		URL:  playlist.ExternalURLs["spotify"],
	}, nil
}

// ParseTrackURI accepts either a bare track id or a spotify:track: URI and
// returns the id.
func ParseTrackURI(uri string) string {
	if strings.HasPrefix(uri, "spotify:track:") {
		return strings.TrimPrefix(uri, "spotify:track:")
	}
	return uri
}

func trackFromFull(t spotifyclient.FullTrack) models.Track {
	track := trackFromSimple(t.SimpleTrack)
	track.Popularity = int(t.Popularity)
	if len(t.Album.Images) > 0 {
		track.AlbumArt = t.Album.Images[0].URL
	}
	return track
}

func trackFromSimple(t spotifyclient.SimpleTrack) models.Track {
	track := models.Track{
		ID:         string(t.ID),
		Name:       t.Name,
		PreviewURL: t.PreviewURL,
		URI:        string(t.URI),
		DurationMs: int(t.Duration),
		Explicit:   t.Explicit,
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
		track.ArtistID = string(t.Artists[0].ID)
	}
	if len(t.Album.Images) > 0 {
		track.AlbumArt = t.Album.Images[0].URL
	}
	return track
}
