package handlers

// handlers wire the HTTP API to the session store, the Spotify catalog
// and the recommendation pipeline. Every catalog call is made with the
// requesting user's token, so a Catalog is built per request.

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"groovr/auth"
	"groovr/classifier"
	"groovr/config"
	"groovr/database"
	"groovr/models"
	"groovr/preview"
	"groovr/recommend"
	"groovr/spotify"
)

// stateCookie carries the OAuth state between /auth/login and the callback.
const stateCookie = "groovr_oauth_state"

// Catalog is the per-user view of the music catalog. *spotify.Client
// implements it; tests swap in fakes.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit, offset int) ([]models.Track, error)
	GetTrack(ctx context.Context, trackID string) (*models.Track, error)
	GetArtist(ctx context.Context, artistID string) (*spotify.ArtistInfo, error)
	CurrentUser(ctx context.Context) (*spotify.Profile, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]spotify.PlayedTrack, error)
	TopArtists(ctx context.Context, limit int) ([]spotify.ArtistInfo, error)
	CreatePlaylist(ctx context.Context, name, description string, trackIDs []string) (*spotify.PlaylistInfo, error)
}

type Manager struct {
	DB         *database.Database
	OAuth      *oauth2.Config
	Previews   recommend.PreviewResolver
	Classifier recommend.GenreClassifier
	NewCatalog func(ctx context.Context, token *oauth2.Token) Catalog
}

func NewManager(db *database.Database) *Manager {
	if config.Config.Spotify.ClientID == "" || config.Config.Spotify.ClientSecret == "" {
		log.Fatal("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set")
	}

	return &Manager{
		DB:         db,
		OAuth:      auth.NewOAuthConfig(),
		Previews:   preview.NewResolver(),
		Classifier: classifier.New(),
		NewCatalog: func(ctx context.Context, token *oauth2.Token) Catalog {
			return spotify.NewUserClient(ctx, token)
		},
	}
}

// Register mounts all API routes. Everything past the auth endpoints and
// the preview proxy requires a valid session.
func (m *Manager) Register(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/auth/login", m.Login)
	api.GET("/auth/callback", m.Callback)
	api.POST("/auth/refresh", m.Refresh)
	api.POST("/auth/logout", m.Logout)
	api.GET("/deezer-proxy", m.PreviewLookup)

	authed := api.Group("", auth.Middleware(m.DB, m.OAuth))
	authed.GET("/user/profile", m.UserProfile)
	authed.GET("/user/recently-played", m.RecentlyPlayed)
	authed.GET("/user/top-artists", m.TopArtists)
	authed.GET("/search", m.Search)
	authed.GET("/tracks/:trackId", m.GetTrack)
	authed.GET("/artists/:artistId", m.GetArtist)
	authed.POST("/recommendations/:trackId", m.Recommendations)
	authed.POST("/playlist", m.CreatePlaylist)
	authed.GET("/playlist/history", m.PlaylistHistory)
}

// Login hands the client the provider's consent URL. The state nonce is
// pinned in a short-lived cookie and checked again on callback.
func (m *Manager) Login(c *gin.Context) {
	state := uuid.NewString()
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"url": m.OAuth.AuthCodeURL(state)})
}

// Callback exchanges the authorization code for tokens and binds them to
// a fresh server-side session. The browser only ever gets the session id.
func (m *Manager) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization denied: " + errParam})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	if expected, err := c.Cookie(stateCookie); err != nil || expected == "" || expected != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "State mismatch"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	token, err := m.OAuth.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Errorf("token exchange failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token exchange failed"})
		return
	}

	sessionID, err := m.DB.CreateSession(token)
	if err != nil {
		log.Errorf("creating session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	ttl := config.Config.Options.SessionTTLHours * 3600
	c.SetCookie(auth.SessionCookie, sessionID, ttl, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Refresh forces a token refresh for the current session, independent of
// the lazy refresh the auth middleware already does.
func (m *Manager) Refresh(c *gin.Context) {
	sessionID, err := c.Cookie(auth.SessionCookie)
	if err != nil || sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	session, err := m.DB.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
		return
	}
	if session.RefreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session has no refresh token"})
		return
	}

	// An expired copy of the stored token forces TokenSource to hit the
	// provider instead of returning the cached access token.
	stale := session.Token()
	stale.Expiry = stale.Expiry.AddDate(-1, 0, 0)
	refreshed, err := m.OAuth.TokenSource(c.Request.Context(), stale).Token()
	if err != nil {
		log.Warnf("refreshing token for session %s: %v", sessionID, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token refresh failed"})
		return
	}

	if err := m.DB.UpdateToken(sessionID, refreshed); err != nil {
		log.Errorf("persisting refreshed token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist refreshed token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (m *Manager) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(auth.SessionCookie); err == nil && sessionID != "" {
		if err := m.DB.DeleteSession(sessionID); err != nil {
			log.Warnf("deleting session %s: %v", sessionID, err)
		}
	}
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (m *Manager) UserProfile(c *gin.Context) {
	catalog, ok := m.catalog(c)
	if !ok {
		return
	}
	profile, err := catalog.CurrentUser(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (m *Manager) RecentlyPlayed(c *gin.Context) {
	catalog, ok := m.catalog(c)
	if !ok {
		return
	}
	tracks, err := catalog.RecentlyPlayed(c.Request.Context(), limitParam(c, 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recently played", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracks": tracks})
}

func (m *Manager) TopArtists(c *gin.Context) {
	catalog, ok := m.catalog(c)
	if !ok {
		return
	}
	artists, err := catalog.TopArtists(c.Request.Context(), limitParam(c, 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top artists", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"artists": artists})
}

func (m *Manager) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	catalog, ok := m.catalog(c)
	if !ok {
		return
	}
	tracks, err := catalog.SearchTracks(c.Request.Context(), query, limitParam(c, 20), 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracks": tracks})
}

func (m *Manager) GetTrack(c *gin.Context) {
	catalog, ok := m.catalog(c)
	if !ok {
		return
	}
	track, err := catalog.GetTrack(c.Request.Context(), spotify.ParseTrackURI(c.Param("trackId")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch track", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, track)
}

func (m *Manager) GetArtist(c *gin.Context) {
	catalog, ok := m.catalog(c)
	if !ok {
		return
	}
	artist, err := catalog.GetArtist(c.Request.Context(), c.Param("artistId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch artist", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, artist)
}

// PreviewLookup proxies a Deezer preview search so the browser never
// talks to Deezer directly. It is deliberately unauthenticated: previews
// are public data.
func (m *Manager) PreviewLookup(c *gin.Context) {
	trackName := c.Query("track")
	artistName := c.Query("artist")
	if trackName == "" || artistName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameters 'track' and 'artist' are required"})
		return
	}

	url, err := m.Previews.Resolve(c.Request.Context(), trackName, artistName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Preview lookup failed", "details": err.Error()})
		return
	}
	if url == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "No preview found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"previewUrl": url})
}

type createPlaylistRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TrackURIs   []string `json:"trackUris"`
}

func (m *Manager) CreatePlaylist(c *gin.Context) {
	var body createPlaylistRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.Name == "" || len(body.TrackURIs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Playlist name and at least one track are required"})
		return
	}

	catalog, ok := m.catalog(c)
	if !ok {
		return
	}
	playlist, err := catalog.CreatePlaylist(c.Request.Context(), body.Name, body.Description, body.TrackURIs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create playlist", "details": err.Error()})
		return
	}

	if sessionID, ok := auth.SessionFromContext(c); ok {
		if err := m.DB.RecordPlaylist(sessionID, playlist.ID, playlist.Name, len(body.TrackURIs)); err != nil {
			log.Warnf("recording playlist %s: %v", playlist.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"playlistId":  playlist.ID,
		"name":        playlist.Name,
		"playlistUrl": playlist.URL,
	})
}

func (m *Manager) PlaylistHistory(c *gin.Context) {
	sessionID, ok := auth.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	records, err := m.DB.RecentPlaylists(sessionID, limitParam(c, 10))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load playlist history", "details": err.Error()})
		return
	}

	playlists := make([]gin.H, 0, len(records))
	for _, r := range records {
		playlists = append(playlists, gin.H{
			"playlistId": r.PlaylistID,
			"name":       r.Name,
			"trackCount": r.TrackCount,
			"createdAt":  r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"playlists": playlists})
}

func (m *Manager) catalog(c *gin.Context) (Catalog, bool) {
	token, ok := auth.TokenFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	return m.NewCatalog(c.Request.Context(), token), true
}

func limitParam(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > 50 {
		return 50
	}
	return limit
}
