package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"groovr/config"
	"groovr/database"
)

// SessionCookie names the opaque session id cookie. Tokens themselves
// never reach the browser.
const SessionCookie = "groovr_session"

const (
	tokenContextKey   = "spotify_token"
	sessionContextKey = "session_id"
)

// NewOAuthConfig builds the authorization-code flow config for the
// identity provider from the app config.
func NewOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.Config.Spotify.ClientID,
		ClientSecret: config.Config.Spotify.ClientSecret,
		RedirectURL:  config.Config.Spotify.RedirectURI,
		Scopes: []string{
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopeUserReadEmail,
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopeUserLibraryRead,
			spotifyauth.ScopeUserTopRead,
			spotifyauth.ScopeUserReadRecentlyPlayed,
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}
}

// Middleware loads the session for the request cookie and puts a live
// token into the gin context. Expired access tokens are refreshed in
// place and the refreshed token is persisted back to the session.
func Middleware(db *database.Database, conf *oauth2.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		session, err := db.GetSession(sessionID)
		if err != nil {
			if errors.Is(err, database.ErrSessionNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
				return
			}
			log.Errorf("loading session %s: %v", sessionID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Session lookup failed"})
			return
		}

		token := session.Token()
		if !token.Valid() && token.RefreshToken != "" {
			refreshed, err := conf.TokenSource(c.Request.Context(), token).Token()
			if err != nil {
				log.Warnf("refreshing token for session %s: %v", sessionID, err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token refresh failed"})
				return
			}
			if err := db.UpdateToken(sessionID, refreshed); err != nil {
				log.Errorf("persisting refreshed token for session %s: %v", sessionID, err)
			}
			token = refreshed
		}

		SetToken(c, token)
		SetSession(c, sessionID)
		c.Next()
	}
}

// SetToken binds a token to the gin context. Exposed for handler tests
// that bypass the middleware.
func SetToken(c *gin.Context, token *oauth2.Token) {
	c.Set(tokenContextKey, token)
}

func SetSession(c *gin.Context, id string) {
	c.Set(sessionContextKey, id)
}

// TokenFromContext returns the request's live OAuth token.
func TokenFromContext(c *gin.Context) (*oauth2.Token, bool) {
	value, ok := c.Get(tokenContextKey)
	if !ok {
		return nil, false
	}
	token, ok := value.(*oauth2.Token)
	return token, ok
}

// SessionFromContext returns the request's session id.
func SessionFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}
