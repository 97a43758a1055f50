package spotify

import (
	"testing"

	spotifyclient "github.com/zmb3/spotify/v2"
)

func TestParseTrackURI(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"uri", "spotify:track:0VjIjW4GlUZAMYd2vXMi3b", "0VjIjW4GlUZAMYd2vXMi3b"},
		{"bare_id", "0VjIjW4GlUZAMYd2vXMi3b", "0VjIjW4GlUZAMYd2vXMi3b"},
		{"empty", "", ""},
		{"other_uri_kind", "spotify:album:abc", "spotify:album:abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTrackURI(tt.uri); got != tt.want {
				t.Errorf("ParseTrackURI(%q) = %q; want %q", tt.uri, got, tt.want)
			}
		})
	}
}

func TestTrackFromFull(t *testing.T) {
	full := spotifyclient.FullTrack{
		SimpleTrack: spotifyclient.SimpleTrack{
			ID:         "track-1",
			Name:       "Song X",
			PreviewURL: "https://p.scdn.co/clip.mp3",
			URI:        "spotify:track:track-1",
			Duration:   214000,
			Explicit:   true,
			Artists: []spotifyclient.SimpleArtist{
				{ID: "artist-1", Name: "Artist Y"},
				{ID: "artist-2", Name: "Featured Z"},
			},
		},
		Album: spotifyclient.SimpleAlbum{
			Images: []spotifyclient.Image{
				{URL: "https://i.scdn.co/image/large.jpg"},
				{URL: "https://i.scdn.co/image/small.jpg"},
			},
		},
		Popularity: 73,
	}

	track := trackFromFull(full)

	if track.ID != "track-1" {
		t.Errorf("ID = %q", track.ID)
	}
	if track.Name != "Song X" {
		t.Errorf("Name = %q", track.Name)
	}
	if track.Artist != "Artist Y" {
		t.Errorf("Artist = %q; want the primary artist", track.Artist)
	}
	if track.ArtistID != "artist-1" {
		t.Errorf("ArtistID = %q", track.ArtistID)
	}
	if track.AlbumArt != "https://i.scdn.co/image/large.jpg" {
		t.Errorf("AlbumArt = %q; want first image", track.AlbumArt)
	}
	if track.DurationMs != 214000 {
		t.Errorf("DurationMs = %d", track.DurationMs)
	}
	if track.Popularity != 73 {
		t.Errorf("Popularity = %d", track.Popularity)
	}
	if !track.Explicit {
		t.Error("Explicit = false; want true")
	}
	if track.URI != "spotify:track:track-1" {
		t.Errorf("URI = %q", track.URI)
	}
}

func TestTrackFromFullNoArtistsNoImages(t *testing.T) {
	track := trackFromFull(spotifyclient.FullTrack{
		SimpleTrack: spotifyclient.SimpleTrack{ID: "bare", Name: "Bare"},
	})
	if track.Artist != "" || track.ArtistID != "" || track.AlbumArt != "" {
		t.Errorf("expected empty artist/art for bare track, got %+v", track)
	}
}
