package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"groovr/models"
)

func seedAndCandidates() *fakeCatalog {
	return &fakeCatalog{
		tracks: map[string]models.Track{
			"seed-1": {ID: "seed-1", Name: "Seed Song", Artist: "Seed Artist"},
		},
		searchResults: []models.Track{
			{ID: "seed-1", Name: "Seed Song", Artist: "Seed Artist"},
			{ID: "c1", Name: "Candidate One", Artist: "Other"},
			{ID: "c2", Name: "Candidate Two", Artist: "Another"},
		},
	}
}

func TestRecommendationsHappyPath(t *testing.T) {
	cat := seedAndCandidates()
	previews := &fakePreviews{url: "https://cdn.deezer.com/seed.mp3"}
	cls := &fakeClassifier{labels: []string{"rock", "pop"}}
	router, _ := newTestRouter(t, cat, previews, cls)

	w, body := doJSON(t, router, http.MethodPost, "/api/recommendations/seed-1", `{"seedTracks":[]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %v)", w.Code, body)
	}

	if body["primaryGenre"] != "rock" {
		t.Errorf("primaryGenre = %v; want rock", body["primaryGenre"])
	}
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "rock, pop") {
		t.Errorf("message = %q; want the predicted genres joined in", msg)
	}

	// The seed itself must not come back as a recommendation.
	tracks := body["tracks"].([]any)
	if len(tracks) != 2 {
		t.Fatalf("len(tracks) = %d; want 2", len(tracks))
	}
	for _, raw := range tracks {
		if raw.(map[string]any)["id"] == "seed-1" {
			t.Error("seed track leaked into recommendations")
		}
	}
}

func TestRecommendationsProvidedPreviewSkipsResolver(t *testing.T) {
	cat := seedAndCandidates()
	previews := &fakePreviews{}
	cls := &fakeClassifier{labels: []string{"hiphop"}}
	router, _ := newTestRouter(t, cat, previews, cls)

	w, body := doJSON(t, router, http.MethodPost, "/api/recommendations/seed-1",
		`{"previewUrl":"https://cdn.deezer.com/given.mp3"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %v)", w.Code, body)
	}
	if previews.calls != 0 {
		t.Errorf("resolver called %d times; want 0 when a preview is provided", previews.calls)
	}
	if body["primaryGenre"] != "rap" {
		t.Errorf("primaryGenre = %v; want rap (hiphop normalized)", body["primaryGenre"])
	}
}

func TestRecommendationsNoPreview(t *testing.T) {
	router, _ := newTestRouter(t, seedAndCandidates(), &fakePreviews{url: ""}, &fakeClassifier{})

	w, body := doJSON(t, router, http.MethodPost, "/api/recommendations/seed-1", `{}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "No audio preview") {
		t.Errorf("message = %q", msg)
	}
}

func TestRecommendationsNoGenres(t *testing.T) {
	previews := &fakePreviews{url: "https://cdn.deezer.com/seed.mp3"}
	router, _ := newTestRouter(t, seedAndCandidates(), previews, &fakeClassifier{labels: []string{}})

	w, body := doJSON(t, router, http.MethodPost, "/api/recommendations/seed-1", `{}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
	if body["message"] != "No genres predicted from the audio." {
		t.Errorf("message = %v", body["message"])
	}
}

func TestRecommendationsNoCandidates(t *testing.T) {
	cat := seedAndCandidates()
	cat.searchResults = nil
	previews := &fakePreviews{url: "https://cdn.deezer.com/seed.mp3"}
	router, _ := newTestRouter(t, cat, previews, &fakeClassifier{labels: []string{"vaporwave"}})

	w, body := doJSON(t, router, http.MethodPost, "/api/recommendations/seed-1", `{}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
	if body["genre"] != "vaporwave" {
		t.Errorf("genre = %v; want vaporwave", body["genre"])
	}
}

func TestRecommendationsClassifierDown(t *testing.T) {
	previews := &fakePreviews{url: "https://cdn.deezer.com/seed.mp3"}
	cls := &fakeClassifier{err: errors.New("connection refused")}
	router, _ := newTestRouter(t, seedAndCandidates(), previews, cls)

	w, body := doJSON(t, router, http.MethodPost, "/api/recommendations/seed-1", `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
	if body["error"] != "Failed to fetch recommendations" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestRecommendationsSeedFetchFails(t *testing.T) {
	cat := seedAndCandidates()
	cat.trackErr = errors.New("upstream 503")
	router, _ := newTestRouter(t, cat, &fakePreviews{}, &fakeClassifier{})

	w, _ := doJSON(t, router, http.MethodPost, "/api/recommendations/seed-1", `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500", w.Code)
	}
}

func TestRecommendationsMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t, seedAndCandidates(), &fakePreviews{}, &fakeClassifier{})

	w, _ := doJSON(t, router, http.MethodPost, "/api/recommendations/seed-1", `{"seedTracks": not-json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", w.Code)
	}
}

func TestRecommendationsExcludesSeedSet(t *testing.T) {
	cat := seedAndCandidates()
	previews := &fakePreviews{url: "https://cdn.deezer.com/seed.mp3"}
	router, _ := newTestRouter(t, cat, previews, &fakeClassifier{labels: []string{"rock"}})

	// c1 is already in the user's accumulated seed set.
	w, body := doJSON(t, router, http.MethodPost, "/api/recommendations/seed-1",
		`{"seedTracks":[{"id":"c1","name":"Candidate One","artist":"Other","uri":"","genre":"pending"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %v)", w.Code, body)
	}
	tracks := body["tracks"].([]any)
	if len(tracks) != 1 {
		t.Fatalf("len(tracks) = %d; want 1", len(tracks))
	}
	if tracks[0].(map[string]any)["id"] != "c2" {
		t.Errorf("remaining track = %v; want c2", tracks[0])
	}
}
