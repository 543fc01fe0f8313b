package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_ReturnsCandidate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places:searchText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, "places.id", r.Header.Get("X-Goog-FieldMask"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "스시로쿠", req["textQuery"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places":[{"id":"place-1"}]}`))
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	candidate, err := c.Search(context.Background(), "스시로쿠")
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, "place-1", candidate.PlaceID)
}

func TestSearch_NoMatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"places":[]}`))
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	candidate, err := c.Search(context.Background(), "없는가게")
	require.NoError(t, err)
	assert.Nil(t, candidate)
}

func TestSearch_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewClient("bad-key", WithBaseURL(ts.URL))
	_, err := c.Search(context.Background(), "스시로쿠")
	assert.Error(t, err)
}

func TestDetails_MapsFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places/place-1", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": "place-1",
			"displayName": {"text": "스시로쿠"},
			"formattedAddress": "서울 마포구",
			"regularOpeningHours": {"weekdayDescriptions": ["Mon: 11-21", "Tue: 11-21"]},
			"rating": 4.5,
			"userRatingCount": 120,
			"googleMapsUri": "https://maps.google.com/?cid=1",
			"websiteUri": "https://sushiroku.example",
			"reviews": [
				{"rating": 5, "publishTime": "2026-02-10T12:00:00Z", "relativePublishTimeDescription": "4 days ago", "text": {"text": "good"}}
			]
		}`))
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	details, err := c.Details(context.Background(), "place-1")
	require.NoError(t, err)

	assert.Equal(t, "스시로쿠", details.Name)
	assert.Equal(t, "서울 마포구", details.Address)
	assert.Len(t, details.OpeningHours, 2)
	require.NotNil(t, details.Rating)
	assert.InDelta(t, 4.5, *details.Rating, 0.001)
	require.NotNil(t, details.UserRatingsTotal)
	assert.Equal(t, 120, *details.UserRatingsTotal)
	require.Len(t, details.Reviews, 1)
	assert.Equal(t, "good", details.Reviews[0].Text)
	assert.Equal(t, "4 days ago", details.Reviews[0].RelativeTime)
	assert.Positive(t, details.Reviews[0].Time)
}

func TestDetails_AbsentOptionalFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": "place-2", "displayName": {"text": "가게"}}`))
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	details, err := c.Details(context.Background(), "place-2")
	require.NoError(t, err)
	assert.Nil(t, details.Rating)
	assert.Nil(t, details.UserRatingsTotal)
	assert.Empty(t, details.Reviews)
}

func TestFixtureClient_SearchAndDetails(t *testing.T) {
	fixture := `{
		"restaurants": {
			"스시로쿠": {
				"place_id": "p1",
				"address": "서울 마포구",
				"rating": 4.2,
				"user_ratings_total": 88,
				"reviews": [{"time": 1700000000, "rating": 5, "text": "좋아요", "relative_time": "a week ago"}]
			}
		}
	}`
	c, err := NewFixtureClient([]byte(fixture))
	require.NoError(t, err)

	candidate, err := c.Search(context.Background(), "  스시로쿠 ")
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, "p1", candidate.PlaceID)

	details, err := c.Details(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "스시로쿠", details.Name)
	assert.Equal(t, "서울 마포구", details.Address)
	require.Len(t, details.Reviews, 1)
	assert.Equal(t, int64(1700000000), details.Reviews[0].Time)
}

func TestFixtureClient_MissingName(t *testing.T) {
	c, err := NewFixtureClient([]byte(`{"restaurants": {}}`))
	require.NoError(t, err)

	candidate, err := c.Search(context.Background(), "없는가게")
	require.NoError(t, err)
	assert.Nil(t, candidate)
}

func TestFixtureClient_InvalidJSON(t *testing.T) {
	_, err := NewFixtureClient([]byte(`not json`))
	assert.Error(t, err)
}
