package places

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// FixtureClient serves place lookups from a JSON file for offline runs and
// tests. The file maps restaurant names to detail payloads:
//
//	{"restaurants": {"스시로쿠": {"place_id": "p1", "address": "...", "reviews": [...]}}}
type FixtureClient struct {
	byName    map[string]fixtureDetails
	byPlaceID map[string]fixtureDetails
}

type fixturePayload struct {
	Restaurants map[string]fixtureDetails `json:"restaurants"`
}

type fixtureDetails struct {
	PlaceID          string          `json:"place_id"`
	Name             string          `json:"name"`
	Address          string          `json:"address"`
	OpeningHours     []string        `json:"opening_hours"`
	Rating           *float64        `json:"rating"`
	UserRatingsTotal *int            `json:"user_ratings_total"`
	MapsURL          string          `json:"maps_url"`
	Website          string          `json:"website"`
	Reviews          []fixtureReview `json:"reviews"`
}

type fixtureReview struct {
	Time         int64   `json:"time"`
	Rating       float64 `json:"rating"`
	Text         string  `json:"text"`
	RelativeTime string  `json:"relative_time"`
}

// NewFixtureClient parses fixture JSON. Entries without a place_id are
// skipped.
func NewFixtureClient(data []byte) (*FixtureClient, error) {
	var payload fixturePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, eris.Wrap(err, "places: parse fixture")
	}
	if payload.Restaurants == nil {
		return nil, eris.New("places: fixture must contain a restaurants object")
	}

	c := &FixtureClient{
		byName:    map[string]fixtureDetails{},
		byPlaceID: map[string]fixtureDetails{},
	}
	for name, details := range payload.Restaurants {
		placeID := strings.TrimSpace(details.PlaceID)
		key := strings.ToLower(strings.TrimSpace(name))
		if placeID == "" || key == "" {
			continue
		}
		if details.Name == "" {
			details.Name = strings.TrimSpace(name)
		}
		c.byName[key] = details
		c.byPlaceID[placeID] = details
	}
	return c, nil
}

// NewFixtureClientFromFile reads and parses a fixture file.
func NewFixtureClientFromFile(path string) (*FixtureClient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "places: read fixture %s", path)
	}
	return NewFixtureClient(data)
}

func (c *FixtureClient) Search(_ context.Context, name string) (*Candidate, error) {
	details, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, nil
	}
	return &Candidate{PlaceID: details.PlaceID}, nil
}

func (c *FixtureClient) Details(_ context.Context, placeID string) (*Details, error) {
	fd, ok := c.byPlaceID[placeID]
	if !ok {
		return nil, eris.Errorf("places: no fixture details for %s", placeID)
	}

	details := &Details{
		PlaceID:          fd.PlaceID,
		Name:             fd.Name,
		Address:          fd.Address,
		OpeningHours:     fd.OpeningHours,
		Rating:           fd.Rating,
		UserRatingsTotal: fd.UserRatingsTotal,
		MapsURL:          fd.MapsURL,
		Website:          fd.Website,
	}
	for _, r := range fd.Reviews {
		details.Reviews = append(details.Reviews, Review{
			Time:         r.Time,
			Rating:       r.Rating,
			Text:         r.Text,
			RelativeTime: r.RelativeTime,
		})
	}
	return details, nil
}
