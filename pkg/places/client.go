// Package places provides the place-lookup collaborator: name search plus
// detail fetch with unfiltered reviews. Recency filtering is the caller's
// responsibility.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// Candidate identifies a matched place.
type Candidate struct {
	PlaceID string
}

// Review is one unfiltered public review.
type Review struct {
	Time         int64
	Rating       float64
	Text         string
	RelativeTime string
}

// Details is the normalized place payload. Pointer fields distinguish absent
// from zero.
type Details struct {
	PlaceID          string
	Name             string
	Address          string
	OpeningHours     []string
	Rating           *float64
	UserRatingsTotal *int
	MapsURL          string
	Website          string
	Reviews          []Review
}

// Client performs place lookups. Search returns (nil, nil) when no place
// matches the name.
type Client interface {
	Search(ctx context.Context, name string) (*Candidate, error)
	Details(ctx context.Context, placeID string) (*Details, error)
}

// Option configures the HTTP client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit overrides the default request rate limit.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *httpClient) { c.limiter = rate.NewLimiter(r, burst) }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchRequest struct {
	TextQuery string `json:"textQuery"`
}

type searchResponse struct {
	Places []struct {
		ID string `json:"id"`
	} `json:"places"`
}

func (c *httpClient) Search(ctx context.Context, name string) (*Candidate, error) {
	body, err := json.Marshal(searchRequest{TextQuery: name})
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "places: create search request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", "places.id")

	var result searchResponse
	if err := c.do(ctx, req, &result); err != nil {
		return nil, err
	}
	if len(result.Places) == 0 || result.Places[0].ID == "" {
		return nil, nil
	}
	return &Candidate{PlaceID: result.Places[0].ID}, nil
}

type detailsResponse struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress    string `json:"formattedAddress"`
	RegularOpeningHours struct {
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	} `json:"regularOpeningHours"`
	Rating          *float64 `json:"rating"`
	UserRatingCount *int     `json:"userRatingCount"`
	GoogleMapsURI   string   `json:"googleMapsUri"`
	WebsiteURI      string   `json:"websiteUri"`
	Reviews         []struct {
		Rating                         float64   `json:"rating"`
		PublishTime                    time.Time `json:"publishTime"`
		RelativePublishTimeDescription string    `json:"relativePublishTimeDescription"`
		Text                           struct {
			Text string `json:"text"`
		} `json:"text"`
	} `json:"reviews"`
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*Details, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/places/"+url.PathEscape(placeID), nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create details request")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask",
		"id,displayName,formattedAddress,regularOpeningHours.weekdayDescriptions,"+
			"rating,userRatingCount,googleMapsUri,websiteUri,reviews")

	var raw detailsResponse
	if err := c.do(ctx, req, &raw); err != nil {
		return nil, err
	}

	details := &Details{
		PlaceID:          raw.ID,
		Name:             raw.DisplayName.Text,
		Address:          raw.FormattedAddress,
		OpeningHours:     raw.RegularOpeningHours.WeekdayDescriptions,
		Rating:           raw.Rating,
		UserRatingsTotal: raw.UserRatingCount,
		MapsURL:          raw.GoogleMapsURI,
		Website:          raw.WebsiteURI,
	}
	for _, r := range raw.Reviews {
		details.Reviews = append(details.Reviews, Review{
			Time:         r.PublishTime.Unix(),
			Rating:       r.Rating,
			Text:         r.Text.Text,
			RelativeTime: r.RelativePublishTimeDescription,
		})
	}
	return details, nil
}

func (c *httpClient) do(ctx context.Context, req *http.Request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "places: rate limit wait")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "places: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "places: unmarshal response")
	}
	return nil
}
