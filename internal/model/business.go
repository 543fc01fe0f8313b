package model

import "time"

// DefaultRecencyWindowDays is the cutoff restricting which reviews may ground
// generated text.
const DefaultRecencyWindowDays = 60

// Review is one public review that survived the recency filter. Reviews older
// than the window are discarded at collection time and never reach this type.
type Review struct {
	Time         int64   `json:"time"` // unix seconds
	Rating       float64 `json:"rating"`
	Text         string  `json:"text"`
	RelativeTime string  `json:"relative_time,omitempty"`
}

// Age returns how long before the reference instant the review was posted.
func (r Review) Age(ref time.Time) time.Duration {
	return ref.Sub(time.Unix(r.Time, 0))
}

// BusinessInfo is the stage-2 place-lookup artifact. Found=false is a valid
// terminal state signalling deliberate evidence degradation, not an error.
type BusinessInfo struct {
	Found             bool     `json:"found"`
	PlaceID           string   `json:"place_id,omitempty"`
	Name              string   `json:"name,omitempty"`
	Address           string   `json:"address,omitempty"`
	OpeningHours      []string `json:"opening_hours,omitempty"`
	Rating            *float64 `json:"rating,omitempty"`
	RatingCount       *int     `json:"rating_count,omitempty"`
	MapsURL           string   `json:"maps_url,omitempty"`
	Website           string   `json:"website,omitempty"`
	RecentReviews     []Review `json:"recent_reviews"`
	RecencyWindowDays int      `json:"recency_window_days"`
	CollectedAt       int64    `json:"collected_at,omitempty"` // unix seconds
}
