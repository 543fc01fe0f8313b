package evidence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/blogpipe/internal/model"
	"github.com/sells-group/blogpipe/pkg/places"
)

// LookupBusiness fetches business facts for the restaurant. Every failure
// path (no client, no match, transport error) yields Found=false so the
// pipeline can still reach rendering; failures are logged, never returned.
// Reviews are filtered to the recency window here, at collection time.
func (c *Collector) LookupBusiness(ctx context.Context, restaurantName string) model.BusinessInfo {
	log := zap.L().With(zap.String("restaurant", restaurantName))
	collectedAt := c.now()
	notFound := model.BusinessInfo{
		Found:             false,
		RecencyWindowDays: c.windowDays,
		RecentReviews:     []model.Review{},
		CollectedAt:       collectedAt.Unix(),
	}

	if c.places == nil {
		log.Debug("evidence: place lookup not configured")
		return notFound
	}

	candidate, err := c.places.Search(ctx, restaurantName)
	if err != nil {
		log.Warn("evidence: place search failed", zap.Error(err))
		return notFound
	}
	if candidate == nil || candidate.PlaceID == "" {
		log.Info("evidence: no place match")
		return notFound
	}

	details, err := c.places.Details(ctx, candidate.PlaceID)
	if err != nil {
		log.Warn("evidence: place details failed", zap.Error(err))
		return notFound
	}

	name := details.Name
	if name == "" {
		name = restaurantName
	}

	info := model.BusinessInfo{
		Found:             true,
		PlaceID:           candidate.PlaceID,
		Name:              name,
		Address:           details.Address,
		OpeningHours:      details.OpeningHours,
		Rating:            details.Rating,
		RatingCount:       details.UserRatingsTotal,
		MapsURL:           details.MapsURL,
		Website:           details.Website,
		RecentReviews:     filterRecentReviews(details.Reviews, c.windowDays, collectedAt),
		RecencyWindowDays: c.windowDays,
		CollectedAt:       collectedAt.Unix(),
	}
	log.Info("evidence: business info collected",
		zap.Int("recent_reviews", len(info.RecentReviews)),
		zap.Int("discarded_reviews", len(details.Reviews)-len(info.RecentReviews)),
	)
	return info
}

// filterRecentReviews discards reviews older than the window. Discarded, not
// truncated: stale reviews never enter the evidence snapshot.
func filterRecentReviews(reviews []places.Review, windowDays int, now time.Time) []model.Review {
	recent := []model.Review{}
	if windowDays < 1 {
		return recent
	}

	cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour).Unix()
	for _, r := range reviews {
		if r.Time < cutoff {
			continue
		}
		recent = append(recent, model.Review{
			Time:         r.Time,
			Rating:       r.Rating,
			Text:         r.Text,
			RelativeTime: r.RelativeTime,
		})
	}
	return recent
}
