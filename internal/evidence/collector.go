// Package evidence gathers the three evidence sources for a visit folder:
// discovered images, business facts, and per-image vision analysis. Business
// lookup and vision analysis degrade independently; only zero images is fatal.
package evidence

import (
	"time"

	"github.com/sells-group/blogpipe/internal/model"
	"github.com/sells-group/blogpipe/internal/storage"
	"github.com/sells-group/blogpipe/pkg/places"
	"github.com/sells-group/blogpipe/pkg/vision"
)

// Collector runs evidence collection against a storage backend and optional
// lookup collaborators. A nil places or vision client is the designed
// degraded configuration, not an error.
type Collector struct {
	backend     storage.Backend
	places      places.Client
	vision      vision.Client
	windowDays  int
	concurrency int
	now         func() time.Time
}

// Option configures a Collector.
type Option func(*Collector)

// WithPlaces sets the place-lookup client.
func WithPlaces(c places.Client) Option {
	return func(col *Collector) { col.places = c }
}

// WithVision sets the image-understanding client.
func WithVision(c vision.Client) Option {
	return func(col *Collector) { col.vision = c }
}

// WithRecencyWindow overrides the review recency window in days.
func WithRecencyWindow(days int) Option {
	return func(col *Collector) { col.windowDays = days }
}

// WithVisionConcurrency bounds concurrent per-image analysis calls.
func WithVisionConcurrency(n int) Option {
	return func(col *Collector) {
		if n > 0 {
			col.concurrency = n
		}
	}
}

// WithClock overrides the collection clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(col *Collector) { col.now = now }
}

// NewCollector creates a Collector over the given backend.
func NewCollector(backend storage.Backend, opts ...Option) *Collector {
	c := &Collector{
		backend:     backend,
		windowDays:  model.DefaultRecencyWindowDays,
		concurrency: 4,
		now:         time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}
