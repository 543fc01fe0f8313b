package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/blogpipe/internal/storage"
	"github.com/sells-group/blogpipe/internal/store"
	"github.com/sells-group/blogpipe/pkg/places"
	"github.com/sells-group/blogpipe/pkg/vision"
)

func newBackend() storage.Backend {
	return storage.NewLocal(afero.NewOsFs())
}

// newPlacesClient builds the place-lookup client. A fixture path takes
// precedence; without fixture or key the pipeline runs degraded.
func newPlacesClient() (places.Client, error) {
	if cfg.Places.FixturePath != "" {
		c, err := places.NewFixtureClientFromFile(cfg.Places.FixturePath)
		if err != nil {
			return nil, eris.Wrap(err, "load places fixture")
		}
		return c, nil
	}
	if cfg.Places.Key == "" {
		zap.L().Warn("no places API key configured, business lookup disabled")
		return nil, nil
	}
	return places.NewClient(cfg.Places.Key,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithRateLimit(rate.Limit(cfg.Places.RatePerSecond), 1),
	), nil
}

func newVisionClient() (vision.Client, error) {
	if cfg.Vision.FixturePath != "" {
		c, err := vision.NewFixtureClientFromFile(cfg.Vision.FixturePath)
		if err != nil {
			return nil, eris.Wrap(err, "load vision fixture")
		}
		return c, nil
	}
	if cfg.Vision.Key == "" {
		zap.L().Warn("no vision API key configured, image analysis disabled")
		return nil, nil
	}
	return vision.NewClient(cfg.Vision.Key,
		vision.WithBaseURL(cfg.Vision.BaseURL),
		vision.WithModel(cfg.Vision.Model),
		vision.WithRateLimit(rate.Limit(cfg.Vision.RatePerSecond), 1),
	), nil
}

// initHistory opens and migrates the run-history store, or returns nil when
// history is disabled.
func initHistory(ctx context.Context) (*store.SQLiteStore, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	st, err := store.NewSQLite(cfg.History.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open history store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate history store")
	}
	return st, nil
}
