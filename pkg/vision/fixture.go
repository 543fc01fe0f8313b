package vision

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// FixtureClient serves vision analyses from a JSON file for offline runs and
// tests. The file maps image ids or names to analysis payloads:
//
//	{"images": {"food1.jpg": {"scene_type": "food", "observations": ["..."]}}}
//
// An entry carrying only {"raw": "..."} simulates an unparseable response.
type FixtureClient struct {
	images map[string]json.RawMessage
}

type fixturePayload struct {
	Images map[string]json.RawMessage `json:"images"`
}

// NewFixtureClient parses fixture JSON.
func NewFixtureClient(data []byte) (*FixtureClient, error) {
	var payload fixturePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, eris.Wrap(err, "vision: parse fixture")
	}
	if payload.Images == nil {
		return nil, eris.New("vision: fixture must contain an images object")
	}
	return &FixtureClient{images: payload.Images}, nil
}

// NewFixtureClientFromFile reads and parses a fixture file.
func NewFixtureClientFromFile(path string) (*FixtureClient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vision: read fixture %s", path)
	}
	return NewFixtureClient(data)
}

func (c *FixtureClient) Analyze(_ context.Context, img Image) (*Result, error) {
	entry, ok := c.images[img.ID]
	if !ok {
		entry, ok = c.images[img.Name]
	}
	if !ok {
		entry, ok = c.images[strings.ToLower(img.Name)]
	}
	if !ok {
		return &Result{Analysis: &Analysis{
			SceneType: "other",
			Warnings:  []string{"no vision data for " + img.Name},
		}}, nil
	}

	var rawOnly struct {
		Raw string `json:"raw"`
	}
	if err := json.Unmarshal(entry, &rawOnly); err == nil && rawOnly.Raw != "" {
		return &Result{Raw: rawOnly.Raw}, nil
	}

	var analysis Analysis
	if err := json.Unmarshal(entry, &analysis); err != nil || analysis.SceneType == "" {
		return &Result{Raw: string(entry)}, nil
	}
	return &Result{Analysis: &analysis}, nil
}
