package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateReply(text string) string {
	reply := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(reply)
	return string(b)
}

func TestAnalyze_StructuredResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.NotEmpty(t, req.Contents[0].Parts[0].Text)
		assert.Equal(t, "image/jpeg", req.Contents[0].Parts[1].InlineData.MimeType)

		_, _ = w.Write([]byte(generateReply(`{"scene_type":"food","observations":["초밥"],"food_guess":["참치 (추정)"]}`)))
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	result, err := c.Analyze(context.Background(), Image{
		ID:       "img-1",
		Name:     "food1.jpg",
		MimeType: "image/jpeg",
		Bytes:    []byte{0xFF, 0xD8},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, "food", result.Analysis.SceneType)
	assert.Equal(t, []string{"초밥"}, result.Analysis.Observations)
	assert.Empty(t, result.Raw)
}

func TestAnalyze_FencedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(generateReply("```json\n{\"scene_type\":\"interior\"}\n```")))
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	result, err := c.Analyze(context.Background(), Image{Name: "in.jpg"})
	require.NoError(t, err)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, "interior", result.Analysis.SceneType)
}

func TestAnalyze_UnparseableFallsBackToRaw(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(generateReply("I could not identify the dish, sorry.")))
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	result, err := c.Analyze(context.Background(), Image{Name: "blur.jpg"})
	require.NoError(t, err)
	assert.Nil(t, result.Analysis)
	assert.Equal(t, "I could not identify the dish, sorry.", result.Raw)
}

func TestAnalyze_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	_, err := c.Analyze(context.Background(), Image{Name: "x.jpg"})
	assert.Error(t, err)
}

func TestParseModelText_MissingSceneType(t *testing.T) {
	result := ParseModelText(`{"observations":["..."]}`)
	assert.Nil(t, result.Analysis)
	assert.NotEmpty(t, result.Raw)
}

func TestFixtureClient_Lookup(t *testing.T) {
	fixture := `{
		"images": {
			"img-1": {"scene_type": "food", "food_guess": ["파스타 (추정)"]},
			"Menu.JPG": {"scene_type": "menu"},
			"broken.jpg": {"raw": "plain text answer"}
		}
	}`
	c, err := NewFixtureClient([]byte(fixture))
	require.NoError(t, err)
	ctx := context.Background()

	byID, err := c.Analyze(ctx, Image{ID: "img-1", Name: "anything.jpg"})
	require.NoError(t, err)
	require.NotNil(t, byID.Analysis)
	assert.Equal(t, "food", byID.Analysis.SceneType)

	byName, err := c.Analyze(ctx, Image{ID: "other", Name: "Menu.JPG"})
	require.NoError(t, err)
	require.NotNil(t, byName.Analysis)
	assert.Equal(t, "menu", byName.Analysis.SceneType)

	raw, err := c.Analyze(ctx, Image{ID: "z", Name: "broken.jpg"})
	require.NoError(t, err)
	assert.Nil(t, raw.Analysis)
	assert.Equal(t, "plain text answer", raw.Raw)

	missing, err := c.Analyze(ctx, Image{ID: "none", Name: "none.jpg"})
	require.NoError(t, err)
	require.NotNil(t, missing.Analysis)
	assert.Equal(t, "other", missing.Analysis.SceneType)
	assert.Contains(t, missing.Analysis.Warnings[0], "none.jpg")
}
