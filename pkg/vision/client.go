// Package vision provides the image-understanding collaborator. Responses
// that fail structural validation surface as raw text, never as errors, so
// one bad image cannot abort a collection.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// DefaultPrompt instructs the model to return only the structured scene JSON.
const DefaultPrompt = `Analyze this restaurant-related image and return ONLY JSON with this schema: ` +
	`{"scene_type":"food|menu|interior|exterior|receipt|other","observations":["..."],` +
	`"food_guess":["... (estimated)"],"ambience_hints":["..."],"bloggable_details":["..."],` +
	`"warnings":["..."]}. Keep each list short and factual. If uncertain, mention uncertainty in warnings.`

// Image is one photo to analyze.
type Image struct {
	ID       string
	Name     string
	MimeType string
	Bytes    []byte
}

// Analysis is the structured scene payload.
type Analysis struct {
	SceneType        string   `json:"scene_type"`
	Observations     []string `json:"observations"`
	FoodGuess        []string `json:"food_guess"`
	AmbienceHints    []string `json:"ambience_hints"`
	BloggableDetails []string `json:"bloggable_details"`
	Warnings         []string `json:"warnings"`
}

// Result is the outcome for one image: either a structured Analysis or, when
// the response failed parsing, the raw model text.
type Result struct {
	Analysis *Analysis
	Raw      string
}

// Client analyzes one image per call.
type Client interface {
	Analyze(ctx context.Context, img Image) (*Result, error)
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

// WithModel overrides the default model name.
func WithModel(m string) Option {
	return func(c *httpClient) { c.model = m }
}

// WithPrompt overrides the default analysis prompt.
func WithPrompt(p string) Option {
	return func(c *httpClient) { c.prompt = p }
}

// WithRateLimit overrides the default request rate limit.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *httpClient) { c.limiter = rate.NewLimiter(r, burst) }
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	prompt  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a vision API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		prompt:  DefaultPrompt,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *httpClient) Analyze(ctx context.Context, img Image) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "vision: rate limit wait")
	}

	parts := []part{{Text: c.prompt}}
	if len(img.Bytes) > 0 {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: img.MimeType,
			Data:     base64.StdEncoding.EncodeToString(img.Bytes),
		}})
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return nil, eris.Wrap(err, "vision: marshal request")
	}

	endpoint := c.baseURL + "/models/" + c.model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "vision: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "vision: analyze %s", img.Name)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "vision: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("vision: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return nil, eris.Wrap(err, "vision: unmarshal response")
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return &Result{Raw: string(respBody)}, nil
	}

	text := gr.Candidates[0].Content.Parts[0].Text
	return ParseModelText(text), nil
}

// ParseModelText attempts to decode model output as the structured scene JSON,
// tolerating markdown code fences. Anything unparseable becomes a raw result.
func ParseModelText(text string) *Result {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var analysis Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil || analysis.SceneType == "" {
		return &Result{Raw: text}
	}
	return &Result{Analysis: &analysis}
}
