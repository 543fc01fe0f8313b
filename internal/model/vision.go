package model

// SceneType classifies what a visit photo shows.
type SceneType string

const (
	SceneFood     SceneType = "food"
	SceneMenu     SceneType = "menu"
	SceneInterior SceneType = "interior"
	SceneExterior SceneType = "exterior"
	SceneReceipt  SceneType = "receipt"
	SceneOther    SceneType = "other"
)

// NormalizeScene maps arbitrary provider output onto the known scene set,
// falling back to SceneOther.
func NormalizeScene(s string) SceneType {
	switch SceneType(s) {
	case SceneFood, SceneMenu, SceneInterior, SceneExterior, SceneReceipt, SceneOther:
		return SceneType(s)
	default:
		return SceneOther
	}
}

// ImageAnalysis is the structured result of analyzing one photo. Food guesses
// are estimations and must be rendered as such, never asserted as fact.
type ImageAnalysis struct {
	SceneType        SceneType `json:"scene_type"`
	Observations     []string  `json:"observations"`
	FoodGuess        []string  `json:"food_guess"`
	AmbienceHints    []string  `json:"ambience_hints"`
	BloggableDetails []string  `json:"bloggable_details"`
	Warnings         []string  `json:"warnings"`
}

// ImageEvidence holds per-image analysis, or the raw provider response when
// structured parsing failed. Raw fallback is a degraded-but-retained state,
// not a collection failure.
type ImageEvidence struct {
	Image    ImageRef       `json:"image"`
	Analysis *ImageAnalysis `json:"analysis,omitempty"`
	Raw      string         `json:"raw,omitempty"`
}

// VisionEvidence is the stage-2 vision artifact: one entry per manifest image,
// in discovery order.
type VisionEvidence struct {
	Images []ImageEvidence `json:"images"`
}
