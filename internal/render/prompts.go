package render

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// PromptSet holds the narrative templates the renderer substitutes evidence
// into. Placeholders use {name} syntax; substituting an unknown placeholder is
// a rendering contract violation.
type PromptSet struct {
	TitleTemplate        string `yaml:"title_template"`
	IntroTemplate        string `yaml:"intro_template"`
	SceneSummaryTemplate string `yaml:"scene_summary_template"`
	ObservationsPrefix   string `yaml:"observations_prefix"`
	FoodGuessPrefix      string `yaml:"food_guess_prefix"`
	RecentReviewTemplate string `yaml:"recent_review_template"`
	FallbackParagraph    string `yaml:"fallback_paragraph"`
	MissingInfoLine      string `yaml:"missing_info_line"`
}

// DefaultPrompts returns the built-in Korean templates.
func DefaultPrompts() PromptSet {
	return PromptSet{
		TitleTemplate:        "{restaurant_name} 방문 기록",
		IntroTemplate:        "{visit_date} 방문 사진 {image_count}장을 기준으로 정리했습니다.",
		SceneSummaryTemplate: "사진에서 확인된 장면은 {scene_text}입니다.",
		ObservationsPrefix:   "사진 관찰 포인트: ",
		FoodGuessPrefix:      "음식 추정: ",
		RecentReviewTemplate: "최근 60일 기준 공개 의견 {review_count}건이 확인되며, 예시로 {summary} 같은 반응이 보입니다.",
		FallbackParagraph:    "사진에서 확인 가능한 범위 안에서만 내용을 구성했습니다.",
		MissingInfoLine:      "식당 기본 정보는 확인되지 않아 사진 기준으로만 정리했습니다.",
	}
}

// LoadPrompts returns the defaults merged with any non-empty overrides from a
// YAML file. An empty path returns the defaults.
func LoadPrompts(path string) (PromptSet, error) {
	base := DefaultPrompts()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return PromptSet{}, eris.Wrapf(err, "render: read prompt file %s", path)
	}

	var overrides PromptSet
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return PromptSet{}, eris.Wrapf(err, "render: parse prompt file %s", path)
	}

	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&base.TitleTemplate, overrides.TitleTemplate)
	merge(&base.IntroTemplate, overrides.IntroTemplate)
	merge(&base.SceneSummaryTemplate, overrides.SceneSummaryTemplate)
	merge(&base.ObservationsPrefix, overrides.ObservationsPrefix)
	merge(&base.FoodGuessPrefix, overrides.FoodGuessPrefix)
	merge(&base.RecentReviewTemplate, overrides.RecentReviewTemplate)
	merge(&base.FallbackParagraph, overrides.FallbackParagraph)
	merge(&base.MissingInfoLine, overrides.MissingInfoLine)
	return base, nil
}
