package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/blogpipe/internal/model"
)

func testManifest(imageCount int) model.Manifest {
	images := make([]model.ImageRef, imageCount)
	for i := range images {
		images[i] = model.ImageRef{ID: "id", Name: "img.jpg", MimeType: "image/jpeg"}
	}
	return model.Manifest{
		Folder: model.VisitFolder{
			FolderName:     "20260214_스시로쿠",
			VisitDate:      "20260214",
			RestaurantName: "스시로쿠",
		},
		Images: images,
	}
}

func analyzed(scene model.SceneType, observations, foodGuess []string) model.ImageEvidence {
	return model.ImageEvidence{
		Image: model.ImageRef{Name: "img.jpg"},
		Analysis: &model.ImageAnalysis{
			SceneType:    scene,
			Observations: observations,
			FoodGuess:    foodGuess,
		},
	}
}

func TestRender_FullEvidence(t *testing.T) {
	rating := 4.5
	count := 120
	info := model.BusinessInfo{
		Found:             true,
		Name:              "스시로쿠",
		Address:           "서울 마포구 어딘가 12",
		OpeningHours:      []string{"월: 11-21", "화: 11-21", "수: 11-21"},
		Rating:            &rating,
		RatingCount:       &count,
		Website:           "https://sushiroku.example",
		MapsURL:           "https://maps.google.com/?cid=1",
		RecentReviews:     []model.Review{{Time: 1770000000, Rating: 5, Text: "사장님이 친절하고 초밥이 신선했어요"}},
		RecencyWindowDays: 60,
	}
	images := []model.ImageEvidence{
		analyzed(model.SceneFood, []string{"접시에 초밥 10점"}, []string{"참치 초밥 (추정)"}),
		analyzed(model.SceneFood, nil, []string{"연어 초밥 (추정)"}),
		analyzed(model.SceneInterior, []string{"목재 인테리어"}, nil),
	}

	r := New(DefaultPrompts())
	doc, err := r.Render(testManifest(3), info, images)
	require.NoError(t, err)

	assert.Contains(t, doc, "<html")
	assert.Contains(t, doc, "<head>")
	assert.Contains(t, doc, "<body>")
	assert.Contains(t, doc, "20260214 방문 사진 3장")
	assert.Contains(t, doc, "서울 마포구 어딘가 12")
	assert.Contains(t, doc, "평점 정보: 4.5 (120건 기준)")
	assert.Contains(t, doc, "food 2장")
	assert.Contains(t, doc, "interior 1장")
	assert.Contains(t, doc, "음식 추정: 참치 초밥 (추정), 연어 초밥 (추정)")
	assert.Contains(t, doc, "공개 의견 1건")
	assert.Contains(t, doc, "사장님이 친절하고 초밥이 신선했어요")

	// Only the first two opening-hour lines render.
	assert.Contains(t, doc, "영업시간: 월: 11-21, 화: 11-21")
	assert.NotContains(t, doc, "수: 11-21")
}

func TestRender_DegradedBusinessInfoOmitsFields(t *testing.T) {
	info := model.BusinessInfo{Found: false, RecencyWindowDays: 60}
	images := []model.ImageEvidence{analyzed(model.SceneFood, nil, nil)}

	r := New(DefaultPrompts())
	doc, err := r.Render(testManifest(1), info, images)
	require.NoError(t, err)

	assert.Contains(t, doc, DefaultPrompts().MissingInfoLine)
	assert.NotContains(t, doc, "주소:")
	assert.NotContains(t, doc, "평점 정보:")
	assert.NotContains(t, doc, "웹사이트:")
}

func TestRender_NoReviewSentenceWithoutRecentReviews(t *testing.T) {
	info := model.BusinessInfo{Found: true, Address: "서울", RecencyWindowDays: 60}
	images := []model.ImageEvidence{analyzed(model.SceneFood, nil, nil)}

	r := New(DefaultPrompts())
	doc, err := r.Render(testManifest(1), info, images)
	require.NoError(t, err)

	assert.NotContains(t, doc, "공개 의견")
	assert.NotContains(t, doc, "리뷰")
}

func TestRender_EmptyOpeningHoursTreatedAsAbsent(t *testing.T) {
	info := model.BusinessInfo{Found: true, Address: "서울", OpeningHours: []string{}}

	r := New(DefaultPrompts())
	doc, err := r.Render(testManifest(1), info, nil)
	require.NoError(t, err)
	assert.NotContains(t, doc, "영업시간")
}

func TestRender_FallbackParagraphOnLowEvidence(t *testing.T) {
	info := model.BusinessInfo{Found: false}
	raw := []model.ImageEvidence{{Image: model.ImageRef{Name: "a.jpg"}, Raw: "unstructured"}}

	r := New(DefaultPrompts())
	doc, err := r.Render(testManifest(1), info, raw)
	require.NoError(t, err)
	assert.Contains(t, doc, DefaultPrompts().FallbackParagraph)
}

func TestRender_SanitizesUntrustedEvidenceText(t *testing.T) {
	info := model.BusinessInfo{
		Found:         true,
		RecentReviews: []model.Review{{Time: 1770000000, Text: `**최고** 진짜 "맛집" 🍣 감동`}},
	}
	images := []model.ImageEvidence{
		analyzed(model.SceneFood, []string{"관찰 <hr> 포인트", "움짤.gif 느낌"}, nil),
	}

	r := New(DefaultPrompts())
	doc, err := r.Render(testManifest(1), info, images)
	require.NoError(t, err)

	assert.NotContains(t, doc, "**")
	assert.NotContains(t, doc, "<hr")
	assert.NotContains(t, doc, ".gif")
	assert.NotContains(t, doc, "🍣")
	assert.NotContains(t, strings.ReplaceAll(doc, "&quot;", `"`), `"맛집"`)
}

func TestRender_ReviewSummaryTrimmed(t *testing.T) {
	long := strings.Repeat("가", 200)
	info := model.BusinessInfo{
		Found:         true,
		RecentReviews: []model.Review{{Time: 1770000000, Text: long}},
	}

	r := New(DefaultPrompts())
	doc, err := r.Render(testManifest(1), info, nil)
	require.NoError(t, err)
	assert.Contains(t, doc, strings.Repeat("가", 90)+"...")
	assert.NotContains(t, doc, strings.Repeat("가", 91))
}

func TestFormatTemplate_UnknownPlaceholderIsError(t *testing.T) {
	_, err := formatTemplate("hello {rating_count}", map[string]string{"summary": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating_count")
}

func TestLoadPrompts_DefaultsAndOverrides(t *testing.T) {
	prompts, err := LoadPrompts("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompts(), prompts)

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title_template: \"{restaurant_name} 후기\"\n"), 0o644))

	prompts, err = LoadPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, "{restaurant_name} 후기", prompts.TitleTemplate)
	assert.Equal(t, DefaultPrompts().IntroTemplate, prompts.IntroTemplate)
}

func TestLoadPrompts_MissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
