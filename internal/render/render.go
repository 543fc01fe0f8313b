// Package render deterministically turns an evidence snapshot into one HTML
// document. Every fact-bearing sentence traces to a specific evidence field;
// the renderer never synthesizes ratings, addresses, or review counts that are
// absent from the snapshot.
package render

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/blogpipe/internal/model"
)

// Renderer builds review documents from a fixed prompt set.
type Renderer struct {
	prompts PromptSet
}

// New creates a Renderer.
func New(prompts PromptSet) *Renderer {
	return &Renderer{prompts: prompts}
}

var placeholderRE = regexp.MustCompile(`\{[a-z_]+\}`)

// Render produces the complete HTML document for one visit. It is pure: the
// same snapshot always yields the same bytes.
func (r *Renderer) Render(manifest model.Manifest, info model.BusinessInfo, images []model.ImageEvidence) (string, error) {
	title, err := formatTemplate(r.prompts.TitleTemplate, map[string]string{
		"restaurant_name": manifest.Folder.RestaurantName,
	})
	if err != nil {
		return "", err
	}

	paragraphs, err := r.buildParagraphs(manifest, info, images)
	if err != nil {
		return "", err
	}

	return renderHTML(
		title,
		manifest.Folder.RestaurantName,
		manifest.Folder.VisitDate,
		paragraphs,
		r.buildInfoLines(info),
	), nil
}

// buildInfoLines populates the business-info box from fields present in the
// snapshot. Absent and empty fields are omitted, never rendered as
// placeholders.
func (r *Renderer) buildInfoLines(info model.BusinessInfo) []string {
	var lines []string
	if info.Found {
		if info.Address != "" {
			lines = append(lines, "주소: "+info.Address)
		}
		if len(info.OpeningHours) > 0 {
			limit := min(len(info.OpeningHours), 2)
			lines = append(lines, "영업시간: "+strings.Join(info.OpeningHours[:limit], ", "))
		}
		if info.Rating != nil {
			line := "평점 정보: " + strconv.FormatFloat(*info.Rating, 'f', -1, 64)
			if info.RatingCount != nil {
				line += fmt.Sprintf(" (%d건 기준)", *info.RatingCount)
			}
			lines = append(lines, line)
		}
		if info.Website != "" {
			lines = append(lines, "웹사이트: "+info.Website)
		}
		if info.MapsURL != "" {
			lines = append(lines, "지도: "+info.MapsURL)
		}
	} else {
		lines = append(lines, r.prompts.MissingInfoLine)
	}

	out := lines[:0]
	for _, line := range lines {
		if s := sanitizeText(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r *Renderer) buildParagraphs(manifest model.Manifest, info model.BusinessInfo, images []model.ImageEvidence) ([]string, error) {
	intro, err := formatTemplate(r.prompts.IntroTemplate, map[string]string{
		"visit_date":      manifest.Folder.VisitDate,
		"image_count":     strconv.Itoa(len(manifest.Images)),
		"restaurant_name": manifest.Folder.RestaurantName,
	})
	if err != nil {
		return nil, err
	}
	paragraphs := []string{intro}

	sceneCounts := map[string]int{}
	var observations, foodGuesses []string
	for _, img := range images {
		if img.Analysis == nil {
			continue
		}
		scene := strings.TrimSpace(string(img.Analysis.SceneType))
		if scene == "" {
			scene = string(model.SceneOther)
		}
		sceneCounts[scene]++
		observations = append(observations, takeNonEmpty(img.Analysis.Observations)...)
		foodGuesses = append(foodGuesses, takeNonEmpty(img.Analysis.FoodGuess)...)
	}

	if len(sceneCounts) > 0 {
		summary, err := formatTemplate(r.prompts.SceneSummaryTemplate, map[string]string{
			"scene_text":      topScenesText(sceneCounts, 3),
			"restaurant_name": manifest.Folder.RestaurantName,
		})
		if err != nil {
			return nil, err
		}
		paragraphs = append(paragraphs, summary)
	}

	if len(observations) > 0 {
		paragraphs = append(paragraphs, r.prompts.ObservationsPrefix+strings.Join(uniqueLimited(observations, 3), " / "))
	}

	// Food guesses are estimations; the prefix keeps the hedged phrasing.
	if len(foodGuesses) > 0 {
		paragraphs = append(paragraphs, r.prompts.FoodGuessPrefix+strings.Join(uniqueLimited(foodGuesses, 3), ", "))
	}

	// The review sentence exists only when recent reviews were collected;
	// this is the provenance restriction against invented reviews.
	if len(info.RecentReviews) > 0 {
		if summary := trimText(info.RecentReviews[0].Text, 90); summary != "" {
			sentence, err := formatTemplate(r.prompts.RecentReviewTemplate, map[string]string{
				"review_count":    strconv.Itoa(len(info.RecentReviews)),
				"summary":         summary,
				"restaurant_name": manifest.Folder.RestaurantName,
			})
			if err != nil {
				return nil, err
			}
			paragraphs = append(paragraphs, sentence)
		}
	}

	if len(paragraphs) == 1 {
		paragraphs = append(paragraphs, r.prompts.FallbackParagraph)
	}

	out := paragraphs[:0]
	for _, p := range paragraphs {
		if s := sanitizeText(p); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func topScenesText(counts map[string]int, limit int) string {
	type sceneCount struct {
		name  string
		count int
	}
	scenes := make([]sceneCount, 0, len(counts))
	for name, count := range counts {
		scenes = append(scenes, sceneCount{name, count})
	}
	sort.Slice(scenes, func(i, j int) bool {
		if scenes[i].count != scenes[j].count {
			return scenes[i].count > scenes[j].count
		}
		return scenes[i].name < scenes[j].name
	})
	if len(scenes) > limit {
		scenes = scenes[:limit]
	}

	parts := make([]string, len(scenes))
	for i, s := range scenes {
		parts[i] = fmt.Sprintf("%s %d장", s.name, s.count)
	}
	return strings.Join(parts, ", ")
}

// formatTemplate substitutes {name} placeholders. A placeholder left
// unresolved means the template references evidence outside the schema, which
// is an internal contract violation.
func formatTemplate(template string, values map[string]string) (string, error) {
	result := template
	for key, value := range values {
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	if leftover := placeholderRE.FindString(result); leftover != "" {
		return "", eris.Errorf("render: template references unknown evidence field %s", leftover)
	}
	return result, nil
}

func takeNonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func uniqueLimited(values []string, limit int) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range values {
		s := strings.TrimSpace(v)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func trimText(value string, maxLen int) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), "\n", " ")
	runes := []rune(cleaned)
	if len(runes) <= maxLen {
		return cleaned
	}
	return strings.TrimRight(string(runes[:maxLen]), " ") + "..."
}

// renderHTML assembles the final document. The html/head/body markers are a
// rendering contract the validator checks, not decoration.
func renderHTML(title, restaurantName, visitDate string, paragraphs, infoLines []string) string {
	var b strings.Builder

	b.WriteString("<!doctype html>")
	b.WriteString(`<html lang="ko">`)
	b.WriteString("<head>")
	b.WriteString(`<meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(title))
	b.WriteString("</head>")
	b.WriteString("<body><article>")
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(restaurantName))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(visitDate))

	if len(infoLines) > 0 {
		b.WriteString("<section><h2>기본 정보</h2><ul>")
		for _, line := range infoLines {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(line))
		}
		b.WriteString("</ul></section>")
	}

	if len(paragraphs) == 0 {
		b.WriteString("<p></p>")
	}
	for _, p := range paragraphs {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(p))
	}

	b.WriteString("</article></body>")
	b.WriteString("</html>")
	return b.String()
}
