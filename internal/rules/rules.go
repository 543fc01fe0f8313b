// Package rules validates a rendered document against the evidence snapshot
// it was derived from. Rules are independent predicate+message pairs over the
// raw document text; all of them run and every breach is collected, so the
// report lists the full set of violations in detection order.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/blogpipe/internal/model"
)

// DefaultReviewKeywords is the review-referencing vocabulary used when no
// custom set is configured.
var DefaultReviewKeywords = []string{"최근 리뷰", "리뷰에서", "review"}

// Evidence is the slice of the snapshot the validator needs.
type Evidence struct {
	RecentReviews     []model.Review
	RecencyWindowDays int
	// CollectedAt anchors the defensive recency re-check so cached
	// artifacts do not fail as wall-clock time advances. Zero means now.
	CollectedAt time.Time
}

// EvidenceFromBusinessInfo extracts validator evidence from a stage-2
// artifact.
func EvidenceFromBusinessInfo(info model.BusinessInfo) Evidence {
	ev := Evidence{
		RecentReviews:     info.RecentReviews,
		RecencyWindowDays: info.RecencyWindowDays,
	}
	if info.CollectedAt > 0 {
		ev.CollectedAt = time.Unix(info.CollectedAt, 0)
	}
	return ev
}

// Rule is one independent check. Check returns zero or more violation
// messages.
type Rule struct {
	Name  string
	Check func(doc string, ev Evidence) []string
}

// Validate runs every rule and assembles the report. It never short-circuits.
func Validate(doc string, ev Evidence, ruleSet []Rule) model.RuleReport {
	violations := []string{}
	for _, rule := range ruleSet {
		violations = append(violations, rule.Check(doc, ev)...)
	}
	return model.RuleReport{
		Passed:     len(violations) == 0,
		Violations: violations,
	}
}

// DefaultRules returns the standard rule set. reviewKeywords overrides the
// review-referencing vocabulary; nil selects DefaultReviewKeywords.
func DefaultRules(reviewKeywords []string) []Rule {
	if len(reviewKeywords) == 0 {
		reviewKeywords = DefaultReviewKeywords
	}
	return []Rule{
		{Name: "structure", Check: checkStructure},
		{Name: "banned-literals", Check: checkBannedLiterals},
		{Name: "emoji", Check: checkEmoji},
		{Name: "quoted-sentence", Check: checkQuotedSentence},
		{Name: "review-provenance", Check: checkReviewProvenance(reviewKeywords)},
		{Name: "review-recency", Check: checkReviewRecency},
	}
}

var structuralTags = []string{"<html", "<head", "<body"}

func checkStructure(doc string, _ Evidence) []string {
	lowered := strings.ToLower(doc)
	var violations []string
	for _, tag := range structuralTags {
		if !strings.Contains(lowered, tag) {
			violations = append(violations, fmt.Sprintf("missing %s> tag", tag))
		}
	}
	return violations
}

// bannedLiterals covers markdown strong emphasis, horizontal rules, and
// animated-media references by extension and declared media type.
var bannedLiterals = []string{"**", "<hr", ".gif", "image/gif"}

func checkBannedLiterals(doc string, _ Evidence) []string {
	lowered := strings.ToLower(doc)
	var violations []string
	for _, literal := range bannedLiterals {
		if strings.Contains(lowered, literal) {
			violations = append(violations, "contains banned token: "+literal)
		}
	}
	return violations
}

var emojiRE = regexp.MustCompile(`[\x{1F300}-\x{1F5FF}\x{1F600}-\x{1F64F}\x{1F680}-\x{1F6FF}\x{1F900}-\x{1F9FF}\x{1FA70}-\x{1FAFF}]`)

func checkEmoji(doc string, _ Evidence) []string {
	if emojiRE.MatchString(doc) {
		return []string{"contains emoji"}
	}
	return nil
}

// quotedSentenceRE matches a sentence wrapped entirely in quotation marks:
// the quote run starts at a tag boundary or sentence break and nothing but
// punctuation follows before the next boundary.
var quotedSentenceRE = regexp.MustCompile(`(?:^|>|[.!?]\s)\s*["“][^"”<>]+["”]\s*[.!?]?\s*(?:<|$|[.!?\n])`)

func checkQuotedSentence(doc string, _ Evidence) []string {
	if quotedSentenceRE.MatchString(doc) {
		return []string{"quoted full-sentence emphasis"}
	}
	return nil
}

func checkReviewProvenance(keywords []string) func(string, Evidence) []string {
	return func(doc string, ev Evidence) []string {
		if len(ev.RecentReviews) > 0 {
			return nil
		}
		lowered := strings.ToLower(doc)
		for _, keyword := range keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return []string{"mentions reviews without recent review data: " + keyword}
			}
		}
		return nil
	}
}

// checkReviewRecency re-validates the collection-time invariant: every review
// grounding the document must sit inside the recency window.
func checkReviewRecency(_ string, ev Evidence) []string {
	if len(ev.RecentReviews) == 0 {
		return nil
	}

	window := ev.RecencyWindowDays
	if window <= 0 {
		window = model.DefaultRecencyWindowDays
	}
	ref := ev.CollectedAt
	if ref.IsZero() {
		ref = time.Now()
	}

	var violations []string
	for i, review := range ev.RecentReviews {
		if review.Age(ref) > time.Duration(window)*24*time.Hour {
			violations = append(violations,
				fmt.Sprintf("review %d outside %d-day recency window", i, window))
		}
	}
	return violations
}
