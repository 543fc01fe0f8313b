package render

import (
	"regexp"
	"strings"
)

// emojiRE covers the pictographic blocks the validator rejects.
var emojiRE = regexp.MustCompile(`[\x{1F300}-\x{1F5FF}\x{1F600}-\x{1F64F}\x{1F680}-\x{1F6FF}\x{1F900}-\x{1F9FF}\x{1FA70}-\x{1FAFF}]+`)

var bannedReplacer = strings.NewReplacer(
	"**", "",
	`"`, "",
	"“", "",
	"”", "",
	"<hr", "hr",
	".gif", ".img",
	"image/gif", "image",
)

// sanitizeText strips the tokens the rule validator forbids: strong-emphasis
// markers, quotation marks, horizontal rules, animated-media references, and
// emoji. Evidence text is untrusted; upstream reviews and model output
// routinely contain all of these.
func sanitizeText(value string) string {
	sanitized := bannedReplacer.Replace(value)
	sanitized = emojiRE.ReplaceAllString(sanitized, "")
	return strings.TrimSpace(sanitized)
}
