package summarizer

import (
	"regexp"
	"strings"
)

var (
	mdHeaderRe        = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdBoldStarRe      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	mdBoldUnderRe     = regexp.MustCompile(`__(.*?)__`)
	mdItalicStarRe    = regexp.MustCompile(`\*(.*?)\*`)
	mdItalicUnderRe   = regexp.MustCompile(`_(.*?)_`)
	mdCodeRe          = regexp.MustCompile("`(.*?)`")
	mdLinkRe          = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdBracketRe       = regexp.MustCompile(`\[([^\]]+)\]`)
	mdStrikeRe        = regexp.MustCompile(`~~(.*?)~~`)
	mdQuoteRe         = regexp.MustCompile(`(?m)^>\s+`)
	mdRuleRe          = regexp.MustCompile(`(?m)^[-*_]{3,}$`)
	extraBreaksRe     = regexp.MustCompile(`\n\s*\n\s*\n`)
	multiSpaceRe      = regexp.MustCompile(` +`)
	leadingLineSpaces = regexp.MustCompile(`\n +`)
)

// CleanMarkdown strips markdown formatting from model output, leaving plain
// text for the API responses.
func CleanMarkdown(text string) string {
	if text == "" {
		return text
	}

	text = mdHeaderRe.ReplaceAllString(text, "")
	text = mdBoldStarRe.ReplaceAllString(text, "$1")
	text = mdBoldUnderRe.ReplaceAllString(text, "$1")
	text = mdItalicStarRe.ReplaceAllString(text, "$1")
	text = mdItalicUnderRe.ReplaceAllString(text, "$1")
	text = mdCodeRe.ReplaceAllString(text, "$1")
	text = mdLinkRe.ReplaceAllString(text, "$1")
	text = mdBracketRe.ReplaceAllString(text, "$1")
	text = mdStrikeRe.ReplaceAllString(text, "$1")
	text = mdQuoteRe.ReplaceAllString(text, "")
	text = mdRuleRe.ReplaceAllString(text, "")

	text = extraBreaksRe.ReplaceAllString(text, "\n\n")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = leadingLineSpaces.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}
