package activitypub

import (
	"regexp"
	"strings"
)

// trailingHashtags matches a run of hashtag/cashtag tokens at the very end of
// a message, including the whitespace separating them from the body.
var trailingHashtags = regexp.MustCompile(`(?i)(?:\s*[#$][a-z\d-]+)+$`)

// SplitTrailingHashtags splits a trailing hashtag run off a message, returning
// the stripped message and the extracted tags. Hashtags in the middle of the
// body are left in place and not extracted.
func SplitTrailingHashtags(text string) (string, []string) {
	match := trailingHashtags.FindString(text)
	if match == "" {
		return text, nil
	}

	message := trailingHashtags.ReplaceAllString(text, "")
	return message, strings.Fields(match)
}
