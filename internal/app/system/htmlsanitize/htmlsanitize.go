// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict is safe for concurrent use once built.
var strict = bluemonday.StrictPolicy()

// PlainText strips all markup and returns trimmed text. Entities produced by
// the policy are decoded so the stored value reads the way it was typed.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
