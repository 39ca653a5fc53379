package helper

import (
	"regexp"
	"strings"
)

var headingOrNewline = regexp.MustCompile(`#+[^#\n]*#*|\n`)

// MainBody reduces a rich-text body to a plain excerpt: markdown
// headings, emphasis markers and newlines are stripped and the result
// is cut to the first 200 runes.
func MainBody(body string) string {
	plain := headingOrNewline.ReplaceAllString(body, "")
	plain = strings.NewReplacer("*", "", "`", "", ">", "").Replace(plain)
	plain = strings.TrimSpace(plain)

	runes := []rune(plain)
	if len(runes) > 200 {
		runes = runes[:200]
	}
	return string(runes)
}

// ImageName derives the storage key of an uploaded asset from its
// public URL. An empty URL maps to no asset.
func ImageName(url string) string {
	if url == "" {
		return ""
	}
	if i := strings.Index(url, "/images/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

// Referenced reports whether the asset name still appears in the body
// or is the current header image.
func Referenced(name, body, headerBg string) bool {
	if name == "" {
		return false
	}
	return strings.Contains(body, name) || (headerBg != "" && strings.Contains(headerBg, name))
}
