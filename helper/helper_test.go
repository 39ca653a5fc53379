package helper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMainBodyStripsHeadingsAndNewlines(t *testing.T) {
	body := "# Title #\nfirst line\nsecond *bold* line"
	main := MainBody(body)

	assert.NotContains(t, main, "#")
	assert.NotContains(t, main, "\n")
	assert.NotContains(t, main, "*")
	assert.Contains(t, main, "first line")
}

func TestMainBodyTruncatesTo200Runes(t *testing.T) {
	body := strings.Repeat("甲", 300)
	main := MainBody(body)
	assert.Equal(t, 200, len([]rune(main)))
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "images/1600000000.png", ImageName("https://cdn.simplog.dev/images/1600000000.png"))
	assert.Equal(t, "", ImageName(""))
}

func TestReferenced(t *testing.T) {
	body := "text ![](https://cdn.simplog.dev/images/a.png) more"
	assert.True(t, Referenced("images/a.png", body, ""))
	assert.False(t, Referenced("images/b.png", body, ""))
	assert.True(t, Referenced("images/b.png", body, "https://cdn.simplog.dev/images/b.png"))
	assert.False(t, Referenced("", body, ""))
}
