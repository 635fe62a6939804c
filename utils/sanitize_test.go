package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTextDropsScriptsAndKeepsBreaks(t *testing.T) {
	out := string(RenderText("hello<script>alert(1)</script>\nworld"))
	assert.NotContains(t, out, "<script")
	assert.Equal(t, "hello<br>world", out)
}

func TestStripTagsUnescapes(t *testing.T) {
	assert.Equal(t, "Tom & Jerry", StripTags("<b>Tom</b> &amp; Jerry"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "one two", Truncate("one  two", 5))
	assert.Equal(t, "one two …", Truncate("one two three", 2))
}
