package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("plain", StripTags("plain"))
	assert.Equal("Hello world", StripTags("<p>Hello <b>world</b></p>"))
	assert.Equal("a & b", StripTags("a &amp; b"))
	assert.Equal("before after", StripTags("before <script>alert(1)</script>after"))
}
