package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/internal/sanitizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_DropsScriptsStylesAndComments(t *testing.T) {
	s := sanitizer.NewHTMLSanitizer(&metadata.NoopSink{})

	in := `<div class="toanvancontent">` +
		`<script>var x = 1;</script>` +
		`<style>p { color: red }</style>` +
		`<!-- generated -->` +
		`<p>Điều 1. Phạm vi</p>` +
		`<noscript>enable js</noscript>` +
		`<iframe src="https://ads.example"></iframe>` +
		`<p>Nội dung</p></div>`

	out, err := s.Sanitize(in)
	require.Nil(t, err)

	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "color: red")
	assert.NotContains(t, out, "generated")
	assert.NotContains(t, out, "enable js")
	assert.NotContains(t, out, "iframe")
	assert.Contains(t, out, "<p>Điều 1. Phạm vi</p>")
	assert.True(t, strings.Index(out, "Phạm vi") < strings.Index(out, "Nội dung"))
}

func TestSanitize_RemovesNestedEmptyContainers(t *testing.T) {
	s := sanitizer.NewHTMLSanitizer(&metadata.NoopSink{})

	out, err := s.Sanitize(`<div><div><span> </span></div><p>giữ</p></div>`)
	require.Nil(t, err)

	assert.Equal(t, `<div><p>giữ</p></div>`, out)
}

func TestSanitize_KeepsTableGridAndVoidElements(t *testing.T) {
	s := sanitizer.NewHTMLSanitizer(&metadata.NoopSink{})

	out, err := s.Sanitize(`<table><tbody><tr><td></td><td>Nơi nhận</td></tr></tbody></table><p>a<br/>b</p>`)
	require.Nil(t, err)

	assert.Contains(t, out, "<td></td>")
	assert.Contains(t, out, "<br/>")
}

func TestSanitize_Empty(t *testing.T) {
	s := sanitizer.NewHTMLSanitizer(&metadata.NoopSink{})

	out, err := s.Sanitize("   ")
	assert.Nil(t, err)
	assert.Empty(t, out)
}
