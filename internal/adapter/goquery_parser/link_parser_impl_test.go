package goquery_parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinks(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
<head>
	<title>Document</title>
	<link rel="stylesheet" href="/style.css">
</head>
<body>
	<a href="/a">A</a>
	<a href="http://example.com/b">B</a>
	<a href="http://other.com/c">C</a>
	<a name="anchor">no href</a>
	<area href="/map">
	<a href="/a">A again</a>
	<a href="">empty</a>
</body>
</html>`

	links, err := NewLinkParser().ParseLinks([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/style.css",
		"/a",
		"http://example.com/b",
		"http://other.com/c",
		"/map",
		"/a",
		"",
	}, links)
}

func TestParseLinksNotHTML(t *testing.T) {
	links, err := NewLinkParser().ParseLinks([]byte("plain text, no markup"))
	require.NoError(t, err)
	assert.Empty(t, links)
}
