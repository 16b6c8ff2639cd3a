package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	node, err := html.Parse(strings.NewReader("<p>hello <b>big</b> world</p>"))
	require.NoError(t, err)
	require.Equal(t, "hello big world", GetText(node))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "Palin, Michael", CleanText("  Palin,   Michael  "))
	require.Equal(t, "Gent Hoofdbibliotheek", CleanText("\n  Gent Hoofdbibliotheek\n  "))
	require.Equal(t, "", CleanText("   \n\t  "))
}

func TestFirstAnchor(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<h3><a href="https://example.com/item">  Some   title </a><a href="/other">x</a></h3>`))
	require.NoError(t, err)

	a, ok := FirstAnchor(doc.Find("h3"))
	require.True(t, ok)
	require.Equal(t, "Some title", a.Name)
	require.Equal(t, "https://example.com/item", a.Href)

	_, ok = FirstAnchor(doc.Find("div"))
	require.False(t, ok)
}
