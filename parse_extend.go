package mijnbib

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/wvanhed/mijnbib/internal/htmlutil"
)

// ExtendResultParser interprets the page the site renders after a loan
// extension. It is explicitly best-effort: any structural mismatch yields a
// zero-value result, never an error.
type ExtendResultParser interface {
	Parse(html string) ExtendResult
}

const (
	extendSuccessMarker = "werden succesvol verlengd"
	extendFailureMarker = "Er ging iets fout bij het verlengen"
)

// ExtendResponseParser is the default ExtendResultParser. The result is
// delivered as an HTML fragment string-escaped inside an ajax script tag,
// so parsing is two-stage: unwrap the fragment, then read its message list.
type ExtendResponseParser struct{}

func (p *ExtendResponseParser) Parse(html string) ExtendResult {
	return p.parseStatusBlob(p.extractStatusBlob(html))
}

// extractStatusBlob recovers the status-message HTML fragment from the
// script tag it is embedded in, or returns "" when it is not there.
func (p *ExtendResponseParser) extractStatusBlob(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, "Statusbericht") || strings.Contains(text, "Foutmelding") {
			script = text
			return false
		}
		return true
	})
	if script == "" {
		return ""
	}

	const start = `"data":"`
	const end = `","settings`
	i := strings.Index(script, start)
	j := strings.LastIndex(script, end)
	if i < 0 || j < 0 || j <= i {
		return ""
	}
	snippet := script[i+len(start) : j]

	snippet = strings.ReplaceAll(snippet, `\/`, "/")
	decoded, err := strconv.Unquote(`"` + snippet + `"`)
	if err != nil {
		slog.Warn("could not decode extend response snippet", "err", err)
		return ""
	}
	return decoded
}

func (p *ExtendResponseParser) parseStatusBlob(blob string) ExtendResult {
	result := ExtendResult{Details: []ExtendDetail{}}
	if blob == "" {
		return result
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(blob))
	if err != nil {
		return result
	}
	items := doc.Find("ul.messages__list li")
	if items.Length() == 0 {
		slog.Warn("unexpected extend response structure, reporting 0 extensions; could be wrong")
		return result
	}

	first := items.First().Text()
	if strings.Contains(first, extendFailureMarker) {
		// messages could be a mix of successes and failures, but the site
		// is unclear; play safe and report no success at all
		return result
	}
	if !strings.Contains(first, extendSuccessMarker) {
		slog.Warn("unexpected extend response structure, reporting 0 extensions; could be wrong")
		return result
	}

	result.LikelySuccess = true
	items.Slice(1, items.Length()).Each(func(_ int, li *goquery.Selection) {
		title := htmlutil.CleanText(li.Find("em").First().Text())
		text := htmlutil.CleanText(li.Text())
		fields := strings.Fields(text)
		if title == "" || len(fields) == 0 {
			slog.Warn("unexpected extend response item, skipping", "text", text)
			return
		}
		until, err := parseDate(strings.Trim(fields[len(fields)-1], "."))
		if err != nil {
			slog.Warn("unexpected extend response item, skipping", "text", text)
			return
		}
		result.Details = append(result.Details, ExtendDetail{Title: title, Until: until})
	})
	result.Count = len(result.Details)

	return result
}
