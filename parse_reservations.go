package mijnbib

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/wvanhed/mijnbib/internal/htmlutil"
)

// ReservationsParser converts one reservations-page HTML payload into
// Reservation records.
type ReservationsParser interface {
	Parse(html string) ([]Reservation, error)
}

const (
	availableMarker = "Klaar om af te halen"
	requestOnMarker = "Aangevraagd op"
	validTillMarker = "Aanvraag geldig tot"
)

// ReservationsPageParser is the default ReservationsParser. Missing
// sub-fields are logged and left unset, never fatal.
type ReservationsPageParser struct{}

func (p *ReservationsPageParser) Parse(html string) ([]Reservation, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	holds := []Reservation{}
	wrapper := doc.Find("div.my-library-user-library-account-holds__hold-wrapper").First()
	if wrapper.Length() == 0 {
		if strings.Contains(doc.Text(), temporaryErrorBanner) {
			return nil, &TemporarySiteError{
				Msg: "reservations can not be retrieved, site reports: " + temporaryErrorBanner,
			}
		}
		return holds, nil
	}

	wrapper.Children().Each(func(_ int, card *goquery.Selection) {
		holds = append(holds, p.parseCard(card))
	})

	slog.Debug("parsed reservations page", "holds", len(holds))
	return holds, nil
}

func (p *ReservationsPageParser) parseCard(card *goquery.Selection) Reservation {
	var hold Reservation

	hold.Type = htmlutil.CleanText(card.Find("div.catalog-item-small-teaser__content span").First().Text())

	if para := paragraphWith(card, requestOnMarker); para.Length() > 0 {
		text := strings.TrimSpace(strings.Replace(para.Text(), requestOnMarker, "", 1))
		if on, err := parseDate(text); err == nil {
			hold.RequestOn = &on
		} else {
			slog.Warn("unexpected hold card structure, ignoring hold request date")
		}
	} else {
		slog.Warn("unexpected hold card structure, ignoring hold request date")
	}

	// once an item is available for pickup this date is not present anymore
	if para := paragraphWith(card, validTillMarker); para.Length() > 0 {
		text := strings.TrimSpace(strings.Replace(para.Text(), validTillMarker, "", 1))
		if till, err := parseDate(text); err == nil {
			hold.ValidTill = &till
		}
	}

	if a, ok := htmlutil.FirstAnchor(card.Find("h2.catalog-item-small-teaser__title")); ok {
		hold.Title = a.Name
		hold.URL = a.Href
	} else {
		slog.Warn("unexpected hold card structure, ignoring hold title and url")
	}

	hold.Author = htmlutil.CleanText(card.Find("div.catalog-item-small-teaser__authors").First().Text())

	if loc := card.Find("div.card--third-section strong").First(); loc.Length() > 0 {
		hold.Location = htmlutil.CleanText(loc.Text())
	} else {
		slog.Warn("unexpected hold card structure, ignoring hold location")
	}

	status := card.Find("div.card--fourth-section").First()
	heading := status.Find("h3").First()
	if heading.Length() == 0 {
		slog.Warn("unexpected hold card structure, ignoring hold availability")
		return hold
	}
	hold.Available = strings.Contains(heading.Text(), availableMarker)
	if hold.Available {
		if till, err := parseDate(status.Find("strong").First().Text()); err == nil {
			hold.AvailableTill = &till
		} else {
			slog.Warn("unexpected hold card structure, ignoring hold availability end date")
		}
	}

	return hold
}

func paragraphWith(card *goquery.Selection, marker string) *goquery.Selection {
	return card.Find("p").FilterFunction(func(_ int, p *goquery.Selection) bool {
		return strings.Contains(p.Text(), marker)
	}).First()
}
