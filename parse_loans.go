package mijnbib

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/wvanhed/mijnbib/internal/htmlutil"
)

// LoansParser converts one loans-page HTML payload into Loan records.
type LoansParser interface {
	Parse(html, baseURL, accountID string) ([]Loan, error)
}

// Banner the site shows instead of the loan list when its backend is down.
const temporaryErrorBanner = "Er is een fout opgetreden bij het ophalen van informatie uit het " +
	"bibliotheeksysteem. Probeer het later opnieuw."

const notExtendableMarker = "Verlengen niet mogelijk"

// LoansPageParser is the default LoansParser. Branch names are interwoven
// siblings of the loan cards, so the wrapper's children are scanned in
// order while tracking the branch the following cards belong to.
type LoansPageParser struct{}

func (p *LoansPageParser) Parse(html, baseURL, accountID string) ([]Loan, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	loans := []Loan{}
	wrapper := doc.Find("div.my-library-user-library-account-loans__loan-wrapper").First()
	if wrapper.Length() == 0 {
		if strings.Contains(doc.Text(), temporaryErrorBanner) {
			return nil, &TemporarySiteError{
				Msg: "loans can not be retrieved, site reports: " + temporaryErrorBanner,
			}
		}
		return loans, nil
	}

	branch := "??"
	wrapper.Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "h2": // branch header, applies to every card until the next one
			branch = htmlutil.CleanText(child.Text())
		case "div":
			loans = append(loans, p.parseCard(child, baseURL, branch, accountID))
		default:
			slog.Warn("unexpected loans page structure, found neither loan nor branch",
				"node", goquery.NodeName(child))
		}
	})

	slog.Debug("parsed loans page", "loans", len(loans))
	return loans, nil
}

func (p *LoansPageParser) parseCard(card *goquery.Selection, baseURL, branch, accountID string) Loan {
	loan := Loan{BranchName: branch, AccountID: accountID}

	if a, ok := htmlutil.FirstAnchor(card.Find("h3.my-library-user-library-account-loans__loan-title")); ok {
		loan.Title = a.Name
		loan.URL = a.Href
		loan.ID = itemIDFromURL(a.Href)
	} else {
		slog.Warn("unexpected loan card structure, ignoring loan title, url and id")
	}

	loan.Author = htmlutil.CleanText(card.Find("div.author").First().Text())
	loan.Type = htmlutil.CleanText(card.Find("div.my-library-user-library-account-loans__loan-type-label").First().Text())
	loan.CoverURL = card.Find("img.my-library-user-library-account-loans__loan-cover-img").First().AttrOr("src", "")

	spans := card.Find("div.my-library-user-library-account-loans__loan-from-to span")
	if spans.Length() >= 4 {
		if from, err := parseDate(spans.Eq(1).Text()); err == nil {
			loan.LoanFrom = &from
		}
		if till, err := parseDate(spans.Eq(3).Text()); err == nil {
			loan.LoanTill = &till
		}
	}
	if loan.LoanFrom == nil || loan.LoanTill == nil {
		slog.Warn("unexpected loan card structure, ignoring loan start and end date")
	}

	p.parseExtendability(card, &loan, baseURL, accountID)
	return loan
}

// parseExtendability covers the three shapes the extend section comes in:
// an explicit "not possible" text, an action link carrying the extend URL,
// or (in a newer site UI) a bare checkbox whose id is the extend id. Any
// other shape leaves the tri-state unknown with empty extend fields.
func (p *LoansPageParser) parseExtendability(card *goquery.Selection, loan *Loan, baseURL, accountID string) {
	div := card.Find("div.card--extend-loan").First()
	if div.Length() == 0 {
		return
	}

	if htmlutil.CleanText(div.Text()) == notExtendableMarker {
		extendable := false
		loan.Extendable = &extendable
		return
	}

	if a := div.Find("a").First(); a.Length() > 0 {
		extendURL := resolveURL(baseURL, a.AttrOr("href", ""))
		id := extendIDFromURL(extendURL)
		if id == "" {
			return
		}
		extendable := true
		loan.Extendable = &extendable
		loan.ExtendURL = extendURL
		loan.ExtendID = id
		return
	}

	if id := div.Find("input").First().AttrOr("id", ""); id != "" {
		extendable := true
		loan.Extendable = &extendable
		loan.ExtendID = id
		loan.ExtendURL = resolveURL(baseURL, fmt.Sprintf(
			"/mijn-bibliotheek/lidmaatschappen/%s/uitleningen/verlengen?loan-ids=%s",
			accountID, id))
	}
}

// itemIDFromURL derives the catalog item id from a detail URL such as
// https://city.bibliotheek.be/resolver.ashx?extid=%7Cwise-oostvlaanderen%7C1324927
// by taking the last pipe-delimited segment of the extid parameter.
func itemIDFromURL(href string) string {
	if u, err := url.Parse(href); err == nil {
		if extid := u.Query().Get("extid"); extid != "" {
			parts := strings.Split(extid, "|")
			return parts[len(parts)-1]
		}
	}
	parts := strings.Split(href, "%7C")
	return parts[len(parts)-1]
}

func extendIDFromURL(extendURL string) string {
	u, err := url.Parse(extendURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("loan-ids")
}
