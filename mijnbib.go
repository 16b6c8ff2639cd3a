// Package mijnbib is a scraping client for the mijn.bibliotheek.be library
// portal. It logs in through the site's OAuth-style redirect handshake and
// extracts accounts, loans and reservations from the server-rendered pages.
//
// The site offers no stable API: this package targets its current contract
// and fails with IncompatibleSourceError when that contract breaks.
package mijnbib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("mijnbib")

const (
	baseDomain     = "bibliotheek.be"
	defaultTimeout = 15 * time.Second
)

// Options configure a Client. The zero value targets the production site
// with the OAuth handshake and the built-in extractors.
type Options struct {
	// City is the optional subdomain, typically a city name. The site no
	// longer requires it; leave it blank.
	City string
	// BaseURL overrides the portal root entirely, City included. Meant for
	// tests and alternate deployments.
	BaseURL string
	// Timeout applies to every HTTP request. Defaults to 15 seconds.
	Timeout time.Duration
	// Authenticator drives the login handshake. Defaults to the OAuth
	// redirect chase; FormAuthenticator is the slower browser-like option.
	Authenticator Authenticator

	// Per-page extractor overrides, for tracking site changes without
	// forking the client. Nil fields keep the built-in extractors.
	Accounts     AccountsParser
	Loans        LoansParser
	Reservations ReservationsParser
	ExtendResult ExtendResultParser
}

// Client is the facade over the portal: it logs in lazily on first need and
// hands fetched payloads to the page extractors.
//
// A Client owns its cookie-bearing session exclusively and is not safe for
// concurrent use; serialize calls or use one Client per goroutine.
type Client struct {
	baseURL string
	creds   Credentials
	session *Session
	auth    Authenticator

	accounts     AccountsParser
	loans        LoansParser
	reservations ReservationsParser
	extend       ExtendResultParser

	loggedIn bool
}

func NewClient(username, password string, opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	session, err := NewSession(timeout)
	if err != nil {
		return nil, err
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		subdomain := ""
		if city := strings.TrimSpace(strings.ToLower(opts.City)); city != "" {
			slog.Warn("the city option is no longer required, you can leave it blank")
			subdomain = city + "."
		}
		baseURL = "https://" + subdomain + baseDomain
	}

	auth := opts.Authenticator
	if auth == nil {
		auth = &OAuthAuthenticator{}
	}

	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		creds:        Credentials{Username: username, Password: password},
		session:      session,
		auth:         auth,
		accounts:     opts.Accounts,
		loans:        opts.Loans,
		reservations: opts.Reservations,
		extend:       opts.ExtendResult,
	}
	if c.accounts == nil {
		c.accounts = &MembershipsParser{}
	}
	if c.loans == nil {
		c.loans = &LoansPageParser{}
	}
	if c.reservations == nil {
		c.reservations = &ReservationsPageParser{}
	}
	if c.extend == nil {
		c.extend = &ExtendResponseParser{}
	}
	return c, nil
}

func (c *Client) loginURL() string {
	// the destination parameter loads considerably faster than the default
	// overview page, especially for a cold cache
	return c.baseURL + "/mijn-bibliotheek/aanmelden?destination=/mijn-bibliotheek/lidmaatschappen"
}

func (c *Client) membershipURL(accountID, page string) string {
	return fmt.Sprintf("%s/mijn-bibliotheek/lidmaatschappen/%s/%s", c.baseURL, accountID, page)
}

// Login authenticates the session. It is idempotent and is called
// automatically by the other operations when needed.
func (c *Client) Login(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	slog.InfoContext(ctx, "logging in", "url", c.loginURL(), "user", c.creds.Username)
	if err := c.auth.Login(ctx, c.session, c.creds, c.loginURL()); err != nil {
		span.SetStatus(codes.Error, "login failed")
		return err
	}
	c.loggedIn = true
	return nil
}

// Accounts returns all memberships of the logged-in profile, with loan and
// reservation counts and open amounts where the site reports them.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	ctx, span := tracer.Start(ctx, "client:Accounts")
	defer span.End()

	if err := c.Login(ctx); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "retrieving accounts")
	listingURL := c.baseURL + "/api/my-library/memberships"
	res, err := c.session.Get(ctx, listingURL)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch memberships")
		return nil, err
	}
	if res.StatusCode() >= 500 {
		return nil, &TemporarySiteError{Msg: fmt.Sprintf(
			"memberships listing responded with status %d", res.StatusCode())}
	}
	if res.StatusCode() != http.StatusOK {
		return nil, &IncompatibleSourceError{
			Msg:  fmt.Sprintf("memberships listing responded with status %d", res.StatusCode()),
			Body: res.String(),
		}
	}

	return c.accounts.Parse(res.Body(), c.baseURL, func(accountID string) ([]byte, error) {
		r, err := c.session.Get(ctx, fmt.Sprintf("%s/api/my-library/%s/activities", c.baseURL, accountID))
		if err != nil {
			return nil, err
		}
		return r.Body(), nil
	})
}

// Loans returns the current loans of one account.
func (c *Client) Loans(ctx context.Context, accountID string) ([]Loan, error) {
	ctx, span := tracer.Start(ctx, "client:Loans")
	defer span.End()

	if err := c.Login(ctx); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "retrieving loans", "account", accountID)
	body, err := c.openAccountPage(ctx, c.membershipURL(accountID, "uitleningen"))
	if err != nil {
		span.SetStatus(codes.Error, "failed to open loans page")
		return nil, err
	}

	loans, err := c.loans.Parse(body, c.baseURL, accountID)
	if err != nil {
		var transient *TemporarySiteError
		if errors.As(err, &transient) {
			return nil, err
		}
		return nil, &IncompatibleSourceError{
			Msg:  fmt.Sprintf("problem scraping loans (%v)", err),
			Body: body,
			Err:  err,
		}
	}
	return loans, nil
}

// Reservations returns the pending and ready holds of one account.
func (c *Client) Reservations(ctx context.Context, accountID string) ([]Reservation, error) {
	ctx, span := tracer.Start(ctx, "client:Reservations")
	defer span.End()

	if err := c.Login(ctx); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "retrieving reservations", "account", accountID)
	body, err := c.openAccountPage(ctx, c.membershipURL(accountID, "reservaties"))
	if err != nil {
		span.SetStatus(codes.Error, "failed to open reservations page")
		return nil, err
	}

	holds, err := c.reservations.Parse(body)
	if err != nil {
		var transient *TemporarySiteError
		if errors.As(err, &transient) {
			return nil, err
		}
		return nil, &IncompatibleSourceError{
			Msg:  fmt.Sprintf("problem scraping reservations (%v)", err),
			Body: body,
			Err:  err,
		}
	}
	return holds, nil
}

// AllInfo aggregates accounts with their loans and reservations, keyed by
// account id. Loans and reservations pages are only fetched for accounts
// whose respective count is a confirmed non-zero; unknown counts skip the
// fetch.
func (c *Client) AllInfo(ctx context.Context) (map[string]AccountInfo, error) {
	ctx, span := tracer.Start(ctx, "client:AllInfo")
	defer span.End()

	slog.InfoContext(ctx, "retrieving all information")
	accounts, err := c.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	info := make(map[string]AccountInfo, len(accounts))
	for _, acc := range accounts {
		entry := AccountInfo{
			Account:      acc,
			Loans:        []Loan{},
			Reservations: []Reservation{},
		}
		if acc.LoansCount != nil && *acc.LoansCount != 0 {
			entry.Loans, err = c.Loans(ctx, acc.ID)
			if err != nil {
				return nil, err
			}
		}
		if acc.ReservationsCount != nil && *acc.ReservationsCount != 0 {
			entry.Reservations, err = c.Reservations(ctx, acc.ID)
			if err != nil {
				return nil, err
			}
		}
		info[acc.ID] = entry
	}
	return info, nil
}

// ExtendLoansResult is the outcome of one extension attempt. Loans holds
// the refreshed loan list scraped off the response page, or nil when it was
// not retrieved (simulated run, or unparsable page).
type ExtendLoansResult struct {
	Success bool
	Loans   []Loan
	Details ExtendResult
}

// ExtendLoans requests a due-date extension through extendURL, which must
// have the shape the loans page advertises in Loan.ExtendURL:
//
//	https://city.bibliotheek.be/mijn-bibliotheek/lidmaatschappen/123/uitleningen/verlengen?loan-ids=456%2C789
//
// With execute false no mutating request is issued and a zero result comes
// back. Details are best-effort: evaluating whether an extension really
// succeeded is ambiguous on the server side, so treat Details.LikelySuccess
// as a suggestion. A 500 response is reported as ExtendLoanError; when
// multiple loan ids were submitted some of them might have been extended
// anyway, which the server gives no way to distinguish.
func (c *Client) ExtendLoans(ctx context.Context, extendURL string, execute bool) (ExtendLoansResult, error) {
	ctx, span := tracer.Start(ctx, "client:ExtendLoans")
	defer span.End()

	if err := c.Login(ctx); err != nil {
		return ExtendLoansResult{}, err
	}

	accountID := accountIDFromExtendURL(extendURL)
	if accountID == "" {
		return ExtendLoansResult{}, &InvalidExtendURLError{
			URL: extendURL,
			Msg: fmt.Sprintf("probably invalid extend loan url: %s", extendURL),
		}
	}

	if !execute {
		slog.WarnContext(ctx, "simulating loan extension, no request is issued")
		return ExtendLoansResult{Details: ExtendResult{Details: []ExtendDetail{}}}, nil
	}

	slog.InfoContext(ctx, "extending loans", "url", extendURL)
	// without a Referer pointing at the account's loans page the server
	// responds with a 500
	res, err := c.session.GetWithReferer(ctx, extendURL, c.membershipURL(accountID, "uitleningen"))
	if err != nil {
		span.SetStatus(codes.Error, "failed to request extension")
		return ExtendLoansResult{}, err
	}
	if res.StatusCode() >= 500 {
		return ExtendLoansResult{}, &ExtendLoanError{Msg: fmt.Sprintf(
			"could not extend loans using url %s (status %d)", extendURL, res.StatusCode())}
	}

	body := res.String()
	success := res.StatusCode() == http.StatusOK

	details := c.extend.Parse(body)
	if strings.Contains(body, extendFailureMarker) {
		// valid page but with a Foutmelding
		success = false
	}

	loans, err := c.loans.Parse(body, c.baseURL, accountID)
	if err != nil {
		slog.WarnContext(ctx, "could not parse loan list off extension response", "err", err)
		loans = nil
	}

	return ExtendLoansResult{Success: success, Loans: loans, Details: details}, nil
}

// ExtendLoansByIDs builds the composite extend URL for the given
// (account id, extend id) pairs and delegates to ExtendLoans. The first
// pair's account id addresses the loans page the extension runs under.
func (c *Client) ExtendLoansByIDs(ctx context.Context, reqs []ExtendRequest, execute bool) (ExtendLoansResult, error) {
	if len(reqs) == 0 {
		return ExtendLoansResult{}, fmt.Errorf("extend request list must not be empty")
	}

	ids := make([]string, len(reqs))
	for i, r := range reqs {
		ids[i] = r.AccountID + "|" + r.ExtendID
	}
	extendURL := fmt.Sprintf("%s?loan-ids=%s",
		c.membershipURL(reqs[0].AccountID, "uitleningen/verlengen"),
		url.QueryEscape(strings.Join(ids, ",")))
	return c.ExtendLoans(ctx, extendURL, execute)
}

func (c *Client) openAccountPage(ctx context.Context, pageURL string) (string, error) {
	res, err := c.session.Get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	switch {
	case res.StatusCode() == http.StatusNotFound:
		return "", &ItemAccessError{
			Msg: fmt.Sprintf("page can not be opened (404 response), likely incorrect "+
				"or nonexisting account id in url %s", pageURL),
			NotFound: true,
		}
	case res.StatusCode() >= 500:
		return "", &TemporarySiteError{Msg: fmt.Sprintf(
			"page can not be opened (%d response), url %s", res.StatusCode(), pageURL)}
	case res.StatusCode() != http.StatusOK:
		return "", &ItemAccessError{Msg: fmt.Sprintf(
			"page can not be opened (%d response), url %s", res.StatusCode(), pageURL)}
	}
	return res.String(), nil
}

// accountIDFromExtendURL pulls the account id out of an extend URL of the
// shape .../mijn-bibliotheek/lidmaatschappen/<id>/uitleningen/verlengen.
func accountIDFromExtendURL(extendURL string) string {
	u, err := url.Parse(extendURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(u.Path, "/")
	for i, s := range segments {
		if s == "lidmaatschappen" && i+1 < len(segments) {
			return segments[i+1]
		}
	}
	return ""
}
