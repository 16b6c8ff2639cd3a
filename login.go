package mijnbib

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// Credentials identify a mijn.bibliotheek.be profile. Username may be an
// email address.
type Credentials struct {
	Username string
	Password string
}

// Authenticator drives one login handshake over a Session. Implementations
// must leave the session's cookie jar authenticated on success.
type Authenticator interface {
	Login(ctx context.Context, s *Session, creds Credentials, entryURL string) error
}

const defaultAuthURL = "https://mijn.bibliotheek.be/openbibid/rest/auth/login"

// Markers on the landing page that tell an authenticated session apart from
// a rejected one.
const (
	profileMarker        = "Profiel"
	privacyChangedMarker = "privacyverklaring is gewijzigd"
	privacyAcceptMarker  = "akkoord met de privacyverklaring"
)

func validateSession(body string) error {
	if strings.Contains(body, profileMarker) {
		return nil
	}
	if strings.Contains(body, privacyChangedMarker) || strings.Contains(body, privacyAcceptMarker) {
		return &AuthenticationError{
			Msg:           "login not accepted (likely need to accept privacy statement again)",
			PrivacyPolicy: true,
		}
	}
	return &AuthenticationError{Msg: "login not accepted"}
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// OAuthAuthenticator replays the site's OAuth-style redirect handshake:
// initiate, authorize, submit credentials, follow the completion redirect,
// then validate the landing page body.
type OAuthAuthenticator struct {
	// AuthURL overrides the credential-submission endpoint; the zero value
	// targets the production site.
	AuthURL string
}

func (a *OAuthAuthenticator) authURL() string {
	if a.AuthURL != "" {
		return a.AuthURL
	}
	return defaultAuthURL
}

func (a *OAuthAuthenticator) Login(ctx context.Context, s *Session, creds Credentials, entryURL string) error {
	ctx, span := tracer.Start(ctx, "login:oauth")
	defer span.End()

	// (1) initiate: the entry page redirects to the authorize endpoint,
	// carrying the handshake tokens in its query string
	res, err := s.GetNoRedirect(ctx, entryURL)
	if err != nil {
		span.SetStatus(codes.Error, "failed to reach login entry")
		return err
	}
	if res.StatusCode() >= 500 {
		return &TemporarySiteError{Msg: fmt.Sprintf(
			"expected a redirect during login, got status %d", res.StatusCode())}
	}
	if res.StatusCode() < 300 || res.StatusCode() >= 400 {
		return &IncompatibleSourceError{
			Msg:  fmt.Sprintf("expected a redirect during login, got status %d", res.StatusCode()),
			Body: res.String(),
		}
	}
	location := resolveURL(entryURL, res.Header().Get("Location"))
	target, err := url.Parse(location)
	if err != nil {
		return &IncompatibleSourceError{Msg: "unparsable login redirect target", Body: location, Err: err}
	}

	if target.RawQuery == "" {
		// a bare redirect target means the cookie jar already holds a live
		// session; validate it without submitting credentials
		slog.DebugContext(ctx, "already authenticated, skipping credential submission")
		return a.validateLanding(ctx, s, location)
	}

	query := target.Query()
	hint := query.Get("hint")
	token := query.Get("oauth_token")
	callback := query.Get("oauth_callback")
	if hint == "" || token == "" || callback == "" {
		return &IncompatibleSourceError{
			Msg:  "login redirect target misses one of hint, oauth_token, oauth_callback",
			Body: location,
		}
	}
	slog.DebugContext(ctx, "initiated login handshake", "hint", hint, "callback", callback)

	// (2) authorize: establishes the server-side handshake session
	res, err = s.GetNoRedirect(ctx, location)
	if err != nil {
		span.SetStatus(codes.Error, "failed to reach authorize endpoint")
		return err
	}
	if res.StatusCode() >= 500 {
		return &TemporarySiteError{Msg: fmt.Sprintf(
			"expected status 200 during login, got %d", res.StatusCode())}
	}
	if res.StatusCode() != http.StatusOK {
		return &IncompatibleSourceError{
			Msg:  fmt.Sprintf("expected status 200 during login, got %d", res.StatusCode()),
			Body: res.String(),
		}
	}

	// (3) submit credentials; success is a 303 whose Location carries the
	// oauth_verifier, a 200 means the credentials were rejected
	res, err = s.PostFormNoRedirect(ctx, a.authURL(), map[string]string{
		"hint":     hint,
		"token":    token,
		"callback": callback,
		"email":    creds.Username,
		"password": creds.Password,
	})
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit credentials")
		return err
	}
	switch {
	case res.StatusCode() == http.StatusOK:
		return &AuthenticationError{Msg: "login not accepted"}
	case res.StatusCode() >= 500:
		return &TemporarySiteError{Msg: fmt.Sprintf(
			"expected status 303 during login, got %d", res.StatusCode())}
	case res.StatusCode() != http.StatusSeeOther:
		return &IncompatibleSourceError{
			Msg:  fmt.Sprintf("expected status 303 during login, got %d", res.StatusCode()),
			Body: res.String(),
		}
	}
	completion := res.Header().Get("Location")
	if completion == "" {
		return &IncompatibleSourceError{
			Msg:  "credential submission returned no completion redirect",
			Body: res.String(),
		}
	}

	// (4) follow the completion redirect and validate the landing page
	return a.validateLanding(ctx, s, resolveURL(a.authURL(), completion))
}

func (a *OAuthAuthenticator) validateLanding(ctx context.Context, s *Session, landingURL string) error {
	res, err := s.Get(ctx, landingURL)
	if err != nil {
		return err
	}
	return validateSession(res.String())
}

// FormAuthenticator logs in by filling out the web login form, the way a
// browser would. Slower than the handshake but does not depend on the
// authorize endpoint.
type FormAuthenticator struct{}

func (a *FormAuthenticator) Login(ctx context.Context, s *Session, creds Credentials, entryURL string) error {
	ctx, span := tracer.Start(ctx, "login:form")
	defer span.End()

	res, err := s.Get(ctx, entryURL)
	if err != nil {
		span.SetStatus(codes.Error, "failed to reach login page")
		return err
	}
	if res.StatusCode() >= 500 {
		return &TemporarySiteError{Msg: fmt.Sprintf(
			"login page responded with status %d", res.StatusCode())}
	}
	startBody := res.String()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return &IncompatibleSourceError{Msg: "can not parse login page", Body: startBody, Err: err}
	}
	form := doc.Find("form").First()
	if form.Length() == 0 {
		return &IncompatibleSourceError{Msg: "can not find login form", Body: startBody}
	}

	data := map[string]string{}
	form.Find("input[type=hidden]").Each(func(_ int, in *goquery.Selection) {
		if name := in.AttrOr("name", ""); name != "" {
			data[name] = in.AttrOr("value", "")
		}
	})
	data["email"] = creds.Username
	data["password"] = creds.Password

	finalURL := entryURL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalURL = res.RawResponse.Request.URL.String()
	}
	action := resolveURL(finalURL, form.AttrOr("action", ""))

	res, err = s.PostForm(ctx, action, data)
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit login form")
		return err
	}
	return validateSession(res.String())
}
