package mijnbib

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "mijnbib (+https://github.com/wvanhed/mijnbib)"

// Session is the cookie-bearing HTTP context shared by all requests of one
// Client. It holds two resty clients over a single cookie jar: one that
// follows redirects and one that hands redirect responses back to the
// caller, which the login handshake needs to inspect Location headers.
//
// A Session carries no retry logic; retries, if any, belong to the caller.
type Session struct {
	follow *resty.Client
	bare   *resty.Client
}

func NewSession(timeout time.Duration) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	follow := resty.New()
	follow.SetCookieJar(jar)
	follow.SetHeader("User-Agent", userAgent)
	follow.SetTimeout(timeout)

	bare := resty.New()
	bare.SetCookieJar(jar)
	bare.SetHeader("User-Agent", userAgent)
	bare.SetTimeout(timeout)
	bare.GetClient().CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Session{follow: follow, bare: bare}, nil
}

// Get fetches url, following redirects.
func (s *Session) Get(ctx context.Context, url string) (*resty.Response, error) {
	res, err := s.follow.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &CanNotConnectError{URL: url, Err: err}
	}
	return res, nil
}

// GetWithReferer fetches url with a Referer header on this request only.
func (s *Session) GetWithReferer(ctx context.Context, url, referer string) (*resty.Response, error) {
	res, err := s.follow.R().SetContext(ctx).SetHeader("Referer", referer).Get(url)
	if err != nil {
		return nil, &CanNotConnectError{URL: url, Err: err}
	}
	return res, nil
}

// GetNoRedirect fetches url without following redirects, so an intermediate
// 3xx response and its Location header reach the caller.
func (s *Session) GetNoRedirect(ctx context.Context, url string) (*resty.Response, error) {
	res, err := s.bare.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &CanNotConnectError{URL: url, Err: err}
	}
	return res, nil
}

// PostForm posts form data to url, following redirects.
func (s *Session) PostForm(ctx context.Context, url string, data map[string]string) (*resty.Response, error) {
	res, err := s.follow.R().SetContext(ctx).SetFormData(data).Post(url)
	if err != nil {
		return nil, &CanNotConnectError{URL: url, Err: err}
	}
	return res, nil
}

// PostFormNoRedirect posts form data to url without following redirects.
func (s *Session) PostFormNoRedirect(ctx context.Context, url string, data map[string]string) (*resty.Response, error) {
	res, err := s.bare.R().SetContext(ctx).SetFormData(data).Post(url)
	if err != nil {
		return nil, &CanNotConnectError{URL: url, Err: err}
	}
	return res, nil
}
