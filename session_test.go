package mijnbib

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionRedirectHandling(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/redir", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusFound)
	})
	mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "arrived")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, err := NewSession(5 * time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := s.Get(ctx, srv.URL+"/redir")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	require.Equal(t, "arrived", res.String())

	res, err = s.GetNoRedirect(ctx, srv.URL+"/redir")
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, res.StatusCode())
	require.Equal(t, "/target", res.Header().Get("Location"))

	res, err = s.PostFormNoRedirect(ctx, srv.URL+"/redir", map[string]string{"k": "v"})
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, res.StatusCode())
}

// Both clients of a session must share one cookie jar, otherwise cookies set
// during the login handshake would be lost for the page requests.
func TestSessionSharedCookieJar(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "s1", Path: "/"})
	})
	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sid"); err == nil && c.Value == "s1" {
			fmt.Fprint(w, "ok")
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, err := NewSession(5 * time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.GetNoRedirect(ctx, srv.URL+"/set")
	require.NoError(t, err)

	res, err := s.Get(ctx, srv.URL+"/check")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
}

func TestSessionConnectError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	s, err := NewSession(time.Second)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), srv.URL)
	var connErr *CanNotConnectError
	require.True(t, errors.As(err, &connErr))
}
