package storage

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const (
	accessCookieName  = "deskhive_access_token"
	refreshCookieName = "deskhive_refresh_token"
)

// CookieTier keeps the pair in a cookie jar scoped to the API origin. Each
// cookie carries an explicit expiry equal to the access token's own, so the
// jar forgets the credentials exactly when the backend would reject them.
type CookieTier struct {
	jar *cookiejar.Jar
	url *url.URL
}

var _ Tier = (*CookieTier)(nil)

// NewCookieTier creates a cookie tier for the given API base URL.
func NewCookieTier(baseURL string) (*CookieTier, error) {
	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[NewCookieTier] parse base URL")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "[NewCookieTier] cookie jar")
	}
	return &CookieTier{jar: jar, url: origin}, nil
}

// Jar exposes the underlying jar so an HTTP client can share it.
func (c *CookieTier) Jar() http.CookieJar {
	return c.jar
}

func (c *CookieTier) Save(pair TokenPair, expiry time.Time) error {
	secure := c.url.Scheme == "https"
	c.jar.SetCookies(c.url, []*http.Cookie{
		tokenCookie(accessCookieName, pair.AccessToken, expiry, secure),
		tokenCookie(refreshCookieName, pair.RefreshToken, expiry, secure),
	})
	return nil
}

func (c *CookieTier) Load() (TokenPair, bool) {
	var pair TokenPair
	for _, cookie := range c.jar.Cookies(c.url) {
		switch cookie.Name {
		case accessCookieName:
			pair.AccessToken = cookie.Value
		case refreshCookieName:
			pair.RefreshToken = cookie.Value
		}
	}
	return pair, !pair.Empty()
}

func (c *CookieTier) Clear() {
	c.jar.SetCookies(c.url, []*http.Cookie{
		{Name: accessCookieName, Value: "", MaxAge: -1},
		{Name: refreshCookieName, Value: "", MaxAge: -1},
	})
}

// The Secure attribute must follow the origin's scheme: the jar only hands
// Secure cookies back for https URLs, so marking them Secure against an http
// origin would make every Load come back empty.
func tokenCookie(name, value string, expiry time.Time, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Secure:   secure,
		HttpOnly: true,
	}
	if !expiry.IsZero() {
		cookie.Expires = expiry
	}
	return cookie
}
