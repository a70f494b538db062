package webclient

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"golang.org/x/net/publicsuffix"
)

// Session holds the cookies a login response handed out, so later requests
// can authenticate as that user. A Session is never persisted.
type Session struct {
	owner string
	jar   *cookiejar.Jar
}

// NewSession returns an empty session for owner (an email or username used
// only for logging).
func NewSession(owner string) *Session {
	// cookiejar.New never returns a non-nil error
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &Session{owner: owner, jar: jar}
}

// Owner returns the identity the session was opened for.
func (s *Session) Owner() string {
	if s == nil {
		return ""
	}
	return s.owner
}

// Capture stores the cookies set on resp. A nil response (transport failure)
// leaves the session empty.
func (s *Session) Capture(resp *Response) {
	if s == nil || resp == nil || resp.Request == nil || len(resp.Cookies) == 0 {
		return
	}
	u, err := url.Parse(resp.Request.URL)
	if err != nil {
		return
	}
	s.jar.SetCookies(u, resp.Cookies)
}

// CookiesFor returns the cookies that apply to rawURL.
func (s *Session) CookiesFor(rawURL string) []*http.Cookie {
	if s == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return s.jar.Cookies(u)
}

// Empty reports whether the session holds no cookies for rawURL.
func (s *Session) Empty(rawURL string) bool {
	return len(s.CookiesFor(rawURL)) == 0
}
