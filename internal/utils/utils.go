package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var (
	ErrEmptyURL          = errors.New("empty url")
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	ErrMissingHost       = errors.New("url has no host")
)

// URLTools wraps a normalized base URL of the target service.
type URLTools struct {
	URL *url.URL
}

func NewURLTools(raw string) (*URLTools, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse url %s: %w", raw, err)
	}

	urlTools := &URLTools{
		URL: u,
	}
	if err := urlTools.normalize(); err != nil {
		return nil, err
	}

	return urlTools, nil
}

func (u *URLTools) normalize() error {
	u.URL.Scheme = strings.ToLower(u.URL.Scheme)
	if u.URL.Scheme != "http" && u.URL.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.URL.Scheme)
	}

	host, port := u.URL.Hostname(), u.URL.Port()
	if host == "" {
		return ErrMissingHost
	}
	if net.ParseIP(host) == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return fmt.Errorf("invalid host %q: %w", host, err)
		}
		host = ascii
	}
	host = strings.ToLower(host)

	if (u.URL.Scheme == "http" && port == "80") || (u.URL.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	u.URL.Host = host

	u.URL.Fragment = ""
	u.URL.RawFragment = ""
	u.URL.RawQuery = ""
	u.URL.Path = strings.TrimRight(u.URL.Path, "/")
	u.URL.RawPath = ""
	return nil
}

// String returns the normalized base URL without a trailing slash.
func (u *URLTools) String() string {
	return u.URL.String()
}

// Endpoint joins an API path onto the base URL, keeping any base path prefix.
//
// Examples:
//
//	Base: http://localhost:8080        Endpoint("/login")  → "http://localhost:8080/login"
//	Base: http://example.com/api/      Endpoint("tweets")  → "http://example.com/api/tweets"
func (u *URLTools) Endpoint(path string) string {
	out := *u.URL
	out.Path = u.URL.Path + "/" + strings.TrimLeft(path, "/")
	return out.String()
}

// NormalizeBaseURL is a shorthand for NewURLTools(raw).String().
func NormalizeBaseURL(raw string) (string, error) {
	u, err := NewURLTools(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
