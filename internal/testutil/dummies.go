// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/tweetseed/internal/logging"
	"github.com/raysh454/tweetseed/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── WebClient ─────────────────────────────────────────────────────────

// ErrDummyFail is returned by DummyWebClient for URLs listed in FailURLs.
var ErrDummyFail = errors.New("dummy request failure")

// DummyWebClient implements webclient.WebClient without a network.
// By default it answers every request with status 200 and an empty body.
// Set FailURLs[url] = true to force a transport error for a URL, or
// Statuses[url] to choose its status code. Cookies[url] are set on the
// response.
type DummyWebClient struct {
	FailURLs map[string]bool
	Statuses map[string]int
	Cookies  map[string][]*http.Cookie

	mu       sync.Mutex
	Requests []*webclient.Request
	Closed   bool
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, ErrDummyFail
	}

	status := http.StatusOK
	if code, ok := d.Statuses[req.URL]; ok {
		status = code
	}
	return &webclient.Response{
		Request:    req,
		StatusCode: status,
		Cookies:    d.Cookies[req.URL],
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

// Snapshot returns a copy of the recorded requests.
func (d *DummyWebClient) Snapshot() []*webclient.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*webclient.Request(nil), d.Requests...)
}
