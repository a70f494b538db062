package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// SessionCookie is the cookie name RecordingServer hands out on /login.
const SessionCookie = "access_token"

// Call is one request seen by RecordingServer.
type Call struct {
	Method string
	Path   string
	Body   map[string]string
	// Token is the SessionCookie value sent with the request, if any.
	Token string
}

// RecordingServer is an httptest server that accepts any request, records it
// and replies with the status chosen by statusFor. A /login call always sets
// SessionCookie to LoginToken(email) so tests can tell sessions apart.
type RecordingServer struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []Call
	statusFor func(Call) int
}

// LoginToken is the session token RecordingServer issues for email.
func LoginToken(email string) string {
	return "token-" + email
}

// NewRecordingServer starts a server. statusFor may be nil, in which case
// every call answers 200.
func NewRecordingServer(statusFor func(Call) int) *RecordingServer {
	rs := &RecordingServer{statusFor: statusFor}
	rs.Server = httptest.NewServer(http.HandlerFunc(rs.handle))
	return rs
}

func (rs *RecordingServer) handle(w http.ResponseWriter, r *http.Request) {
	call := Call{Method: r.Method, Path: r.URL.Path, Body: map[string]string{}}
	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &call.Body)
	if c, err := r.Cookie(SessionCookie); err == nil {
		call.Token = c.Value
	}

	rs.mu.Lock()
	rs.calls = append(rs.calls, call)
	rs.mu.Unlock()

	status := http.StatusOK
	if rs.statusFor != nil {
		status = rs.statusFor(call)
	}
	if call.Path == "/login" {
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: LoginToken(call.Body["email"]), Path: "/"})
	}
	w.WriteHeader(status)
}

// Calls returns a copy of the recorded calls in arrival order.
func (rs *RecordingServer) Calls() []Call {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]Call(nil), rs.calls...)
}
