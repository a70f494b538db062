package webclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	// Cookies are attached as a Cookie header, in order.
	Cookies []*http.Cookie
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	// Cookies holds the cookies the server set on this response.
	Cookies   []*http.Cookie
	FetchedAt time.Time
}

// NewJSONRequest builds a request whose body is payload encoded as JSON.
func NewJSONRequest(method, url string, payload any) (*Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s body: %w", method, url, err)
	}
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	return &Request{
		Method:  method,
		URL:     url,
		Headers: headers,
		Body:    body,
	}, nil
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
