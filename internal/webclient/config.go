package webclient

import "time"

type Client string

const (
	ClientNetHTTP Client = "nethttp"
)

// Config carries the settings needed to construct a WebClient backend.
type Config struct {
	Client Client

	// Timeout bounds a whole request. Zero leaves net/http's default of no
	// timeout.
	Timeout time.Duration
}
