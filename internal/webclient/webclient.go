package webclient

import (
	"context"
)

// WebClient issues HTTP requests against the target service.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}
