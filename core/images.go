package core

import (
	"context"
	"io"
)

// ImageHost stores images publicly and returns their URL.
type ImageHost interface {
	Upload(ctx context.Context, r io.Reader, filename string) (url string, err error)
	// Fetch downloads a hosted image.
	Fetch(ctx context.Context, url string) (content []byte, contentType string, err error)
}
