package port

import (
	"context"
	"image"
)

// FrameSource produces frames in order. Next returns io.EOF once the source is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
	Close() error
}
