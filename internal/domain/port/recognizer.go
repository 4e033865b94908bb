package port

import (
	"context"
	"image"

	"anpr-crossing/internal/domain/anpr"
)

// Recognizer reads text from a plate crop. A nil result means no text was found.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (*anpr.Recognition, error)
}
