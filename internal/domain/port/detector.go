package port

import (
	"context"
	"image"

	"anpr-crossing/internal/domain/anpr"
)

// Detector runs detection and tracking on one frame and returns detections in a stable order.
type Detector interface {
	Detect(ctx context.Context, frame image.Image) ([]anpr.Detection, error)
}
