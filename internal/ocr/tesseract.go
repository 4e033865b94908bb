//go:build tesseract

package ocr

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"anpr-crossing/internal/domain/anpr"
	"anpr-crossing/internal/imaging"
)

// TesseractRecognizer runs an in-process tesseract client. Word confidences are
// reported by tesseract on a 0-100 scale and are rescaled to [0,1].
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

func NewTesseractRecognizer(language string) (*TesseractRecognizer, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	// plates are a single line of text
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &TesseractRecognizer{client: client}, nil
}

func (r *TesseractRecognizer) Recognize(ctx context.Context, img image.Image) (*anpr.Recognition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := imaging.EncodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetImageFromBytes(payload); err != nil {
		return nil, fmt.Errorf("failed to set OCR image: %w", err)
	}
	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get bounding boxes: %w", err)
	}

	fragments := make([]anpr.Fragment, 0, len(boxes))
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		fragments = append(fragments, anpr.Fragment{Text: b.Word, Confidence: b.Confidence / 100})
	}
	if len(fragments) == 0 {
		return nil, nil
	}
	return &anpr.Recognition{Fragments: fragments}, nil
}

func (r *TesseractRecognizer) Close() error {
	return r.client.Close()
}
