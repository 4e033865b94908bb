//go:build !tesseract

package ocr

import (
	"context"
	"errors"
	"image"

	"anpr-crossing/internal/domain/anpr"
)

var ErrTesseractUnavailable = errors.New("tesseract recognizer not built in, rebuild with -tags tesseract")

type TesseractRecognizer struct{}

func NewTesseractRecognizer(string) (*TesseractRecognizer, error) {
	return nil, ErrTesseractUnavailable
}

func (r *TesseractRecognizer) Recognize(context.Context, image.Image) (*anpr.Recognition, error) {
	return nil, ErrTesseractUnavailable
}

func (r *TesseractRecognizer) Close() error { return nil }
