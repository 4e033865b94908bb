package ocr

import (
	"fmt"

	"anpr-crossing/internal/config"
	"anpr-crossing/internal/domain/port"
)

// New builds the recognizer selected by cfg.Engine.
func New(cfg config.RecognitionConfig) (port.Recognizer, func() error, error) {
	switch cfg.Engine {
	case "http":
		return NewHTTPRecognizer(cfg.URL, nil), func() error { return nil }, nil
	case "tesseract":
		r, err := NewTesseractRecognizer(cfg.Language)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown recognizer engine %q", cfg.Engine)
	}
}
