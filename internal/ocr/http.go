package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"anpr-crossing/internal/domain/anpr"
	"anpr-crossing/internal/imaging"
)

// HTTPRecognizer sends plate crops to an OCR sidecar that answers with text
// fragments in reading order.
type HTTPRecognizer struct {
	endpoint string
	http     *http.Client
}

func NewHTTPRecognizer(baseURL string, httpClient *http.Client) *HTTPRecognizer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPRecognizer{
		endpoint: strings.TrimRight(baseURL, "/") + "/ocr",
		http:     httpClient,
	}
}

type ocrResponse struct {
	Fragments []anpr.Fragment `json:"fragments"`
}

func (r *HTTPRecognizer) Recognize(ctx context.Context, img image.Image) (*anpr.Recognition, error) {
	payload, err := imaging.EncodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognizer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("recognizer returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode recognizer response: %w", err)
	}
	if len(decoded.Fragments) == 0 {
		return nil, nil
	}
	return &anpr.Recognition{Fragments: decoded.Fragments}, nil
}
