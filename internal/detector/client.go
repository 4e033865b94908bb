package detector

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

	"github.com/rs/zerolog"

	"anpr-crossing/internal/domain/anpr"
	"anpr-crossing/internal/geometry"
	"anpr-crossing/internal/imaging"
)

const defaultTimeout = 10 * time.Second

// Client calls a detection and tracking sidecar that keeps track identities
// across the frames it is sent.
type Client struct {
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/track",
		http:     httpClient,
		log:      log.With().Str("component", "detector_client").Logger(),
	}
}

type trackResponse struct {
	Detections []struct {
		Box        []int   `json:"box"`
		ClassID    int     `json:"class_id"`
		TrackID    *int64  `json:"track_id"`
		Confidence float64 `json:"confidence"`
	} `json:"detections"`
}

func (c *Client) Detect(ctx context.Context, frame image.Image) ([]anpr.Detection, error) {
	payload, err := imaging.EncodeJPEG(frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("detector returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded trackResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode detector response: %w", err)
	}

	detections := make([]anpr.Detection, 0, len(decoded.Detections))
	for i, d := range decoded.Detections {
		// untracked objects cannot be deduplicated, so they never count as crossings
		if d.TrackID == nil {
			continue
		}
		// a bad entry is dropped on its own, the rest of the frame still counts
		if len(d.Box) != 4 {
			c.log.Warn().
				Err(anpr.ErrMalformedDetection).
				Int("index", i).
				Int64("track_id", *d.TrackID).
				Ints("box", d.Box).
				Msg("skipping detection without 4 box coordinates")
			continue
		}
		detections = append(detections, anpr.Detection{
			Box:        geometry.Box{X1: d.Box[0], Y1: d.Box[1], X2: d.Box[2], Y2: d.Box[3]},
			ClassID:    d.ClassID,
			TrackID:    *d.TrackID,
			Confidence: d.Confidence,
		})
	}
	return detections, nil
}
