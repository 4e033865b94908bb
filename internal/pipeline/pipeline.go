package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"anpr-crossing/internal/classes"
	"anpr-crossing/internal/domain/anpr"
	"anpr-crossing/internal/domain/port"
	"anpr-crossing/internal/geometry"
	"anpr-crossing/internal/imaging"
	"anpr-crossing/internal/utils"
)

// Defaults applied when the configuration leaves them unset. A read is accepted only
// when its confidence is strictly above the threshold.
const (
	DefaultThreshold  = 0.5
	DefaultCropWidth  = 160
	DefaultCropHeight = 50
)

// Config holds the per-camera settings of a Pipeline. Zero crop sizes fall back to the defaults.
type Config struct {
	Zone       *geometry.Zone
	Classes    classes.Names
	Threshold  float64
	CropWidth  int
	CropHeight int
	CameraID   string
	// Snapshots attaches the JPEG-encoded crop to every emitted record.
	Snapshots bool
}

// Pipeline turns per-frame detections into plate records. A track id gets a single
// recognition attempt: it is registered before the recognizer runs, whatever the outcome.
type Pipeline struct {
	cfg        Config
	registry   *Registry
	recognizer port.Recognizer
	sink       port.RecordSink
	now        func() time.Time
	log        zerolog.Logger
}

// Option customizes a Pipeline built by New.
type Option func(*Pipeline)

// WithClock replaces time.Now as the source of record entry dates and times.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRegistry shares a track registry, so a restarted pipeline keeps its seen tracks and count.
func WithRegistry(r *Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

// FrameResult summarizes what one frame produced.
type FrameResult struct {
	Records   []anpr.PlateRecord
	Crossings int
	Skipped   int
	Count     int
}

// New validates cfg and wires the recognizer and sink.
func New(cfg Config, recognizer port.Recognizer, sink port.RecordSink, log zerolog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg.Zone == nil {
		return nil, errors.New("zone is required")
	}
	if len(cfg.Classes) == 0 {
		return nil, errors.New("class names are required")
	}
	if recognizer == nil {
		return nil, errors.New("recognizer is required")
	}
	if sink == nil {
		return nil, errors.New("record sink is required")
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("threshold %v out of range [0,1]", cfg.Threshold)
	}
	if cfg.CropWidth <= 0 {
		cfg.CropWidth = DefaultCropWidth
	}
	if cfg.CropHeight <= 0 {
		cfg.CropHeight = DefaultCropHeight
	}

	p := &Pipeline{
		cfg:        cfg,
		registry:   NewRegistry(),
		recognizer: recognizer,
		sink:       sink,
		now:        time.Now,
		log:        log.With().Str("component", "pipeline").Str("camera_id", cfg.CameraID).Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Count is the number of distinct crossings so far.
func (p *Pipeline) Count() int {
	return p.registry.Count()
}

// ProcessFrame resolves every detection of one frame, in the order given.
func (p *Pipeline) ProcessFrame(ctx context.Context, frame image.Image, detections []anpr.Detection) FrameResult {
	var result FrameResult

	for _, det := range detections {
		className, err := p.validate(det)
		if err != nil {
			result.Skipped++
			p.log.Warn().
				Err(err).
				Int64("track_id", det.TrackID).
				Int("class_id", det.ClassID).
				Interface("box", det.Box).
				Msg("skipping malformed detection")
			continue
		}

		centroid := det.Box.Centroid()
		if !p.cfg.Zone.Contains(centroid) {
			continue
		}
		if !p.registry.Register(det.TrackID) {
			continue
		}

		result.Crossings++
		p.log.Info().
			Int64("track_id", det.TrackID).
			Str("class", className).
			Int("cx", centroid.X).
			Int("cy", centroid.Y).
			Int("count", p.registry.Count()).
			Msg("new zone crossing")

		record, ok := p.read(ctx, frame, det, className)
		if !ok {
			continue
		}

		p.sink.Append(ctx, record)
		result.Records = append(result.Records, record)
	}

	result.Count = p.registry.Count()
	return result
}

func (p *Pipeline) validate(det anpr.Detection) (string, error) {
	if !det.Box.Valid() {
		return "", fmt.Errorf("%w: degenerate box", anpr.ErrMalformedDetection)
	}
	className, err := p.cfg.Classes.Resolve(det.ClassID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", anpr.ErrMalformedDetection, err)
	}
	return className, nil
}

func (p *Pipeline) read(ctx context.Context, frame image.Image, det anpr.Detection, className string) (anpr.PlateRecord, bool) {
	crop, ok := imaging.Crop(frame, det.Box, p.cfg.CropWidth, p.cfg.CropHeight)
	if !ok {
		p.log.Warn().
			Int64("track_id", det.TrackID).
			Interface("box", det.Box).
			Msg("detection box lies outside the frame, nothing to recognize")
		return anpr.PlateRecord{}, false
	}

	recognition, err := p.recognizer.Recognize(ctx, crop)
	if err != nil {
		p.log.Warn().
			Err(err).
			Int64("track_id", det.TrackID).
			Msg("recognizer failed, track will not be retried")
		return anpr.PlateRecord{}, false
	}

	text, confidence, ok := recognition.Combine()
	if !ok {
		p.log.Debug().
			Int64("track_id", det.TrackID).
			Msg("no text recognized")
		return anpr.PlateRecord{}, false
	}
	if confidence <= p.cfg.Threshold {
		p.log.Info().
			Int64("track_id", det.TrackID).
			Str("raw_text", text).
			Float64("confidence", confidence).
			Float64("threshold", p.cfg.Threshold).
			Msg("recognition below confidence threshold")
		return anpr.PlateRecord{}, false
	}

	record := anpr.NewPlateRecord(utils.NormalizePlate(text), p.now())
	record.CameraID = p.cfg.CameraID
	record.TrackID = det.TrackID
	record.ClassName = className
	record.Confidence = confidence
	record.DetectionConfidence = det.Confidence
	record.Box = det.Box

	if p.cfg.Snapshots {
		snapshot, err := imaging.EncodeJPEG(crop)
		if err != nil {
			p.log.Warn().Err(err).Int64("track_id", det.TrackID).Msg("failed to encode plate snapshot")
		} else {
			record.Snapshot = snapshot
		}
	}

	p.log.Info().
		Str("record_id", record.ID.String()).
		Int64("track_id", det.TrackID).
		Str("plate", record.Text).
		Str("raw_text", text).
		Float64("confidence", confidence).
		Msg("plate read accepted")

	return record, true
}
