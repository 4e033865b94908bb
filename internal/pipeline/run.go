package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"anpr-crossing/internal/domain/port"
)

// Run pulls frames one at a time until the source is exhausted or ctx is cancelled.
// Every frame is fully resolved before the next one is requested. Calls already in
// progress when ctx is cancelled run to completion.
func (p *Pipeline) Run(ctx context.Context, source port.FrameSource, detector port.Detector) error {
	work := context.WithoutCancel(ctx)
	var frames uint64

	for {
		if ctx.Err() != nil {
			p.log.Info().Uint64("frames", frames).Int("count", p.Count()).Msg("frame loop stopped")
			return nil
		}

		frame, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			p.log.Info().Uint64("frames", frames).Int("count", p.Count()).Msg("frame source exhausted")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			return fmt.Errorf("read frame %d: %w", frames+1, err)
		}
		frames++

		detections, err := detector.Detect(work, frame)
		if err != nil {
			p.log.Warn().Err(err).Uint64("frame", frames).Msg("detector failed, skipping frame")
			continue
		}

		result := p.ProcessFrame(work, frame, detections)
		if result.Crossings > 0 || result.Skipped > 0 {
			p.log.Debug().
				Uint64("frame", frames).
				Int("detections", len(detections)).
				Int("crossings", result.Crossings).
				Int("records", len(result.Records)).
				Int("skipped", result.Skipped).
				Int("count", result.Count).
				Msg("frame processed")
		}
	}
}
