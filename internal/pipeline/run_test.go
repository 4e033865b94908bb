package pipeline

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"anpr-crossing/internal/domain/anpr"
)

func TestRunUntilSourceExhausted(t *testing.T) {
	rec := alwaysRead("AB-12", 0.9)
	sink := &fakeSink{}
	p := newTestPipeline(t, rec, sink)

	source := &sliceSource{frames: []image.Image{testFrame(), testFrame(), testFrame(), testFrame()}}
	detector := &scriptedDetector{
		script: [][]anpr.Detection{
			{centeredAt(1, 40, 40)},
			{centeredAt(1, 5, 5)},
			nil,
			{centeredAt(1, 5, 5), centeredAt(2, 6, 6)},
		},
		errs: map[int]error{2: errors.New("tracker timeout")},
	}

	err := p.Run(context.Background(), source, detector)

	require.NoError(t, err)
	require.Equal(t, 4, detector.calls)
	require.Equal(t, 2, p.Count())
	require.Equal(t, []string{"AB 12", "AB 12"}, sink.Texts())
	require.Equal(t, int64(1), sink.records[0].TrackID)
	require.Equal(t, int64(2), sink.records[1].TrackID)
}

func TestRunReturnsSourceError(t *testing.T) {
	p := newTestPipeline(t, alwaysRead("AB", 0.9), &fakeSink{})
	boom := errors.New("decoder crashed")
	source := &sliceSource{frames: []image.Image{testFrame(), testFrame()}, errAt: 1, err: boom}

	err := p.Run(context.Background(), source, &scriptedDetector{})

	require.ErrorIs(t, err, boom)
}

func TestRunStopsOnCancel(t *testing.T) {
	p := newTestPipeline(t, alwaysRead("AB", 0.9), &fakeSink{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &sliceSource{frames: []image.Image{testFrame()}}
	detector := &scriptedDetector{}

	require.NoError(t, p.Run(ctx, source, detector))
	require.Zero(t, detector.calls)
}

// cancellingDetector cancels the run while a frame is being processed; the frame
// still completes, including its recognition and sink calls.
type cancellingDetector struct {
	cancel context.CancelFunc
	calls  int
}

func (d *cancellingDetector) Detect(ctx context.Context, _ image.Image) ([]anpr.Detection, error) {
	d.calls++
	d.cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []anpr.Detection{centeredAt(5, 5, 5)}, nil
}

func TestRunCompletesInFlightFrameOnCancel(t *testing.T) {
	sink := &fakeSink{}
	p := newTestPipeline(t, alwaysRead("AB1234", 0.9), sink)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &sliceSource{frames: []image.Image{testFrame(), testFrame(), testFrame()}}
	detector := &cancellingDetector{cancel: cancel}

	require.NoError(t, p.Run(ctx, source, detector))
	require.Equal(t, 1, detector.calls)
	require.Equal(t, []string{"AB1234"}, sink.Texts())
}
