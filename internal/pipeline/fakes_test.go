package pipeline

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"

	"anpr-crossing/internal/domain/anpr"
)

type recognizerFunc func(call int) (*anpr.Recognition, error)

type fakeRecognizer struct {
	mu     sync.Mutex
	calls  int
	sizes  []image.Rectangle
	answer recognizerFunc
}

func (f *fakeRecognizer) Recognize(_ context.Context, img image.Image) (*anpr.Recognition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.sizes = append(f.sizes, img.Bounds())
	return f.answer(f.calls)
}

func (f *fakeRecognizer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func alwaysRead(text string, confidence float64) *fakeRecognizer {
	return &fakeRecognizer{answer: func(int) (*anpr.Recognition, error) {
		return &anpr.Recognition{Fragments: []anpr.Fragment{{Text: text, Confidence: confidence}}}, nil
	}}
}

func readSequence(results ...*anpr.Recognition) *fakeRecognizer {
	return &fakeRecognizer{answer: func(call int) (*anpr.Recognition, error) {
		if call > len(results) {
			return nil, errors.New("unexpected recognizer call")
		}
		return results[call-1], nil
	}}
}

type fakeSink struct {
	mu      sync.Mutex
	records []anpr.PlateRecord
}

func (s *fakeSink) Append(_ context.Context, record anpr.PlateRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
}

func (s *fakeSink) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	texts := make([]string, 0, len(s.records))
	for _, r := range s.records {
		texts = append(texts, r.Text)
	}
	return texts
}

type sliceSource struct {
	frames []image.Image
	errAt  int
	err    error
	next   int
	closed bool
}

func (s *sliceSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil && s.next == s.errAt {
		s.next++
		return nil, s.err
	}
	if s.next >= len(s.frames) {
		return nil, io.EOF
	}
	frame := s.frames[s.next]
	s.next++
	return frame, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

// scriptedDetector returns the detections of script[i] for the i-th call.
type scriptedDetector struct {
	script [][]anpr.Detection
	errs   map[int]error
	calls  int
}

func (d *scriptedDetector) Detect(_ context.Context, _ image.Image) ([]anpr.Detection, error) {
	i := d.calls
	d.calls++
	if err, ok := d.errs[i]; ok {
		return nil, err
	}
	if i >= len(d.script) {
		return nil, nil
	}
	return d.script[i], nil
}
