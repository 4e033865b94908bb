//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"io"
	"strconv"

	"gocv.io/x/gocv"
)

// VideoSource reads frames from a video file, stream URL or camera index and
// resizes every frame to the configured size before handing it out.
type VideoSource struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	resized gocv.Mat
	size    image.Point
}

func OpenVideo(source string, width, height int) (*VideoSource, error) {
	var device interface{} = source
	if id, err := strconv.Atoi(source); err == nil {
		device = id
	}

	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open video capture %q: %w", source, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video capture %q is not opened", source)
	}

	return &VideoSource{
		capture: capture,
		frame:   gocv.NewMat(),
		resized: gocv.NewMat(),
		size:    image.Pt(width, height),
	}, nil
}

func (s *VideoSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := s.capture.Read(&s.frame); !ok || s.frame.Empty() {
		return nil, io.EOF
	}

	gocv.Resize(s.frame, &s.resized, s.size, 0, 0, gocv.InterpolationLinear)
	img, err := s.resized.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	return img, nil
}

func (s *VideoSource) Close() error {
	s.frame.Close()
	s.resized.Close()
	return s.capture.Close()
}
