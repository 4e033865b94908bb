//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
	"image"
)

var ErrVideoUnavailable = errors.New("gocv build tag is not enabled, only image directories can be read")

type VideoSource struct{}

func OpenVideo(string, int, int) (*VideoSource, error) {
	return nil, ErrVideoUnavailable
}

func (s *VideoSource) Next(context.Context) (image.Image, error) {
	return nil, ErrVideoUnavailable
}

func (s *VideoSource) Close() error { return nil }
