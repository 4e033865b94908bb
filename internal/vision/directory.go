package vision

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"anpr-crossing/internal/domain/port"
)

// DirectorySource replays still frames from a directory in file name order.
// Files that cannot be read or decoded are logged and skipped.
type DirectorySource struct {
	files []string
	next  int
	size  image.Point
	log   zerolog.Logger
}

func OpenDirectory(dir string, width, height int, log zerolog.Logger) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no frames found in %s", dir)
	}
	sort.Strings(files)

	return &DirectorySource{
		files: files,
		size:  image.Pt(width, height),
		log:   log.With().Str("component", "directory_source").Str("dir", dir).Logger(),
	}, nil
}

func (s *DirectorySource) Next(ctx context.Context) (image.Image, error) {
	for s.next < len(s.files) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := s.files[s.next]
		s.next++

		img, err := decodeFile(path)
		if err != nil {
			s.log.Warn().Err(err).Str("file", filepath.Base(path)).Msg("skipping unreadable frame")
			continue
		}
		return resize(img, s.size), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func (s *DirectorySource) Close() error { return nil }

func resize(img image.Image, size image.Point) image.Image {
	if img.Bounds().Size() == size || size.X <= 0 || size.Y <= 0 {
		return img
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Open picks a directory replay for a directory path and a video capture otherwise.
func Open(source string, width, height int, log zerolog.Logger) (port.FrameSource, error) {
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		src, err := OpenDirectory(source, width, height, log)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	src, err := OpenVideo(source, width, height)
	if err != nil {
		return nil, err
	}
	return src, nil
}
