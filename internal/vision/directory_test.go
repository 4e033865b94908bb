package vision

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeFrame(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestDirectorySourceReplaysInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, filepath.Join(dir, "0002.png"), color.RGBA{G: 255, A: 255})
	writeFrame(t, filepath.Join(dir, "0001.png"), color.RGBA{R: 255, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	src, err := Open(dir, 102, 50, zerolog.Nop())
	require.NoError(t, err)
	defer src.Close()

	first, err := src.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, image.Pt(102, 50), first.Bounds().Size())
	r, g, _, _ := first.At(10, 10).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Zero(t, g)

	second, err := src.Next(context.Background())
	require.NoError(t, err)
	_, g, _, _ = second.At(10, 10).RGBA()
	require.Equal(t, uint32(0xffff), g)

	_, err = src.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestDirectorySourceEmpty(t *testing.T) {
	_, err := OpenDirectory(t.TempDir(), 10, 10, zerolog.Nop())
	require.Error(t, err)
}

func TestDirectorySourceCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, filepath.Join(dir, "a.png"), color.White)
	src, err := OpenDirectory(dir, 40, 20, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDirectorySourceSkipsUndecodableFrames(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, filepath.Join(dir, "0001.png"), color.RGBA{R: 255, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0002.jpg"), []byte("not a jpeg"), 0o644))
	writeFrame(t, filepath.Join(dir, "0003.png"), color.RGBA{B: 255, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0004.png"), nil, 0o644))

	src, err := OpenDirectory(dir, 40, 20, zerolog.Nop())
	require.NoError(t, err)

	first, err := src.Next(context.Background())
	require.NoError(t, err)
	r, _, _, _ := first.At(1, 1).RGBA()
	require.Equal(t, uint32(0xffff), r)

	second, err := src.Next(context.Background())
	require.NoError(t, err)
	_, _, b, _ := second.At(1, 1).RGBA()
	require.Equal(t, uint32(0xffff), b)

	_, err = src.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}
