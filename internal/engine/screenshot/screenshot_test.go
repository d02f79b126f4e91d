package screenshot

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x2 image: bottom row red, top row blue (OpenGL order).
var pixels = []byte{
	255, 0, 0, 255,
	0, 0, 255, 255,
}

func TestFromPixelsFlips(t *testing.T) {
	img, err := FromPixels(pixels, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 1))
}

func TestFromPixelsSizeMismatch(t *testing.T) {
	_, err := FromPixels(pixels, 2, 2)
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	c := New(dir, "objview")
	c.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	name, err := c.Save(pixels, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "objview_2024-05-01_12-30-00.000.png"), name)

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}
