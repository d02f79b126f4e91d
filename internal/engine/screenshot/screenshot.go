// Package screenshot writes OpenGL framebuffer contents to PNG files.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Capture names and writes screenshot files.
type Capture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// New creates a capture writing <prefix>_<timestamp>.png files into outputDir.
// An empty outputDir means the working directory.
func New(outputDir, prefix string) *Capture {
	return &Capture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Filename returns the path the next screenshot is written to.
func (c *Capture) Filename() string {
	name := fmt.Sprintf("%s_%s.png", c.prefix, c.now().Format("2006-01-02_15-04-05.000"))
	if c.outputDir != "" {
		name = filepath.Join(c.outputDir, name)
	}
	return name
}

// FromPixels converts bottom-up RGBA rows, as read back from OpenGL, into an image.
func FromPixels(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

// Save writes the pixels as a PNG and returns the file name.
func (c *Capture) Save(pixels []byte, width, height int) (string, error) {
	img, err := FromPixels(pixels, width, height)
	if err != nil {
		return "", err
	}

	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := c.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, file.Close()
}
