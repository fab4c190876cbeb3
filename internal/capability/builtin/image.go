package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"factotum/internal/capability"
	"factotum/internal/logging"
)

const defaultJPEGQuality = 85

// CompressOrResizeImage resizes and/or re-encodes an image inside the
// sandbox. The output lands next to the input with a "_processed" suffix so
// the original is never clobbered.
type CompressOrResizeImage struct {
	logger logging.Logger
}

func NewCompressOrResizeImage(cfg Config) *CompressOrResizeImage {
	return &CompressOrResizeImage{logger: cfg.Logger}
}

func (c *CompressOrResizeImage) Descriptor() capability.Descriptor {
	return capability.Descriptor{
		Name:        "compress_or_resize_image",
		Description: "Resizes an image to given dimensions and/or compresses it with a JPEG quality setting.",
		PathParams:  []string{"file"},
		Rules: []capability.Rule{
			capability.MustRule("file", `(?:image|resize|compress) ([\w./-]+\.(?:jpe?g|png|gif|bmp|tiff?))`, true, nil, capability.TypeString),
			capability.MustRule("size", `to (\d+\s?x\s?\d+)`, false, nil, capability.TypeDimensions),
			capability.MustRule("quality", `quality (\d+)`, false, defaultJPEGQuality, capability.TypeInt),
		},
	}
}

func (c *CompressOrResizeImage) Execute(ctx context.Context, args map[string]any) (any, error) {
	path := args["file"].(string)
	quality := args["quality"].(int)
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("quality must be between 1 and 100, got %d", quality)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}

	original := img.Bounds().Size()
	if dims, ok := args["size"].(capability.Dimensions); ok {
		img = imaging.Resize(img, dims.Width, dims.Height, imaging.Lanczos)
	}

	output := processedPath(path)
	if err := imaging.Save(img, output, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	info, err := os.Stat(output)
	if err != nil {
		return nil, fmt.Errorf("stat output: %w", err)
	}
	final := img.Bounds().Size()
	c.logger.Info("compress_or_resize_image: %s %dx%d -> %s %dx%d (%d bytes)",
		path, original.X, original.Y, output, final.X, final.Y, info.Size())

	return map[string]any{
		"source":          path,
		"output":          output,
		"original_width":  original.X,
		"original_height": original.Y,
		"width":           final.X,
		"height":          final.Y,
		"quality":         quality,
		"bytes":           info.Size(),
	}, nil
}

// processedPath derives the output filename: photo.png -> photo_processed.png.
func processedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_processed" + ext
}
