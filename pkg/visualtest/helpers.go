package visualtest

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/buffer"
	"github.com/qemacs/qemacs-sub000/pkg/document"
	"github.com/qemacs/qemacs-sub000/pkg/render"
	"github.com/qemacs/qemacs-sub000/pkg/screen/raster"
)

// RenderHTML renders markup into a width×height image.
func RenderHTML(src string, width, height int, log *zap.Logger, opts document.Options) (*image.RGBA, error) {
	scr := raster.New(width, height, log, raster.Options{DPI: opts.DPI, Media: opts.Media})
	doc := document.New(buffer.NewString(src), scr, log, opts)
	defer doc.Close()
	if err := doc.Display(image.Rect(0, 0, width, height), render.Selection{}); err != nil {
		return nil, err
	}
	return scr.Image(), nil
}

// RenderHTMLToFile renders markup to a PNG file
func RenderHTMLToFile(src, outputPath string, width, height int, opts document.Options) error {
	img, err := RenderHTML(src, width, height, nil, opts)
	if err != nil {
		return fmt.Errorf("render error: %w", err)
	}

	// Ensure output directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := savePNG(img, outputPath); err != nil {
		return fmt.Errorf("save error: %w", err)
	}
	return nil
}

// RenderHTMLFile renders an HTML file to a PNG file
func RenderHTMLFile(htmlPath, outputPath string, width, height int) error {
	content, err := os.ReadFile(htmlPath)
	if err != nil {
		return fmt.Errorf("failed to read HTML file: %w", err)
	}
	return RenderHTMLToFile(string(content), outputPath, width, height, document.Options{Filename: htmlPath})
}

// UpdateReferenceImage generates a new reference image
// Use this when you've intentionally changed rendering behavior
func UpdateReferenceImage(htmlPath, referencePath string, width, height int) error {
	zap.L().Warn("updating reference image", zap.String("path", referencePath))
	return RenderHTMLFile(htmlPath, referencePath, width, height)
}
