// Package raster renders PDF pages to PNG images via pdftoppm.
package raster

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/structeng/cfst-extractor/internal/llm"
)

const defaultDPI = 150

// Rasterizer converts selected PDF pages into page images for the
// vision model.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, pages []int) ([]llm.PageImage, error)
}

// PDFToPPM shells out to poppler's pdftoppm, one invocation per page.
type PDFToPPM struct {
	Command string // pdftoppm binary; defaults to "pdftoppm" on PATH
	DPI     int
	runner  Runner
	logger  *slog.Logger
}

func NewPDFToPPM(command string, dpi int, logger *slog.Logger) *PDFToPPM {
	if command == "" {
		command = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = defaultDPI
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFToPPM{Command: command, DPI: dpi, runner: execRunner{}, logger: logger}
}

func (r *PDFToPPM) Rasterize(ctx context.Context, pdfPath string, pages []int) ([]llm.PageImage, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("rasterize %s: no pages requested", pdfPath)
	}

	tmpDir, err := os.MkdirTemp("", "cfst-raster-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	r.logger.Info("raster.start", "path", pdfPath, "pages", len(pages), "dpi", r.DPI)

	images := make([]llm.PageImage, 0, len(pages))
	for _, page := range pages {
		png, err := r.renderPage(ctx, pdfPath, tmpDir, page)
		if err != nil {
			return nil, fmt.Errorf("render page %d of %s: %w", page, pdfPath, err)
		}
		images = append(images, llm.PageImage{Page: page, PNG: png})
	}

	r.logger.Info("raster.done", "path", pdfPath, "images", len(images))
	return images, nil
}

// renderPage runs pdftoppm constrained to a single page and reads back
// the one PNG it produced. pdftoppm zero-pads the page suffix based on
// the document length, so we glob rather than guess the exact name.
func (r *PDFToPPM) renderPage(ctx context.Context, pdfPath, tmpDir string, page int) ([]byte, error) {
	prefix := filepath.Join(tmpDir, "page"+strconv.Itoa(page))
	args := []string{
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-r", strconv.Itoa(r.DPI),
		"-png",
		pdfPath,
		prefix,
	}

	if _, stderr, err := r.runner.Run(ctx, r.Command, args...); err != nil {
		return nil, fmt.Errorf("%s: %w (stderr: %s)", r.Command, err, truncate(string(stderr), 512))
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no output image for page %d", page)
	}
	sort.Strings(matches)

	return os.ReadFile(matches[0])
}
