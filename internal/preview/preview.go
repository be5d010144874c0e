// Package preview renders PDF pages to PNG with highlighted passages.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/parser"
)

const (
	pointsPerInch  = 72.0
	highlightAlpha = 0x60
	defaultDPI     = 110
)

type Rasterizer interface {
	PageCount(path string) (int, error)
	Render(path string, page int, dpi float64) (*image.RGBA, image.Rectangle, error)
}

// Locator finds every occurrence of a string on a page.
type Locator interface {
	Find(s string) []parser.Rect
}

type LocatorFunc func(path string, page int) (Locator, error)

// Renderer draws highlight boxes over rasterized pages.
type Renderer struct {
	raster  Rasterizer
	locate  LocatorFunc
	dpi     float64
	overlay *image.Uniform
}

func NewRenderer(cfg config.PreviewConfig) (*Renderer, error) {
	return NewRendererWith(FitzRasterizer{}, pdfLocator, cfg)
}

func NewRendererWith(raster Rasterizer, locate LocatorFunc, cfg config.PreviewConfig) (*Renderer, error) {
	c, err := ParseHexColor(cfg.HighlightColor)
	if err != nil {
		return nil, err
	}
	c.A = highlightAlpha

	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}
	return &Renderer{raster: raster, locate: locate, dpi: dpi, overlay: image.NewUniform(c)}, nil
}

func pdfLocator(path string, page int) (Locator, error) {
	return parser.PageLayout(path, page)
}

// PageImage returns the PNG of a 1-based page with every occurrence of each
// highlight string marked. It returns nil when the page is out of range or
// the file cannot be rendered. Strings not found on the page are ignored.
func (r *Renderer) PageImage(path string, page int, highlights []string) []byte {
	logger := log.With().Str("source", filepath.Base(path)).Int("page", page).Logger()

	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		logger.Debug().Msg("Preview is only available for pdf files")
		return nil
	}
	total, err := r.raster.PageCount(path)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open document for preview")
		return nil
	}
	if page < 1 || page > total {
		logger.Warn().Int("total", total).Msg("Preview page out of range")
		return nil
	}

	img, bounds, err := r.raster.Render(path, page, r.dpi)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to render page")
		return nil
	}

	if len(highlights) > 0 {
		boxes := r.find(path, page, highlights)
		for _, box := range boxes {
			draw.Draw(img, r.toPixels(box, bounds).Intersect(img.Bounds()), r.overlay, image.Point{}, draw.Over)
		}
		logger.Debug().Int("boxes", len(boxes)).Msg("Drew highlights")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.Error().Err(err).Msg("Failed to encode page image")
		return nil
	}
	return buf.Bytes()
}

func (r *Renderer) find(path string, page int, highlights []string) []parser.Rect {
	loc, err := r.locate(path, page)
	if err != nil {
		log.Warn().Err(err).Int("page", page).Msg("No text layout for highlights")
		return nil
	}
	var boxes []parser.Rect
	for _, h := range highlights {
		if h == "" {
			continue
		}
		boxes = append(boxes, loc.Find(h)...)
	}
	return boxes
}

// toPixels maps a box in PDF points (origin bottom-left) to image pixels
// (origin top-left).
func (r *Renderer) toPixels(box parser.Rect, page image.Rectangle) image.Rectangle {
	scale := r.dpi / pointsPerInch
	height := float64(page.Dy())
	return image.Rect(
		int((box.X0-float64(page.Min.X))*scale),
		int((height-box.Y1+float64(page.Min.Y))*scale),
		int((box.X1-float64(page.Min.X))*scale+0.5),
		int((height-box.Y0+float64(page.Min.Y))*scale+0.5),
	)
}

// ParseHexColor parses "#rrggbb".
func ParseHexColor(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 0xff}
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid colour %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}
