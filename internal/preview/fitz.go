package preview

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders pages with MuPDF through go-fitz.
type FitzRasterizer struct{}

func (FitzRasterizer) PageCount(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// Render rasterizes a 1-based page and returns its bounds in points.
func (FitzRasterizer) Render(path string, page int, dpi float64) (*image.RGBA, image.Rectangle, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	bounds, err := doc.Bound(page - 1)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("page %d bounds: %w", page, err)
	}
	img, err := doc.ImageDPI(page-1, dpi)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("render page %d: %w", page, err)
	}
	return img, bounds, nil
}
