package preview

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/parser/pdftest"
)

func TestFitzRasterizer(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "lesson.pdf", "Hello World", "", "Closing page")

	n, err := FitzRasterizer{}.PageCount(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	img, bounds, err := FitzRasterizer{}.Render(path, 1, pointsPerInch)
	require.NoError(t, err)
	assert.Equal(t, pdftest.PageSize, bounds.Dx())
	assert.Equal(t, image.Rect(0, 0, pdftest.PageSize, pdftest.PageSize), img.Bounds())
}

func TestPageImageRealDocument(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "lesson.pdf", "Hello World", "", "Closing page")
	r, err := NewRenderer(config.PreviewConfig{DPI: pointsPerInch, HighlightColor: "#ffeb3b"})
	require.NoError(t, err)

	assert.Nil(t, r.PageImage(path, 0, nil))
	assert.Nil(t, r.PageImage(path, 4, []string{"Hello World"}))

	plain := r.PageImage(path, 1, nil)
	require.NotNil(t, plain)
	assert.Equal(t, image.Rect(0, 0, pdftest.PageSize, pdftest.PageSize), decode(t, plain).Bounds())

	highlighted := r.PageImage(path, 1, []string{"Hello World"})
	require.NotNil(t, highlighted)
	assert.NotEqual(t, plain, highlighted)

	// text that is not on the page leaves the image untouched
	assert.Equal(t, plain, r.PageImage(path, 1, []string{"Closing page"}))

	// the blank page still renders
	assert.NotNil(t, r.PageImage(path, 2, nil))
}
