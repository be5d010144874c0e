package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"pdf-role-chat/internal/models"
)

// ExtractPages returns one record per page that has non-blank text. Page
// numbers are 1-based and the source is the file's base name.
func ExtractPages(filePath string) (pages []models.PageRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("parse pdf %s: %v", filePath, r)
		}
	}()

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filePath, err)
	}
	defer f.Close()

	source := filepath.Base(filePath)
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := pageText(page)
		if err != nil {
			log.Warn().Err(err).Str("source", source).Int("page", i).Msg("Skipping unreadable page")
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, models.PageRecord{
			Text:   text,
			Source: source,
			Page:   i,
		})
	}

	log.Debug().Str("source", source).Int("pages", numPages).Int("text_pages", len(pages)).Msg("Extracted pdf pages")
	return pages, nil
}

// PageLayout loads the glyph layout of a 1-based page.
func PageLayout(filePath string, pageNumber int) (*Layout, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filePath, err)
	}
	defer f.Close()

	if pageNumber < 1 || pageNumber > reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1, %d]", pageNumber, reader.NumPage())
	}
	return NewLayout(reader.Page(pageNumber))
}

func PageCount(filePath string) (int, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("open pdf %s: %w", filePath, err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// pageText prefers the glyph layout and falls back to the content stream text
// when the layout is empty.
func pageText(page pdf.Page) (string, error) {
	layout, err := NewLayout(page)
	if err == nil && strings.TrimSpace(layout.Text) != "" {
		return layout.Text, nil
	}

	plain, plainErr := page.GetPlainText(nil)
	if plainErr != nil {
		if err != nil {
			return "", err
		}
		return "", plainErr
	}
	return plain, nil
}
