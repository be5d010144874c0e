package parser

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"pdf-role-chat/internal/models"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

const defaultPageNumber = 1

var (
	wordTextRe   = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	wordParaRe   = regexp.MustCompile(`</w:p>`)
	slideTextRe  = regexp.MustCompile(`<a:t>([^<]*)</a:t>`)
	slideNameRe  = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	xmlEntityRep = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
)

// SupportedExtensions lists the upload formats ParseFile understands.
var SupportedExtensions = []string{".pdf", ".docx", ".pptx", ".xlsx", ".xlsm", ".xltx", ".txt"}

// ParseFile extracts page records from any supported document. Formats
// without pages report sheets or slides as pages, everything else as page 1.
func ParseFile(filePath string) ([]models.PageRecord, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return ExtractPages(filePath)
	case ".docx":
		return parseDOCX(filePath)
	case ".pptx":
		return parsePPTX(filePath)
	case ".xlsx":
		return parseXLSX(filePath)
	case ".xlsm", ".xltx":
		return parseWorkbook(filePath)
	case ".txt":
		return parseText(filePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func parseDOCX(filePath string) ([]models.PageRecord, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open docx %s: %w", filePath, err)
	}
	defer r.Close()

	// content is the raw document xml
	content := wordParaRe.ReplaceAllString(r.Editable().GetContent(), "\n")
	var text strings.Builder
	for _, line := range strings.Split(content, "\n") {
		var para strings.Builder
		for _, m := range wordTextRe.FindAllStringSubmatch(line, -1) {
			para.WriteString(m[1])
		}
		if strings.TrimSpace(para.String()) == "" {
			continue
		}
		text.WriteString(xmlEntityRep.Replace(para.String()))
		text.WriteString("\n")
	}

	return single(filePath, text.String()), nil
}

func parsePPTX(filePath string) ([]models.PageRecord, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open pptx %s: %w", filePath, err)
	}
	defer f.Close()

	source := filepath.Base(filePath)
	var pages []models.PageRecord
	for _, file := range f.File {
		m := slideNameRe.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		slideNum, _ := strconv.Atoi(m[1])

		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}

		var text strings.Builder
		for _, t := range slideTextRe.FindAllStringSubmatch(string(data), -1) {
			text.WriteString(xmlEntityRep.Replace(t[1]) + " ")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		pages = append(pages, models.PageRecord{
			Text:   strings.TrimSpace(text.String()),
			Source: source,
			Page:   slideNum,
		})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })
	return pages, nil
}

func parseXLSX(filePath string) ([]models.PageRecord, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", filePath, err)
	}

	source := filepath.Base(filePath)
	var pages []models.PageRecord
	for sheetNum, sheet := range f.Sheets {
		var rows [][]string
		for _, row := range sheet.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			rows = append(rows, cells)
		}
		if text := sheetText(sheet.Name, rows); text != "" {
			pages = append(pages, models.PageRecord{Text: text, Source: source, Page: sheetNum + 1})
		}
	}
	return pages, nil
}

func parseWorkbook(filePath string) ([]models.PageRecord, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filePath, err)
	}
	defer f.Close()

	source := filepath.Base(filePath)
	var pages []models.PageRecord
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		if text := sheetText(sheetName, rows); text != "" {
			pages = append(pages, models.PageRecord{Text: text, Source: source, Page: sheetNum + 1})
		}
	}
	return pages, nil
}

// sheetText renders rows tab-separated under a sheet header; empty sheets give "".
func sheetText(name string, rows [][]string) string {
	var body strings.Builder
	for _, row := range rows {
		line := strings.TrimRight(strings.Join(row, "\t"), "\t ")
		if line == "" {
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	if body.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("## Sheet: %s\n%s", name, body.String())
}

func parseText(filePath string) ([]models.PageRecord, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	return single(filePath, string(data)), nil
}

func single(filePath, text string) []models.PageRecord {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []models.PageRecord{{
		Text:   text,
		Source: filepath.Base(filePath),
		Page:   defaultPageNumber,
	}}
}
