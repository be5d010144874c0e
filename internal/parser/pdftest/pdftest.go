// Package pdftest writes small PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	// PageSize is the width and height of every page, in points.
	PageSize = 300
	// FontSize of the text line on each page.
	FontSize = 12
	// TextX and TextY locate the baseline start of the text line.
	TextX = 20
	TextY = 250
)

// Write creates name in dir with one page per entry of pages. Each non-empty
// entry is drawn as a single line in standard Helvetica, which carries no
// /Widths; an empty entry gives a blank page. Text must not contain
// parentheses or backslashes.
func Write(t testing.TB, dir, name string, pages ...string) string {
	t.Helper()

	var objects []string
	add := func(body string) int {
		objects = append(objects, body)
		return len(objects)
	}

	add("") // catalog, filled below
	add("") // page tree, filled below
	font := add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	kids := make([]string, 0, len(pages))
	for _, text := range pages {
		var content string
		if text != "" {
			content = fmt.Sprintf("BT /F1 %d Tf %d %d Td (%s) Tj ET", FontSize, TextX, TextY, text)
		}
		stream := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		page := add(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			PageSize, PageSize, font, stream))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}
	objects[0] = "<< /Type /Catalog /Pages 2 0 R >>"
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
