package parser

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	// fraction of the font size that separates two baselines
	lineBreakRatio = 0.5
	// fraction of the font size treated as an implicit space between glyphs
	wordGapRatio = 0.25
	// glyph boxes extend below the baseline by this fraction of the font size
	descentRatio = 0.2
	// estimated advance per rune, as a fraction of the font size, for fonts
	// that carry no /Widths
	advanceRatio = 0.5
)

// Rect is an axis-aligned box in PDF user space (points, origin bottom-left).
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) union(o Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

type glyph struct {
	box        Rect
	start, end int // byte range in Layout.Text
	line       int
}

// Layout is the text of a page rebuilt from positioned glyphs. The same text
// is used for chunking and for highlight search, so a chunk taken verbatim from
// a page can be located again on that page.
type Layout struct {
	Text   string
	glyphs []glyph
}

// NewLayout builds the layout of a single page.
func NewLayout(p pdf.Page) (layout *Layout, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page content: %v", r)
		}
	}()
	return buildLayout(p.Content().Text), nil
}

func buildLayout(texts []pdf.Text) *Layout {
	var b strings.Builder
	glyphs := make([]glyph, 0, len(texts))
	line := 0
	var prev *pdf.Text
	var prevBox Rect

	for i := range texts {
		t := texts[i]
		if t.S == "" {
			continue
		}

		x0, width := t.X, t.W
		newLine := prev != nil && math.Abs(t.Y-prev.Y) > math.Max(prev.FontSize, t.FontSize)*lineBreakRatio
		if width <= 0 {
			// without widths the reader never advances the pen, so glyphs of
			// one run share an X; lay them out after the previous box
			width = float64(utf8.RuneCountInString(t.S)) * t.FontSize * advanceRatio
			if prev != nil && !newLine && t.X <= prevBox.X0 {
				x0 = prevBox.X1
			}
		}

		if prev != nil {
			size := math.Max(prev.FontSize, t.FontSize)
			switch {
			case newLine:
				b.WriteByte('\n')
				line++
			case x0-prevBox.X1 > size*wordGapRatio && !isSpace(prev.S) && !isSpace(t.S):
				b.WriteByte(' ')
			}
		}

		start := b.Len()
		b.WriteString(t.S)
		box := Rect{
			X0: x0,
			Y0: t.Y - t.FontSize*descentRatio,
			X1: x0 + width,
			Y1: t.Y + t.FontSize,
		}
		glyphs = append(glyphs, glyph{
			box:   box,
			start: start,
			end:   b.Len(),
			line:  line,
		})
		prev = &texts[i]
		prevBox = box
	}

	return &Layout{Text: b.String(), glyphs: glyphs}
}

// Find returns one box per line for every exact occurrence of s in the page
// text. No normalisation is applied; text that does not occur verbatim yields
// no boxes.
func (l *Layout) Find(s string) []Rect {
	if s == "" || l == nil {
		return nil
	}

	var boxes []Rect
	offset := 0
	for {
		idx := strings.Index(l.Text[offset:], s)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(s)
		boxes = append(boxes, l.boxesBetween(start, end)...)
		offset = end
	}
	return boxes
}

// boxesBetween merges the boxes of all glyphs overlapping [start, end) into one box per line.
func (l *Layout) boxesBetween(start, end int) []Rect {
	var boxes []Rect
	currentLine := -1
	for _, g := range l.glyphs {
		if g.end <= start {
			continue
		}
		if g.start >= end {
			break
		}
		if g.line != currentLine {
			boxes = append(boxes, g.box)
			currentLine = g.line
			continue
		}
		boxes[len(boxes)-1] = boxes[len(boxes)-1].union(g.box)
	}
	return boxes
}

func isSpace(s string) bool {
	return strings.TrimSpace(s) == ""
}
