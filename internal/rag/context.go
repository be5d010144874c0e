package rag

import (
	"strings"
	"unicode/utf8"

	"pdf-role-chat/internal/models"
)

// BuildContext joins chunk texts with blank lines. If the whole batch does
// not fit in budget characters, chunks are added until the next one would
// not fit and marker is appended. Room for the marker is reserved, so the
// result never exceeds budget.
func BuildContext(chunks []models.Chunk, budget int, marker string) string {
	if budget <= 0 || len(chunks) == 0 {
		return ""
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	full := strings.Join(texts, models.ContextSeparator)
	if utf8.RuneCountInString(full) <= budget {
		return full
	}

	sepLen := utf8.RuneCountInString(models.ContextSeparator)
	tail := 0
	if marker != "" {
		tail = sepLen + utf8.RuneCountInString(marker)
	}

	var b strings.Builder
	used := 0
	for _, text := range texts {
		n := utf8.RuneCountInString(text)
		if used > 0 {
			n += sepLen
		}
		if used+n > budget-tail {
			break
		}
		if used > 0 {
			b.WriteString(models.ContextSeparator)
		}
		b.WriteString(text)
		used += n
	}

	if marker != "" && used+tail <= budget {
		if used > 0 {
			b.WriteString(models.ContextSeparator)
		}
		b.WriteString(marker)
	}
	return b.String()
}
