package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"pdf-role-chat/internal/models"
)

const marker = "[truncated]"

func TestBuildContextFitsEverything(t *testing.T) {
	chunks := []models.Chunk{{Content: "one"}, {Content: "two"}}
	assert.Equal(t, "one\n\ntwo", BuildContext(chunks, 100, marker))
	assert.Equal(t, "one\n\ntwo", BuildContext(chunks, 8, marker))
}

func TestBuildContextTruncates(t *testing.T) {
	chunks := []models.Chunk{{Content: "aaaa"}, {Content: "bbbb"}, {Content: "cccc"}}
	assert.Equal(t, "aaaa\n\nbbbb\n\n[x]", BuildContext(chunks, 15, "[x]"))
	assert.Equal(t, "aaaa\n\nbbbb", BuildContext(chunks, 15, ""))
	assert.Equal(t, marker, BuildContext(chunks, 15, marker))
}

func TestBuildContextMarkerLongerThanBudget(t *testing.T) {
	chunks := []models.Chunk{{Content: "aaaa"}, {Content: "bbbb"}}
	assert.Equal(t, "", BuildContext(chunks, 5, marker))
	assert.Equal(t, "", BuildContext(chunks, 0, marker))
}

func TestBuildContextNeverExceedsBudget(t *testing.T) {
	var chunks []models.Chunk
	for i := 1; i <= 40; i++ {
		chunks = append(chunks, models.Chunk{Content: strings.Repeat("ğ", i*37%400+1)})
	}
	for _, budget := range []int{1, 10, 50, 399, 1000, 2000, 5000, 7000, 8000, 10000} {
		for _, m := range []string{"", marker, "[İçeriğin bir kısmı kesildi.]"} {
			got := BuildContext(chunks, budget, m)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), budget, "budget %d marker %q", budget, m)
		}
	}
}
