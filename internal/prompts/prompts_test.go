package prompts

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-role-chat/internal/models"
)

func TestQATemplate(t *testing.T) {
	tmpl := QATemplate("Historian", models.LanguageEnglish)
	assert.ElementsMatch(t, []string{"context", "question"}, tmpl.GetInputVariables())

	out, err := tmpl.Format(map[string]any{"context": "CTX", "question": "Q?"})
	require.NoError(t, err)
	assert.Contains(t, out, "acting as Historian")
	assert.Contains(t, out, "CTX")
	assert.Contains(t, out, "Q?")
	assert.Contains(t, out, "in English")

	out, err = QATemplate("Tarihçi", "").Format(map[string]any{"context": "c", "question": "q"})
	require.NoError(t, err)
	assert.Contains(t, out, "Sen bir Tarihçi gibi")
	assert.Contains(t, out, "Türkçe")
}

func TestRefine(t *testing.T) {
	out, err := Refine("Q", "A", models.RefineElaborate, "Doktor", models.LanguageTurkish)
	require.NoError(t, err)
	assert.Contains(t, out, "daha ayrıntılı")
	assert.Contains(t, out, `"A"`)

	out, err = Refine("Q", "A", models.RefineSimplify, "Doctor", models.LanguageEnglish)
	require.NoError(t, err)
	assert.Contains(t, out, "simpler language")

	_, err = Refine("Q", "A", "shorter", "Doctor", models.LanguageEnglish)
	assert.ErrorIs(t, err, ErrInvalidRefineMode)
}

func TestBuildersInterpolateRoleAndContext(t *testing.T) {
	for _, lang := range []models.Language{models.LanguageTurkish, models.LanguageEnglish} {
		for name, out := range map[string]string{
			"suggestions": Suggestions("CTX", "Lawyer", 3, lang),
			"summary":     Summary("CTX", "Lawyer", lang),
			"keywords":    Keywords("CTX", "Lawyer", 10, lang),
			"concept map": ConceptMap("CTX", "Lawyer", lang),
			"timeline":    Timeline("CTX", "Lawyer", lang),
		} {
			assert.Contains(t, out, "Lawyer", name)
			assert.Contains(t, out, "---\nCTX\n---", name)
		}
	}
	assert.Contains(t, ConceptMap("c", "r", models.LanguageEnglish), "```mermaid")
	assert.Contains(t, Timeline("c", "r", models.LanguageEnglish), For(models.LanguageEnglish).NoTimeline)
}

func TestTrimList(t *testing.T) {
	got := TrimList("1. First?\n2) Second?\n\n- Third?\n* Fourth?", "\n", 0)
	assert.Equal(t, []string{"First?", "Second?", "Third?", "Fourth?"}, got)

	got = TrimList(" 2020 census, data , , AI ", ",", 2)
	assert.Equal(t, []string{"2020 census", "data"}, got)
}

func TestMessagesComplete(t *testing.T) {
	for _, lang := range []models.Language{models.LanguageTurkish, models.LanguageEnglish} {
		v := reflect.ValueOf(For(lang))
		for i := 0; i < v.NumField(); i++ {
			assert.NotEmpty(t, strings.TrimSpace(v.Field(i).String()), "%s %s", lang, v.Type().Field(i).Name)
		}
	}
	assert.Equal(t, For(models.LanguageTurkish), For("xx"))
}
