package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/llmservice"
	"pdf-role-chat/internal/llmservice/llmtest"
	"pdf-role-chat/internal/models"
)

type fakeIndex struct {
	chunks []models.Chunk
	err    error
	k      int
}

func (f *fakeIndex) Rebuild(_ context.Context, chunks []models.Chunk) error {
	f.chunks = chunks
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, k int) ([]models.Chunk, error) {
	f.k = k
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks[:min(k, len(f.chunks))], nil
}

func newAssistant(model *llmtest.Model, index Index) *Assistant {
	cfg := config.Default()
	return NewAssistant(llmservice.NewClient(model, &cfg.LLM), index, cfg.RAG)
}

func testChunks(n, size int) []models.Chunk {
	chunks := make([]models.Chunk, n)
	for i := range chunks {
		chunks[i] = models.Chunk{
			Content: strings.Repeat(string(rune('a'+i%26)), size),
			Source:  "doc.pdf",
			Page:    i + 1,
			ChunkID: 1,
		}
	}
	return chunks
}

func TestAskReturnsAnswerAndSources(t *testing.T) {
	index := &fakeIndex{chunks: []models.Chunk{
		{Content: "Photosynthesis happens in chloroplasts.", Source: "bio.pdf", Page: 3, ChunkID: 2},
		{Content: "Light reactions need water.", Source: "bio.pdf", Page: 4, ChunkID: 1},
	}}
	model := &llmtest.Model{Reply: "<think>hmm</think>In the chloroplasts."}
	a := newAssistant(model, index)

	ans, err := a.Ask(context.Background(), "Where does photosynthesis happen?", "Biology teacher", models.LanguageEnglish)
	require.NoError(t, err)

	assert.Equal(t, "In the chloroplasts.", ans.Text)
	assert.Equal(t, index.chunks, ans.Sources)
	assert.Equal(t, 4, index.k)

	prompt := model.LastPrompt()
	assert.Contains(t, prompt, "acting as Biology teacher")
	assert.Contains(t, prompt, "Where does photosynthesis happen?")
	assert.Contains(t, prompt, "Photosynthesis happens in chloroplasts.\n\nLight reactions need water.")
	assert.Contains(t, prompt, "Please provide the answer in English.")
}

func TestAskTurkishTemplate(t *testing.T) {
	model := &llmtest.Model{Reply: "Cevap"}
	a := newAssistant(model, &fakeIndex{chunks: testChunks(1, 10)})

	_, err := a.Ask(context.Background(), "Soru?", "Öğretmen", models.LanguageTurkish)
	require.NoError(t, err)
	assert.Contains(t, model.LastPrompt(), "Sen bir Öğretmen gibi")
	assert.Contains(t, model.LastPrompt(), "Türkçe")
}

func TestAskRoleWithTemplateSyntax(t *testing.T) {
	model := &llmtest.Model{Reply: "ok"}
	a := newAssistant(model, &fakeIndex{chunks: testChunks(1, 10)})

	_, err := a.Ask(context.Background(), "q", "{{.question}} expert", models.LanguageEnglish)
	require.NoError(t, err)
	assert.Contains(t, model.LastPrompt(), "{{.question}} expert")
}

func TestAskErrors(t *testing.T) {
	ctx := context.Background()

	_, err := newAssistant(&llmtest.Model{}, &fakeIndex{}).Ask(ctx, "q", "  ", models.LanguageTurkish)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = newAssistant(&llmtest.Model{}, &fakeIndex{err: models.ErrIndexNotFound}).Ask(ctx, "q", "r", models.LanguageTurkish)
	assert.ErrorIs(t, err, models.ErrIndexNotFound)

	boom := errors.New("connection refused")
	_, err = newAssistant(&llmtest.Model{Err: boom}, &fakeIndex{chunks: testChunks(1, 5)}).Ask(ctx, "q", "r", models.LanguageTurkish)
	assert.ErrorIs(t, err, boom)

	_, err = newAssistant(&llmtest.Model{Reply: "<think>only</think>"}, &fakeIndex{chunks: testChunks(1, 5)}).Ask(ctx, "q", "r", models.LanguageTurkish)
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestRefine(t *testing.T) {
	model := &llmtest.Model{Reply: "simpler"}
	a := newAssistant(model, &fakeIndex{})

	out, err := a.Refine(context.Background(), "q", "long answer", models.RefineSimplify, "Doctor", models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "simpler", out)
	assert.Contains(t, model.LastPrompt(), "simpler language")
	assert.Contains(t, model.LastPrompt(), `"long answer"`)

	_, err = a.Refine(context.Background(), "q", "a", "shorter", "Doctor", models.LanguageEnglish)
	assert.Error(t, err)
}

func TestSuggestQuestions(t *testing.T) {
	model := &llmtest.Model{Reply: "1. What is A?\n\n- What is B?\nWhat is C?\nWhat is D?"}
	a := newAssistant(model, &fakeIndex{})

	got, err := a.SuggestQuestions(context.Background(), testChunks(2, 50), "Student", models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, []string{"What is A?", "What is B?", "What is C?"}, got)

	_, err = a.SuggestQuestions(context.Background(), nil, "Student", models.LanguageEnglish)
	require.NoError(t, err)
	assert.Contains(t, model.LastPrompt(), "General questions about the document content.")
}

func TestKeywordsCapped(t *testing.T) {
	model := &llmtest.Model{Reply: "a, b, c, d, e, f, g, h, i, j, k, l,"}
	a := newAssistant(model, &fakeIndex{})

	got, err := a.Keywords(context.Background(), testChunks(1, 10), "Analyst", models.LanguageTurkish)
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, "a", got[0])
}

func TestConceptMap(t *testing.T) {
	model := &llmtest.Model{Reply: "Here you go:\n```mermaid\ngraph TD\n  A --> B\n```\nthanks"}
	a := newAssistant(model, &fakeIndex{})

	got, err := a.ConceptMap(context.Background(), testChunks(1, 10), "Analyst", models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "```mermaid\ngraph TD\n  A --> B\n```", got)

	model.Reply = "graph TD; A-->B"
	_, err = a.ConceptMap(context.Background(), testChunks(1, 10), "Analyst", models.LanguageEnglish)
	assert.ErrorIs(t, err, ErrConceptMapFormat)
}

func TestAuxiliaryGeneratorsRequireContent(t *testing.T) {
	a := newAssistant(&llmtest.Model{Reply: "x"}, &fakeIndex{})
	ctx := context.Background()

	_, err := a.Summarize(ctx, nil, "r", models.LanguageTurkish)
	assert.ErrorIs(t, err, ErrNoContent)
	_, err = a.Timeline(ctx, nil, "r", models.LanguageTurkish)
	assert.ErrorIs(t, err, ErrNoContent)
	_, err = a.ConceptMap(ctx, nil, "r", models.LanguageTurkish)
	assert.ErrorIs(t, err, ErrNoContent)
	_, err = a.Keywords(ctx, testChunks(1, 5), "", models.LanguageTurkish)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestSummaryContextRespectsBudget(t *testing.T) {
	model := &llmtest.Model{Reply: "summary"}
	a := newAssistant(model, &fakeIndex{})
	chunks := testChunks(30, 1000)

	_, err := a.Summarize(context.Background(), chunks, "Editor", models.LanguageTurkish)
	require.NoError(t, err)

	prompt := model.LastPrompt()
	_, rest, ok := strings.Cut(prompt, "---\n")
	require.True(t, ok)
	body, _, ok := strings.Cut(rest, "\n---")
	require.True(t, ok)
	assert.LessOrEqual(t, len([]rune(body)), 10000)
	assert.Contains(t, body, "[İçeriğin bir kısmı uzunluk sınırı nedeniyle kesildi.]")
}

func TestRetrieverDefaults(t *testing.T) {
	index := &fakeIndex{chunks: testChunks(6, 3)}
	docs, err := NewRetriever(index, 0).GetRelevantDocuments(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, docs, defaultTopK)
	assert.Equal(t, index.chunks[0], FromDocument(docs[0]))
}
