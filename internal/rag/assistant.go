package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/schema"

	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/llmservice"
	"pdf-role-chat/internal/models"
	"pdf-role-chat/internal/prompts"
)

var (
	ErrNoContent         = errors.New("no document content")
	ErrInvalidRole       = errors.New("role must not be empty")
	ErrConceptMapFormat  = errors.New("model did not return a mermaid block")
	ErrEmptyAnswer       = errors.New("model returned an empty answer")
	ErrUnexpectedOutputs = errors.New("unexpected chain output")
)

const (
	mermaidOpen  = "```mermaid"
	mermaidClose = "```"
)

// Answer is the chain output for one question.
type Answer struct {
	Text    string         `json:"answer"`
	Sources []models.Chunk `json:"sources"`
}

// Assistant runs the retrieval chain and the auxiliary single-prompt
// generators against one model and one index.
type Assistant struct {
	client *llmservice.Client
	index  Index
	cfg    config.RAGConfig
}

func NewAssistant(client *llmservice.Client, index Index, cfg config.RAGConfig) *Assistant {
	return &Assistant{client: client, index: index, cfg: cfg}
}

func (a *Assistant) Index() Index {
	return a.index
}

// Ask answers question through a RetrievalQA chain built for role and lang.
func (a *Assistant) Ask(ctx context.Context, question, role string, lang models.Language) (*Answer, error) {
	if strings.TrimSpace(role) == "" {
		return nil, ErrInvalidRole
	}

	llmChain := chains.NewLLMChain(a.client.Model(), prompts.QATemplate(role, lang))
	qa := chains.NewRetrievalQA(chains.NewStuffDocuments(llmChain), NewRetriever(a.index, a.cfg.TopK))
	qa.ReturnSourceDocuments = true

	ctx, cancel := a.client.WithTimeout(ctx)
	defer cancel()

	start := time.Now()
	out, err := chains.Call(ctx, qa, map[string]any{"query": question},
		chains.WithTemperature(a.client.Temperature()))
	if err != nil {
		return nil, fmt.Errorf("run retrieval chain: %w", err)
	}

	text, ok := out["text"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: text is %T", ErrUnexpectedOutputs, out["text"])
	}
	text = llmservice.CleanOutput(text)
	if text == "" {
		return nil, ErrEmptyAnswer
	}

	docs, _ := out["source_documents"].([]schema.Document)
	sources := make([]models.Chunk, 0, len(docs))
	for _, d := range docs {
		sources = append(sources, FromDocument(d))
	}

	log.Info().Str("role", role).Str("lang", string(lang)).Int("sources", len(sources)).
		Dur("took", time.Since(start)).Msg("Answered question")
	return &Answer{Text: text, Sources: sources}, nil
}

// Refine rewrites a previous answer in the requested mode.
func (a *Assistant) Refine(ctx context.Context, question, answer string, mode models.RefineMode, role string, lang models.Language) (string, error) {
	if strings.TrimSpace(role) == "" {
		return "", ErrInvalidRole
	}
	prompt, err := prompts.Refine(question, answer, mode, role, lang)
	if err != nil {
		return "", err
	}
	return a.client.Generate(ctx, prompt)
}

// SuggestQuestions proposes up to NumSuggestions questions about the batch.
// With no chunks a generic context is used.
func (a *Assistant) SuggestQuestions(ctx context.Context, chunks []models.Chunk, role string, lang models.Language) ([]string, error) {
	if strings.TrimSpace(role) == "" {
		return nil, ErrInvalidRole
	}
	text := BuildContext(chunks, a.cfg.SuggestionBudget, "")
	if text == "" {
		text = prompts.For(lang).GenericContext
	}

	out, err := a.client.Generate(ctx, prompts.Suggestions(text, role, a.cfg.NumSuggestions, lang))
	if err != nil {
		return nil, err
	}
	return prompts.TrimList(out, "\n", a.cfg.NumSuggestions), nil
}

func (a *Assistant) Summarize(ctx context.Context, chunks []models.Chunk, role string, lang models.Language) (string, error) {
	text, err := a.auxContext(chunks, role, lang, a.cfg.SummaryBudget)
	if err != nil {
		return "", err
	}
	return a.client.Generate(ctx, prompts.Summary(text, role, lang))
}

func (a *Assistant) Keywords(ctx context.Context, chunks []models.Chunk, role string, lang models.Language) ([]string, error) {
	text, err := a.auxContext(chunks, role, lang, a.cfg.KeywordBudget)
	if err != nil {
		return nil, err
	}
	out, err := a.client.Generate(ctx, prompts.Keywords(text, role, a.cfg.NumKeywords, lang))
	if err != nil {
		return nil, err
	}
	return prompts.TrimList(out, ",", a.cfg.NumKeywords), nil
}

// ConceptMap returns the first mermaid code block of the model output.
func (a *Assistant) ConceptMap(ctx context.Context, chunks []models.Chunk, role string, lang models.Language) (string, error) {
	text, err := a.auxContext(chunks, role, lang, a.cfg.ConceptMapBudget)
	if err != nil {
		return "", err
	}
	out, err := a.client.Generate(ctx, prompts.ConceptMap(text, role, lang))
	if err != nil {
		return "", err
	}
	return ExtractMermaid(out)
}

func (a *Assistant) Timeline(ctx context.Context, chunks []models.Chunk, role string, lang models.Language) (string, error) {
	text, err := a.auxContext(chunks, role, lang, a.cfg.TimelineBudget)
	if err != nil {
		return "", err
	}
	return a.client.Generate(ctx, prompts.Timeline(text, role, lang))
}

func (a *Assistant) auxContext(chunks []models.Chunk, role string, lang models.Language, budget int) (string, error) {
	if strings.TrimSpace(role) == "" {
		return "", ErrInvalidRole
	}
	if len(chunks) == 0 {
		return "", ErrNoContent
	}
	text := BuildContext(chunks, budget, prompts.For(lang).TruncationMarker)
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

func ExtractMermaid(s string) (string, error) {
	_, rest, ok := strings.Cut(s, mermaidOpen)
	if !ok {
		return "", ErrConceptMapFormat
	}
	body, _, ok := strings.Cut(rest, mermaidClose)
	if !ok {
		return "", ErrConceptMapFormat
	}
	return strings.TrimSpace(mermaidOpen + body + mermaidClose), nil
}
