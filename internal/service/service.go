// Package service implements the user actions shared by the HTTP API and the
// CLI. Failures never escape an action: they are logged and returned as a
// localized warning next to an empty result.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/helper"
	"pdf-role-chat/internal/models"
	"pdf-role-chat/internal/parser"
	"pdf-role-chat/internal/prompts"
	"pdf-role-chat/internal/rag"
	"pdf-role-chat/internal/session"
)

// PageRenderer produces page previews. preview.Renderer implements it.
type PageRenderer interface {
	PageImage(path string, page int, highlights []string) []byte
}

// Persona is the role and answer language chosen for an action.
type Persona struct {
	Role       string          `json:"role"`
	CustomRole string          `json:"custom_role"`
	Language   models.Language `json:"language"`
}

// ResolveRole prefers the free-text role over the preset one.
func (p Persona) ResolveRole() (string, error) {
	if r := strings.TrimSpace(p.CustomRole); r != "" {
		return r, nil
	}
	if r := strings.TrimSpace(p.Role); r != "" {
		return r, nil
	}
	return "", rag.ErrInvalidRole
}

// FileInput is one uploaded file.
type FileInput struct {
	Name   string
	Reader io.Reader
}

type UploadResult struct {
	Documents   []session.Document `json:"documents"`
	Chunks      int                `json:"chunks"`
	Suggestions []string           `json:"suggestions"`
	Keywords    []string           `json:"keywords"`
	Warnings    []string           `json:"warnings,omitempty"`
}

type AnswerResult struct {
	Question   string         `json:"question"`
	Answer     string         `json:"answer"`
	Sources    []models.Chunk `json:"sources"`
	References []string       `json:"references"`
	Warning    string         `json:"warning,omitempty"`
}

type TextResult struct {
	Text    string `json:"text"`
	Warning string `json:"warning,omitempty"`
}

type ListResult struct {
	Items   []string `json:"items"`
	Warning string   `json:"warning,omitempty"`
}

type PreviewResult struct {
	Image       []byte `json:"-"`
	Document    string `json:"document"`
	Page        int    `json:"page"`
	Highlighted bool   `json:"highlighted"`
	Warning     string `json:"warning,omitempty"`
}

type Service struct {
	cfg       *config.Config
	assistant *rag.Assistant
	chunker   *parser.Chunker
	renderer  PageRenderer
	sessions  *session.Store

	// guards the shared index: rebuilds are exclusive, searches shared
	indexMu sync.RWMutex
}

func New(cfg *config.Config, assistant *rag.Assistant, renderer PageRenderer, sessions *session.Store) *Service {
	return &Service{
		cfg:       cfg,
		assistant: assistant,
		chunker:   parser.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
		renderer:  renderer,
		sessions:  sessions,
	}
}

func (s *Service) Sessions() *session.Store {
	return s.sessions
}

func (s *Service) Roles() []string {
	return s.cfg.Roles
}

// IngestOptions tunes Ingest.
type IngestOptions struct {
	// SkipIndex loads the batch into the session only, leaving the vector
	// index as it is.
	SkipIndex bool
}

// Upload ingests the files and prepares suggested questions and keywords.
func (s *Service) Upload(ctx context.Context, sess *session.Session, p Persona, files []FileInput) UploadResult {
	res := s.Ingest(ctx, sess, p.Language, files, IngestOptions{})
	if res.Chunks == 0 {
		return res
	}

	if _, err := p.ResolveRole(); err != nil {
		res.Warnings = append(res.Warnings, prompts.For(p.Language).RoleRequired)
		return res
	}
	suggestions := s.Suggest(ctx, sess, p)
	keywords := s.Keywords(ctx, sess, p)
	res.Suggestions, res.Keywords = suggestions.Items, keywords.Items
	for _, w := range []string{suggestions.Warning, keywords.Warning} {
		if w != "" {
			res.Warnings = append(res.Warnings, w)
		}
	}
	return res
}

// Ingest stores the files in the data dir, extracts and chunks them, rebuilds
// the index and resets the session to the new batch. Files that cannot be
// read are reported as warnings. If no chunk is produced the index is left
// untouched.
func (s *Service) Ingest(ctx context.Context, sess *session.Session, lang models.Language, files []FileInput, opts IngestOptions) UploadResult {
	msg := prompts.For(lang)
	var res UploadResult

	var (
		docs  []session.Document
		pages []models.PageRecord
	)
	for _, f := range files {
		name := filepath.Base(f.Name)
		logger := log.With().Str("source", name).Logger()

		if !parser.IsSupported(name) {
			res.Warnings = append(res.Warnings, fmt.Sprintf(msg.UnsupportedFile, name))
			continue
		}
		path, err := helper.SaveFile(s.cfg.Storage.DataDir, name, f.Reader)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to store upload")
			res.Warnings = append(res.Warnings, fmt.Sprintf(msg.UnreadableFile, name))
			continue
		}

		records, err := parser.ParseFile(path)
		if err != nil || len(records) == 0 {
			logger.Warn().Err(err).Msg("No text extracted")
			res.Warnings = append(res.Warnings, fmt.Sprintf(msg.UnreadableFile, name))
			continue
		}
		pages = append(pages, records...)
		docs = append(docs, session.Document{Name: name, Path: path, Pages: pageCount(path, records)})
		logger.Info().Int("pages", len(records)).Msg("Extracted document")
	}

	chunks, err := s.chunker.ChunkPages(pages)
	if err != nil {
		log.Error().Err(err).Msg("Failed to split pages")
		chunks = nil
	}
	if len(chunks) == 0 {
		sess.ResetForUpload(docs, nil)
		res.Documents = sess.Documents()
		res.Warnings = append(res.Warnings, msg.NoTextExtracted)
		return res
	}
	log.Info().Int("chunks", len(chunks)).Int("size", s.chunker.Size()).Int("overlap", s.chunker.Overlap()).
		Msg("Split documents")

	if !opts.SkipIndex {
		if err := s.rebuild(ctx, chunks); err != nil {
			log.Error().Err(err).Msg("Failed to build vector index")
			res.Warnings = append(res.Warnings, msg.IndexFailed)
			return res
		}
	}

	sess.ResetForUpload(docs, chunks)
	res.Documents = sess.Documents()
	res.Chunks = len(chunks)
	return res
}

func (s *Service) rebuild(ctx context.Context, chunks []models.Chunk) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	return s.assistant.Index().Rebuild(ctx, chunks)
}

// pageCount is the page total of a pdf, or the highest page seen for other
// formats.
func pageCount(path string, records []models.PageRecord) int {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		if n, err := parser.PageCount(path); err == nil {
			return n
		}
	}
	n := 0
	for _, r := range records {
		n = max(n, r.Page)
	}
	return n
}

func (s *Service) Ask(ctx context.Context, sess *session.Session, p Persona, question string) AnswerResult {
	msg := prompts.For(p.Language)
	res := AnswerResult{Question: strings.TrimSpace(question)}

	role, err := p.ResolveRole()
	if err != nil {
		res.Warning = msg.RoleRequired
		return res
	}
	if res.Question == "" {
		res.Warning = msg.QuestionRequired
		return res
	}
	sess.StartQuestion(res.Question)

	s.indexMu.RLock()
	ans, err := s.assistant.Ask(ctx, res.Question, role, p.Language)
	s.indexMu.RUnlock()
	if err != nil {
		log.Error().Err(err).Str("role", role).Msg("Failed to answer question")
		if errors.Is(err, models.ErrIndexNotFound) {
			res.Warning = msg.IndexMissing
		} else {
			res.Warning = msg.AnswerFailed
		}
		return res
	}

	sess.RecordAnswer(res.Question, ans.Text, ans.Sources, role, p.Language)
	res.Answer = ans.Text
	res.Sources = ans.Sources
	res.References = session.References(ans.Sources)
	return res
}

func (s *Service) Refine(ctx context.Context, sess *session.Session, p Persona, mode models.RefineMode) TextResult {
	msg := prompts.For(p.Language)
	role, err := p.ResolveRole()
	if err != nil {
		return TextResult{Warning: msg.RoleRequired}
	}
	question, answer := sess.LastExchange()
	if answer == "" {
		return TextResult{Warning: msg.RefineNoAnswer}
	}

	out, err := s.assistant.Refine(ctx, question, answer, mode, role, p.Language)
	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Msg("Failed to refine answer")
		if errors.Is(err, prompts.ErrInvalidRefineMode) {
			return TextResult{Warning: fmt.Sprintf(msg.InvalidRefineMode, mode)}
		}
		return TextResult{Warning: msg.RefineFailed}
	}
	sess.RecordRefinement(out)
	return TextResult{Text: out}
}

type textGenerator func(ctx context.Context, chunks []models.Chunk, role string, lang models.Language) (string, error)

// generate runs one of the document-wide text generators.
func (s *Service) generate(ctx context.Context, sess *session.Session, p Persona, name string, gen textGenerator, noContent, failed string) TextResult {
	msg := prompts.For(p.Language)
	role, err := p.ResolveRole()
	if err != nil {
		return TextResult{Warning: msg.RoleRequired}
	}
	if !sess.HasDocuments() {
		return TextResult{Warning: msg.NoDocuments}
	}

	out, err := gen(ctx, sess.Chunks(), role, p.Language)
	switch {
	case errors.Is(err, rag.ErrNoContent):
		return TextResult{Warning: noContent}
	case errors.Is(err, rag.ErrConceptMapFormat):
		log.Warn().Str("generator", name).Msg("Model output had no mermaid block")
		return TextResult{Warning: msg.ConceptMapInvalid}
	case err != nil:
		log.Error().Err(err).Str("generator", name).Msg("Generation failed")
		return TextResult{Warning: failed}
	}
	return TextResult{Text: out}
}

func (s *Service) Summarize(ctx context.Context, sess *session.Session, p Persona) TextResult {
	msg := prompts.For(p.Language)
	res := s.generate(ctx, sess, p, "summary", s.assistant.Summarize, msg.NoContentSummary, msg.SummaryFailed)
	if res.Warning == "" {
		sess.SetSummary(res.Text)
	}
	return res
}

func (s *Service) ConceptMap(ctx context.Context, sess *session.Session, p Persona) TextResult {
	msg := prompts.For(p.Language)
	res := s.generate(ctx, sess, p, "concept_map", s.assistant.ConceptMap, msg.NoContentConceptMap, msg.ConceptMapFailed)
	if res.Warning == "" {
		sess.SetConceptMap(res.Text)
	}
	return res
}

func (s *Service) Timeline(ctx context.Context, sess *session.Session, p Persona) TextResult {
	msg := prompts.For(p.Language)
	res := s.generate(ctx, sess, p, "timeline", s.assistant.Timeline, msg.NoContentTimeline, msg.TimelineFailed)
	if res.Warning == "" {
		sess.SetTimeline(res.Text)
	}
	return res
}

func (s *Service) Suggest(ctx context.Context, sess *session.Session, p Persona) ListResult {
	msg := prompts.For(p.Language)
	role, err := p.ResolveRole()
	if err != nil {
		return ListResult{Warning: msg.RoleRequired}
	}
	items, err := s.assistant.SuggestQuestions(ctx, sess.Chunks(), role, p.Language)
	if err != nil {
		log.Error().Err(err).Msg("Failed to suggest questions")
		return ListResult{Warning: msg.SuggestionsFailed}
	}
	sess.SetSuggestions(items)
	return ListResult{Items: items}
}

func (s *Service) Keywords(ctx context.Context, sess *session.Session, p Persona) ListResult {
	msg := prompts.For(p.Language)
	role, err := p.ResolveRole()
	if err != nil {
		return ListResult{Warning: msg.RoleRequired}
	}
	if !sess.HasDocuments() {
		return ListResult{Warning: msg.NoDocuments}
	}
	items, err := s.assistant.Keywords(ctx, sess.Chunks(), role, p.Language)
	if err != nil {
		log.Error().Err(err).Msg("Failed to extract keywords")
		return ListResult{Warning: msg.KeywordsFailed}
	}
	sess.SetKeywords(items)
	return ListResult{Items: items}
}

// Preview renders a page of an uploaded document with the last answer's
// sources on that page highlighted.
func (s *Service) Preview(sess *session.Session, lang models.Language, name string, page int) PreviewResult {
	msg := prompts.For(lang)
	res := PreviewResult{Document: name, Page: page}

	doc, ok := sess.Document(name)
	if !ok {
		res.Warning = msg.NoDocuments
		return res
	}
	highlights := sess.HighlightsFor(name, page)
	res.Image = s.renderer.PageImage(doc.Path, page, highlights)
	if res.Image == nil {
		res.Warning = fmt.Sprintf(msg.PreviewUnavailable, name, page)
		return res
	}
	if _, err := sess.SetCurrentPage(name, page); err != nil {
		log.Warn().Err(err).Msg("Failed to track current page")
	}
	res.Highlighted = len(highlights) > 0
	return res
}

// Density returns chunk counts per page for each document of the batch.
func (s *Service) Density(sess *session.Session) map[string]map[int]int {
	return sess.Density()
}

func (s *Service) History(sess *session.Session) []models.ConversationEntry {
	return sess.History()
}
