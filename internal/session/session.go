// Package session keeps per-user presentation state in memory.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"pdf-role-chat/internal/models"
)

// Document is an uploaded file of the current batch.
type Document struct {
	Name        string `json:"name"`
	Path        string `json:"-"`
	Pages       int    `json:"pages"`
	CurrentPage int    `json:"current_page"`
}

// Snapshot is a read-only copy of the session outputs.
type Snapshot struct {
	ID            string                     `json:"id"`
	Documents     []Document                 `json:"documents"`
	LastQuestion  string                     `json:"last_question"`
	LastAnswer    string                     `json:"last_answer"`
	RefinedAnswer string                     `json:"refined_answer"`
	Sources       []models.Chunk             `json:"sources"`
	Suggestions   []string                   `json:"suggestions"`
	Keywords      []string                   `json:"keywords"`
	Summary       string                     `json:"summary"`
	ConceptMap    string                     `json:"concept_map"`
	Timeline      string                     `json:"timeline"`
	Density       map[string]map[int]int     `json:"density"`
	History       []models.ConversationEntry `json:"history"`
}

// Session holds the state of one user. Only the last output of each kind is
// kept; the conversation history survives uploads.
type Session struct {
	mu sync.RWMutex

	id        string
	documents map[string]*Document
	chunks    []models.Chunk
	density   map[string]map[int]int

	lastQuestion  string
	lastAnswer    string
	refinedAnswer string
	sources       []models.Chunk

	suggestions []string
	keywords    []string
	summary     string
	conceptMap  string
	timeline    string

	history []models.ConversationEntry
}

func newSession(id string) *Session {
	return &Session{
		id:        id,
		documents: make(map[string]*Document),
		density:   make(map[string]map[int]int),
	}
}

func (s *Session) ID() string {
	return s.id
}

// ResetForUpload replaces the batch and clears every derived output.
func (s *Session) ResetForUpload(docs []Document, chunks []models.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = make(map[string]*Document, len(docs))
	for _, d := range docs {
		d := d
		if d.CurrentPage < 1 {
			d.CurrentPage = 1
		}
		s.documents[d.Name] = &d
	}
	s.chunks = chunks
	s.density = countChunks(chunks)

	s.suggestions = nil
	s.keywords = nil
	s.clearOutputs()
}

func (s *Session) clearOutputs() {
	s.lastAnswer = ""
	s.refinedAnswer = ""
	s.sources = nil
	s.summary = ""
	s.conceptMap = ""
	s.timeline = ""
}

func countChunks(chunks []models.Chunk) map[string]map[int]int {
	density := make(map[string]map[int]int)
	for _, c := range chunks {
		if c.Page <= 0 {
			continue
		}
		if density[c.Source] == nil {
			density[c.Source] = make(map[int]int)
		}
		density[c.Source][c.Page]++
	}
	return density
}

func (s *Session) Chunks() []models.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks
}

func (s *Session) HasDocuments() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents) > 0
}

func (s *Session) Document(name string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[name]
	if !ok {
		return Document{}, false
	}
	return *d, true
}

// Documents returns the batch sorted by name.
func (s *Session) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentsLocked()
}

func (s *Session) documentsLocked() []Document {
	docs := make([]Document, 0, len(s.documents))
	for _, d := range s.documents {
		docs = append(docs, *d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs
}

// SetCurrentPage clamps page into the document's range.
func (s *Session) SetCurrentPage(name string, page int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[name]
	if !ok {
		return 0, fmt.Errorf("unknown document %q", name)
	}
	d.CurrentPage = min(max(page, 1), max(d.Pages, 1))
	return d.CurrentPage, nil
}

// StartQuestion records a new question and clears the previous outputs.
func (s *Session) StartQuestion(question string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuestion = question
	s.clearOutputs()
}

// RecordAnswer stores the answer and appends it to the history.
func (s *Session) RecordAnswer(question, answer string, sources []models.Chunk, role string, lang models.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuestion = question
	s.lastAnswer = answer
	s.sources = sources
	s.history = append(s.history, models.ConversationEntry{
		Question: question,
		Answer:   answer,
		Sources:  sources,
		Role:     role,
		Language: lang,
		AskedAt:  time.Now(),
	})
}

// LastExchange returns the question and answer a refinement applies to.
func (s *Session) LastExchange() (question, answer string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastQuestion, s.lastAnswer
}

// RecordRefinement stores the refined answer, also on the latest history entry.
func (s *Session) RecordRefinement(refined string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refinedAnswer = refined
	if n := len(s.history); n > 0 {
		s.history[n-1].RefinedAnswer = refined
	}
}

func (s *Session) SetSuggestions(q []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = q
}

func (s *Session) SetKeywords(k []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keywords = k
}

// SetSummary, SetConceptMap and SetTimeline replace the single visible output.
func (s *Session) SetSummary(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearOutputs()
	s.summary = text
}

func (s *Session) SetConceptMap(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearOutputs()
	s.conceptMap = text
}

func (s *Session) SetTimeline(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearOutputs()
	s.timeline = text
}

// HighlightsFor returns the text of the last answer's sources located on page.
func (s *Session) HighlightsFor(source string, page int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, c := range s.sources {
		if c.Source == source && c.Page == page {
			out = append(out, c.Content)
		}
	}
	return out
}

// Density returns chunk counts per source and page.
func (s *Session) Density() map[string]map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[int]int, len(s.density))
	for src, pages := range s.density {
		out[src] = make(map[int]int, len(pages))
		for p, n := range pages {
			out[src][p] = n
		}
	}
	return out
}

// References lists the unique citations of the last answer, sorted.
func (s *Session) References() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return References(s.sources)
}

func References(sources []models.Chunk) []string {
	seen := make(map[string]bool, len(sources))
	var refs []string
	for _, c := range sources {
		ref := c.Reference()
		if seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

func (s *Session) History() []models.ConversationEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ConversationEntry(nil), s.history...)
}

func (s *Session) Snapshot() Snapshot {
	density := s.Density()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:            s.id,
		Documents:     s.documentsLocked(),
		LastQuestion:  s.lastQuestion,
		LastAnswer:    s.lastAnswer,
		RefinedAnswer: s.refinedAnswer,
		Sources:       s.sources,
		Suggestions:   s.suggestions,
		Keywords:      s.keywords,
		Summary:       s.summary,
		ConceptMap:    s.conceptMap,
		Timeline:      s.timeline,
		Density:       density,
		History:       append([]models.ConversationEntry(nil), s.history...),
	}
}
