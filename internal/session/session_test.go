package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-role-chat/internal/models"
)

func batch() ([]Document, []models.Chunk) {
	docs := []Document{
		{Name: "b.pdf", Path: "data/b.pdf", Pages: 2},
		{Name: "a.pdf", Path: "data/a.pdf", Pages: 5},
	}
	chunks := []models.Chunk{
		{Content: "a1", Source: "a.pdf", Page: 1, ChunkID: 1},
		{Content: "a2", Source: "a.pdf", Page: 1, ChunkID: 2},
		{Content: "a3", Source: "a.pdf", Page: 3, ChunkID: 1},
		{Content: "b1", Source: "b.pdf", Page: 2, ChunkID: 1},
		{Content: "x", Source: "b.pdf", Page: 0, ChunkID: 1},
	}
	return docs, chunks
}

func TestResetForUpload(t *testing.T) {
	s := NewStore().New()
	s.RecordAnswer("q", "old answer", nil, "r", models.LanguageTurkish)
	s.SetSuggestions([]string{"old?"})
	s.SetKeywords([]string{"old"})

	docs, chunks := batch()
	s.ResetForUpload(docs, chunks)

	snap := s.Snapshot()
	assert.Empty(t, snap.LastAnswer)
	assert.Empty(t, snap.Suggestions)
	assert.Empty(t, snap.Keywords)
	assert.Len(t, snap.History, 1, "history survives uploads")
	require.Len(t, snap.Documents, 2)
	assert.Equal(t, "a.pdf", snap.Documents[0].Name)
	assert.Equal(t, 1, snap.Documents[0].CurrentPage)
	assert.Len(t, s.Chunks(), 5)
	assert.True(t, s.HasDocuments())
}

func TestDensitySkipsPageZero(t *testing.T) {
	s := NewStore().New()
	docs, chunks := batch()
	s.ResetForUpload(docs, chunks)

	assert.Equal(t, map[string]map[int]int{
		"a.pdf": {1: 2, 3: 1},
		"b.pdf": {2: 1},
	}, s.Density())
}

func TestAnswerAndRefinement(t *testing.T) {
	s := NewStore().New()
	sources := []models.Chunk{
		{Content: "first", Source: "b.pdf", Page: 2},
		{Content: "second", Source: "a.pdf", Page: 7},
		{Content: "third", Source: "b.pdf", Page: 2},
	}
	s.StartQuestion("why?")
	s.RecordAnswer("why?", "because", sources, "Teacher", models.LanguageEnglish)

	q, a := s.LastExchange()
	assert.Equal(t, "why?", q)
	assert.Equal(t, "because", a)
	assert.Equal(t, []string{"a.pdf (7)", "b.pdf (2)"}, s.References())
	assert.Equal(t, []string{"first", "third"}, s.HighlightsFor("b.pdf", 2))
	assert.Empty(t, s.HighlightsFor("b.pdf", 3))

	s.RecordRefinement("because, simply")
	h := s.History()
	require.Len(t, h, 1)
	assert.Equal(t, "because, simply", h[0].RefinedAnswer)
	assert.Equal(t, "Teacher", h[0].Role)
	assert.Equal(t, models.LanguageEnglish, h[0].Language)
	assert.Equal(t, "because, simply", s.Snapshot().RefinedAnswer)
}

func TestSingleVisibleOutput(t *testing.T) {
	s := NewStore().New()
	s.RecordAnswer("q", "a", []models.Chunk{{Source: "a.pdf", Page: 1}}, "r", models.LanguageTurkish)

	s.SetSummary("sum")
	snap := s.Snapshot()
	assert.Empty(t, snap.LastAnswer)
	assert.Empty(t, snap.Sources)
	assert.Equal(t, "sum", snap.Summary)

	s.SetConceptMap("```mermaid\n```")
	snap = s.Snapshot()
	assert.Empty(t, snap.Summary)
	assert.NotEmpty(t, snap.ConceptMap)

	s.SetTimeline("2020: x")
	snap = s.Snapshot()
	assert.Empty(t, snap.ConceptMap)
	assert.Equal(t, "2020: x", snap.Timeline)
}

func TestSetCurrentPageClamps(t *testing.T) {
	s := NewStore().New()
	docs, chunks := batch()
	s.ResetForUpload(docs, chunks)

	p, err := s.SetCurrentPage("b.pdf", 9)
	require.NoError(t, err)
	assert.Equal(t, 2, p)
	p, err = s.SetCurrentPage("b.pdf", -3)
	require.NoError(t, err)
	assert.Equal(t, 1, p)

	_, err = s.SetCurrentPage("missing.pdf", 1)
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	st := NewStore()
	s := st.GetOrCreate("abc")
	assert.Same(t, s, st.GetOrCreate("abc"))
	assert.NotEmpty(t, st.GetOrCreate("").ID())
	assert.Equal(t, 2, st.Len())

	got, ok := st.Get("abc")
	assert.True(t, ok)
	assert.Same(t, s, got)

	st.Delete("abc")
	_, ok = st.Get("abc")
	assert.False(t, ok)
}

func TestStoreEvictsIdleSessions(t *testing.T) {
	st := NewStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	st.GetOrCreate("old")
	now = now.Add(30 * time.Minute)
	st.GetOrCreate("recent")
	now = now.Add(20 * time.Minute)

	assert.Equal(t, 1, st.Evict(40*time.Minute))
	_, ok := st.Get("old")
	assert.False(t, ok)
	_, ok = st.Get("recent")
	assert.True(t, ok)

	// Get refreshed "recent", so it survives another short window
	now = now.Add(10 * time.Minute)
	assert.Equal(t, 0, st.Evict(15*time.Minute))
	assert.Equal(t, 1, st.Len())
}

func TestEvictIdleStopsWithContext(t *testing.T) {
	st := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.EvictIdle(ctx, time.Hour, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("EvictIdle did not return after cancel")
	}
}

func TestConcurrentAccess(t *testing.T) {
	st := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := st.GetOrCreate("shared")
			s.RecordAnswer("q", "a", nil, "r", models.LanguageTurkish)
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	s, _ := st.Get("shared")
	assert.Len(t, s.History(), 20)
}
