package models

import (
	"fmt"
	"time"
)

// PageRecord is the text of one non-blank page, tagged with its source file
// and 1-based page number.
type PageRecord struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Page   int    `json:"page"`
}

// Chunk is a bounded slice of a single page's text.
type Chunk struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
	ChunkID int    `json:"chunk_id"`
}

// ID is unique within one upload batch.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s-%d-%d", c.Source, c.Page, c.ChunkID)
}

// Reference formats the citation shown next to answers.
func (c Chunk) Reference() string {
	return fmt.Sprintf("%s (%d)", c.Source, c.Page)
}

type ConversationEntry struct {
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	RefinedAnswer string    `json:"refined_answer"`
	Sources       []Chunk   `json:"sources"`
	Role          string    `json:"role"`
	Language      Language  `json:"language"`
	AskedAt       time.Time `json:"asked_at"`
}
