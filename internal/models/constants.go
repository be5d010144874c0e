package models

const (
	// metadata keys stored next to each indexed chunk
	MetaSource  = "source"
	MetaPage    = "page"
	MetaChunkID = "chunk_id"

	ThinkTag         = `(?s)<think>.*?</think>`
	ContextSeparator = "\n\n"
)

type RefineMode string

const (
	RefineElaborate RefineMode = "elaborate"
	RefineSimplify  RefineMode = "simplify"
)
