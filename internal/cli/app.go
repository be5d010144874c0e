package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"pdf-role-chat/internal/chromemdb"
	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/db"
	"pdf-role-chat/internal/embedding"
	"pdf-role-chat/internal/helper"
	"pdf-role-chat/internal/llmservice"
	"pdf-role-chat/internal/preview"
	"pdf-role-chat/internal/rag"
	"pdf-role-chat/internal/service"
	"pdf-role-chat/internal/session"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg      *config.Config
	svc      *service.Service
	renderer *preview.Renderer
	vectors  *chromemdb.VectorDBManager // nil unless the chromem backend is used
	closers  []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	if err := helper.CreateFolder(cfg.Storage.DataDir); err != nil {
		return nil, err
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}

	var index rag.Index
	switch cfg.VectorStore.Backend {
	case config.BackendPGVector:
		store, err := db.NewStore(ctx, &cfg.Database, embedder)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		index = store
	default:
		a.vectors, err = chromemdb.NewVectorDBManager(cfg.VectorStore.Path, cfg.VectorStore.CollectionName, embedding.EmbeddingFunc(embedder))
		if err != nil {
			return nil, err
		}
		index = a.vectors
	}

	llm, err := llmservice.NewLLM(&cfg.LLM)
	if err != nil {
		a.Close()
		return nil, err
	}
	assistant := rag.NewAssistant(llmservice.NewClient(llm, &cfg.LLM), index, cfg.RAG)

	a.renderer, err = preview.NewRenderer(cfg.Preview)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.svc = service.New(cfg, assistant, a.renderer, session.NewStore())
	log.Debug().Str("backend", cfg.VectorStore.Backend).Str("model", cfg.LLM.Model).Msg("Application ready")
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("Failed to close resource")
		}
	}
}

// openFiles wraps local paths as service inputs. The returned function
// closes them.
func openFiles(paths []string) ([]service.FileInput, func(), error) {
	var (
		inputs []service.FileInput
		files  []*os.File
	)
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open %s: %w", p, err)
		}
		files = append(files, f)
		inputs = append(inputs, service.FileInput{Name: filepath.Base(p), Reader: f})
	}
	return inputs, closeAll, nil
}
