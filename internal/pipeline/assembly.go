// Package pipeline orchestrates the evaluation run: dataset preprocessing,
// task assembly, engine execution, and artifact generation.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/nlpeval/w5h-judge/internal/config"
	"github.com/nlpeval/w5h-judge/internal/dataset"
	"github.com/nlpeval/w5h-judge/internal/domain"
)

// Preprocess loads the configured dataset's documents. The run limit is not
// applied here: the preprocess-only step caps documents, while prepare and
// evaluate cap the task stream instead.
func Preprocess(cfg *config.Config, logger *slog.Logger) (dataset.Plugin, []domain.Document, error) {
	plugin, err := dataset.Get(cfg.Run.Dataset)
	if err != nil {
		return nil, nil, err
	}

	docs, err := plugin.Preprocess(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("preprocess %s: %w", plugin.Name(), err)
	}

	logger.Info("dataset preprocessed", "dataset", plugin.Name(), "documents", len(docs))
	return plugin, docs, nil
}

// LimitDocuments caps the document slice at limit. A limit of zero or less
// keeps every document.
func LimitDocuments(docs []domain.Document, limit int) []domain.Document {
	if limit > 0 && len(docs) > limit {
		return docs[:limit]
	}
	return docs
}

// Assemble expands documents into evaluation tasks. When limit is positive
// the task stream is capped during generation: documents are consumed in
// order and expansion stops as soon as the cap is reached, so a document's
// extractions may be only partially represented in the final slice.
func Assemble(plugin dataset.Plugin, docs []domain.Document, limit int) []domain.Task {
	var tasks []domain.Task
	for _, doc := range docs {
		for _, task := range plugin.PrepareTasks(doc) {
			tasks = append(tasks, task)
			if limit > 0 && len(tasks) >= limit {
				return tasks
			}
		}
	}
	return tasks
}
