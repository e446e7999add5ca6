package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nlpeval/w5h-judge/internal/config"
	"github.com/nlpeval/w5h-judge/internal/domain"
)

// extractionKeySuffix marks the per-model extraction entries of a BASSE
// line; stripping it recovers the source model name ("gpt4o-5w1h" → "gpt4o").
const extractionKeySuffix = "-5w1h"

// maxLineBytes bounds a single JSONL line. News documents run long, so the
// default bufio.Scanner limit is far too small.
const maxLineBytes = 16 * 1024 * 1024

// bassePlugin reads the BASSE extractions JSONL file. Each line carries a
// document plus up to five per-model 5W1H extractions.
type bassePlugin struct{}

func (p *bassePlugin) Name() string { return "BASSE" }

// basseLine mirrors one raw line of the BASSE JSONL file.
type basseLine struct {
	Idx              *int   `json:"idx"`
	Round            int    `json:"round"`
	OriginalDocument string `json:"original_document"`
	ModelExtractions map[string]struct {
		Summ *string `json:"summ"`
	} `json:"model_extractions"`
}

func (p *bassePlugin) Preprocess(cfg *config.Config, logger *slog.Logger) ([]domain.Document, error) {
	path := cfg.Paths.BasseJSONL
	if path == "" {
		return nil, fmt.Errorf("missing 'paths.basse_jsonl' in config for BASSE dataset")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("BASSE dataset file not found at %s: %w", path, err)
	}
	defer f.Close()

	var docs []domain.Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw basseLine
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			// Best-effort parse: a bad line degrades itself, never the batch.
			logger.Warn("skipped malformed BASSE line", "line", lineNumber, "error", err)
			continue
		}

		doc := domain.Document{
			Round:       raw.Round,
			Text:        raw.OriginalDocument,
			Extractions: make(map[string]string),
		}
		if raw.Idx != nil {
			doc.ID = strconv.Itoa(*raw.Idx)
		}

		for key, entry := range raw.ModelExtractions {
			if !strings.HasSuffix(key, extractionKeySuffix) {
				continue
			}
			// Absent extractions stay absent; they must not become
			// empty-string tasks downstream.
			if entry.Summ == nil {
				continue
			}
			model := strings.TrimSuffix(key, extractionKeySuffix)
			doc.Extractions[model] = *entry.Summ
		}

		docs = append(docs, doc)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading BASSE file %s: %w", path, err)
	}

	return docs, nil
}

// PrepareTasks yields one task per model extraction present on the document,
// in lexicographic model-name order so runs are reproducible.
func (p *bassePlugin) PrepareTasks(doc domain.Document) []domain.Task {
	models := make([]string, 0, len(doc.Extractions))
	for model := range doc.Extractions {
		models = append(models, model)
	}
	sort.Strings(models)

	tasks := make([]domain.Task, 0, len(models))
	for _, model := range models {
		tasks = append(tasks, domain.Task{
			DocumentID:   doc.ID,
			OriginalText: doc.Text,
			Extraction:   doc.Extractions[model],
			ModelName:    model,
		})
	}
	return tasks
}
