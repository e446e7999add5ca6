// Package dataset provides the dataset plugin registry and the BASSE and
// FLARES plugins. A plugin turns configured input files into normalized
// Documents and expands each Document into zero or more evaluation tasks.
// Plugins read files and return in-memory structures; they perform no
// network I/O.
package dataset

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/nlpeval/w5h-judge/internal/config"
	"github.com/nlpeval/w5h-judge/internal/domain"
)

// Plugin adapts one dataset to the evaluation pipeline.
type Plugin interface {
	// Name returns the canonical dataset name.
	Name() string

	// Preprocess reads the dataset files named in cfg and returns the
	// normalized documents. Missing required files are configuration
	// errors; malformed input lines are logged and skipped.
	Preprocess(cfg *config.Config, logger *slog.Logger) ([]domain.Document, error)

	// PrepareTasks expands one document into its evaluation tasks, in a
	// deterministic plugin-defined order.
	PrepareTasks(doc domain.Document) []domain.Task
}

var registry = map[string]Plugin{
	"BASSE":  &bassePlugin{},
	"FLARES": &flaresPlugin{},
}

// Get returns the plugin for a dataset name, case-insensitively.
// Unknown names fail with an error listing the valid names.
func Get(name string) (Plugin, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	plugin, ok := registry[key]
	if !ok {
		names := make([]string, 0, len(registry))
		for n := range registry {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown dataset %q; available: %s", name, strings.Join(names, ", "))
	}
	return plugin, nil
}
