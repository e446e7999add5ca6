package pipeline

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlpeval/w5h-judge/internal/config"
	"github.com/nlpeval/w5h-judge/internal/domain"
)

// stubPlugin yields a fixed number of tasks per document.
type stubPlugin struct {
	tasksPerDoc int
}

func (p *stubPlugin) Name() string { return "STUB" }

func (p *stubPlugin) Preprocess(cfg *config.Config, logger *slog.Logger) ([]domain.Document, error) {
	return nil, nil
}

func (p *stubPlugin) PrepareTasks(doc domain.Document) []domain.Task {
	tasks := make([]domain.Task, p.tasksPerDoc)
	for i := range tasks {
		tasks[i] = domain.Task{
			DocumentID:   doc.ID,
			OriginalText: doc.Text,
			Extraction:   fmt.Sprintf("extraction %d", i+1),
			ModelName:    fmt.Sprintf("model-%d", i+1),
		}
	}
	return tasks
}

func makeDocs(n int) []domain.Document {
	docs := make([]domain.Document, n)
	for i := range docs {
		docs[i] = domain.Document{ID: fmt.Sprintf("%d", i+1), Text: "text"}
	}
	return docs
}

func TestLimitDocuments(t *testing.T) {
	tests := []struct {
		name  string
		docs  int
		limit int
		want  int
	}{
		{name: "zero limit keeps all", docs: 5, limit: 0, want: 5},
		{name: "negative limit keeps all", docs: 5, limit: -1, want: 5},
		{name: "limit below count caps", docs: 5, limit: 3, want: 3},
		{name: "limit above count keeps all", docs: 2, limit: 10, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LimitDocuments(makeDocs(tt.docs), tt.limit)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestAssemble(t *testing.T) {
	t.Run("no limit expands every document fully", func(t *testing.T) {
		tasks := Assemble(&stubPlugin{tasksPerDoc: 3}, makeDocs(4), 0)
		assert.Len(t, tasks, 12)
	})

	t.Run("limit caps the task stream mid-document", func(t *testing.T) {
		tasks := Assemble(&stubPlugin{tasksPerDoc: 3}, makeDocs(4), 5)
		require.Len(t, tasks, 5)

		// The second document is only partially expanded.
		assert.Equal(t, "1", tasks[2].DocumentID)
		assert.Equal(t, "2", tasks[3].DocumentID)
		assert.Equal(t, "model-2", tasks[4].ModelName)
	})

	t.Run("documents yielding zero tasks are passed over", func(t *testing.T) {
		tasks := Assemble(&stubPlugin{tasksPerDoc: 0}, makeDocs(4), 0)
		assert.Empty(t, tasks)
	})
}
