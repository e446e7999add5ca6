// Package domain defines the core types flowing through the evaluation
// pipeline: documents produced by dataset plugins, the tasks derived from
// them, and the structured evaluation records the LLM judge returns.
package domain

// Document is the normalized unit produced by a dataset plugin's preprocess
// stage. Only a subset of fields is populated depending on the dataset:
// BASSE fills Round and Extractions, FLARES fills Labels.
type Document struct {
	// ID uniquely identifies the source document within its dataset.
	ID string `json:"id"`

	// Round is the annotation round the document belongs to (BASSE only).
	Round int `json:"round,omitempty"`

	// Text is the full source text the extractions were produced from.
	Text string `json:"text"`

	// Extractions maps a source model name to its 5W1H extraction text.
	// Models that produced no extraction for this document are absent,
	// not present with an empty value.
	Extractions map[string]string `json:"extractions,omitempty"`

	// Labels maps a capitalized 5W1H label (Who, What, ...) to the
	// canonical annotated span selected for it (FLARES only).
	Labels map[string]string `json:"labels,omitempty"`
}

// Task is a single unit of work for the evaluation engine: one extraction
// from one source model, paired with the document it was extracted from.
// Tasks are immutable once produced.
type Task struct {
	// DocumentID identifies the source document.
	DocumentID string

	// OriginalText is the full source text shown to the judge.
	OriginalText string

	// Extraction is the machine-produced 5W1H answer under evaluation.
	Extraction string

	// ModelName attributes the extraction to the system that produced it.
	ModelName string
}
