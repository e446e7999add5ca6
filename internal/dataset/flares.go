package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/nlpeval/w5h-judge/internal/config"
	"github.com/nlpeval/w5h-judge/internal/domain"
)

// GroundTruthModel is the sentinel source-model name attached to FLARES
// tasks: the extraction under evaluation is the dataset's own annotation.
const GroundTruthModel = "flares_ground_truth"

// reliableLabel is the dataset's reliability tag for trustworthy annotations.
const reliableLabel = "confiable"

// requiredLabels are the 5W1H label types a FLARES document must cover with
// at least one reliable annotation each. WHY and HOW are rarer and would
// over-constrain the dataset, so they are optional.
var requiredLabels = []string{"WHO", "WHAT", "WHEN", "WHERE"}

// flaresPlugin reads one or more FLARES tag files and keeps, per document,
// the earliest reliable annotation of each required 5W1H label type.
type flaresPlugin struct{}

func (p *flaresPlugin) Name() string { return "FLARES" }

// flaresRecord mirrors one raw line of a FLARES tag file.
type flaresRecord struct {
	ID   string      `json:"Id"`
	Text string      `json:"Text"`
	Tags []flaresTag `json:"Tags"`
}

type flaresTag struct {
	Label       string `json:"5W1H_Label"`
	Reliability string `json:"Reliability_Label"`
	Text        string `json:"Tag_Text"`
	Start       int    `json:"Tag_Start"`
}

// taggedDocument is the intermediate form after the first transform stage:
// raw tags grouped and enumerated per label type.
type taggedDocument struct {
	ID   string
	Text string
	Tags []enumeratedTag
}

type enumeratedTag struct {
	flaresTag
	// EnumeratedID distinguishes repeated annotations of the same label
	// type, e.g. "WHO_2" for the second WHO tag of a document.
	EnumeratedID string
}

func (p *flaresPlugin) Preprocess(cfg *config.Config, logger *slog.Logger) ([]domain.Document, error) {
	paths := make([]string, 0, 2)
	for _, path := range []string{cfg.Paths.FlaresTrain, cfg.Paths.FlaresTrial} {
		if path != "" {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("missing FLARES file paths in config ('paths.flares_train' and/or 'paths.flares_trial')")
	}

	var merged []taggedDocument
	for _, path := range paths {
		docs, err := readFlaresFile(path, logger)
		if err != nil {
			return nil, err
		}
		merged = append(merged, docs...)
	}

	return selectAndFlatten(merged), nil
}

// readFlaresFile parses one tag file, enumerating duplicate labels per
// document. Malformed lines are skipped with a warning.
func readFlaresFile(path string, logger *slog.Logger) ([]taggedDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("FLARES tag file not found at %s: %w", path, err)
	}
	defer f.Close()

	var docs []taggedDocument
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw flaresRecord
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			logger.Warn("skipped malformed FLARES line", "file", path, "line", lineNumber, "error", err)
			continue
		}

		doc := taggedDocument{ID: raw.ID, Text: raw.Text}
		counts := make(map[string]int)
		for _, tag := range raw.Tags {
			et := enumeratedTag{flaresTag: tag}
			if tag.Label != "" {
				counts[tag.Label]++
				et.EnumeratedID = fmt.Sprintf("%s_%d", tag.Label, counts[tag.Label])
			}
			doc.Tags = append(doc.Tags, et)
		}
		docs = append(docs, doc)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading FLARES file %s: %w", path, err)
	}

	return docs, nil
}

// selectAndFlatten keeps only documents that have a reliable annotation for
// every required label type, selecting per label the reliable tag with the
// lowest start offset (the earliest occurrence in the text, following the
// inverted-pyramid convention of news writing). Documents failing the
// completeness requirement are dropped silently; that is a filter, not an
// error.
func selectAndFlatten(docs []taggedDocument) []domain.Document {
	var out []domain.Document

	for _, doc := range docs {
		grouped := make(map[string][]enumeratedTag)
		for _, tag := range doc.Tags {
			if tag.Label != "" {
				grouped[tag.Label] = append(grouped[tag.Label], tag)
			}
		}

		selected := make(map[string]enumeratedTag)
		complete := true
		for _, label := range requiredLabels {
			best, ok := earliestReliable(grouped[label])
			if !ok {
				complete = false
				break
			}
			selected[label] = best
		}
		if !complete {
			continue
		}

		flat := domain.Document{
			ID:     doc.ID,
			Text:   doc.Text,
			Labels: make(map[string]string, len(selected)),
		}
		for label, tag := range selected {
			flat.Labels[titleCase(label)] = tag.Text
		}
		out = append(out, flat)
	}

	return out
}

// earliestReliable returns the reliable tag with the smallest start offset,
// regardless of input order.
func earliestReliable(tags []enumeratedTag) (enumeratedTag, bool) {
	reliable := make([]enumeratedTag, 0, len(tags))
	for _, tag := range tags {
		if tag.Reliability == reliableLabel {
			reliable = append(reliable, tag)
		}
	}
	if len(reliable) == 0 {
		return enumeratedTag{}, false
	}
	sort.SliceStable(reliable, func(i, j int) bool {
		return reliable[i].Start < reliable[j].Start
	})
	return reliable[0], true
}

// titleCase maps a label type to its flattened field name: "WHO" → "Who".
func titleCase(label string) string {
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + strings.ToLower(label[1:])
}

// PrepareTasks always yields exactly one task: the dataset's own 5W1H
// annotation rendered as a labeled block, attributed to the ground-truth
// sentinel model. Missing labels render as an explicit placeholder.
func (p *flaresPlugin) PrepareTasks(doc domain.Document) []domain.Task {
	lines := []string{
		"Qué: " + labelOr(doc.Labels, "What"),
		"Quién: " + labelOr(doc.Labels, "Who"),
		"Cuándo: " + labelOr(doc.Labels, "When"),
		"Dónde: " + labelOr(doc.Labels, "Where"),
		"Por qué: " + labelOr(doc.Labels, "Why"),
		"Cómo: " + labelOr(doc.Labels, "How"),
	}

	return []domain.Task{{
		DocumentID:   doc.ID,
		OriginalText: doc.Text,
		Extraction:   strings.Join(lines, "\n"),
		ModelName:    GroundTruthModel,
	}}
}

func labelOr(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return "No especificado"
}
