// Package output names and writes run artifacts. Filenames are deterministic
// so a results file, its review file, and its spreadsheet can always be
// paired by stem.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// timestampLayout matches the artifact naming scheme; it sorts
// lexicographically in file listings.
const timestampLayout = "2006-01-02_15-04-05"

const reviewSuffix = "_review"

// Timestamp renders t for use in artifact filenames.
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// normalizeSegment makes a provider or model identifier filesystem-safe.
// Slashes, colons, and spaces all appear in real model identifiers
// ("provider/model", "claude-3:beta").
func normalizeSegment(s string) string {
	replacer := strings.NewReplacer("/", "_", ":", "_", " ", "_")
	return replacer.Replace(s)
}

// ResultFilename builds the results artifact name:
// <timestamp>_<environment>_<DATASET>_<provider>_<model>.json.
func ResultFilename(ts time.Time, environment, dataset, provider, model string) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s.json",
		Timestamp(ts),
		environment,
		strings.ToUpper(dataset),
		normalizeSegment(provider),
		normalizeSegment(model))
}

// ReviewFilename derives the review artifact name from a results filename:
// same stem with the review suffix before the extension.
func ReviewFilename(resultFilename string) string {
	ext := filepath.Ext(resultFilename)
	stem := strings.TrimSuffix(resultFilename, ext)
	return stem + reviewSuffix + ext
}

// ExcelFilename derives the spreadsheet name from a review filename by
// swapping the extension.
func ExcelFilename(reviewFilename string) string {
	ext := filepath.Ext(reviewFilename)
	return strings.TrimSuffix(reviewFilename, ext) + ".xlsx"
}

// EnsureDir creates the artifact directory if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return nil
}

// WriteJSON writes v as indented JSON. HTML escaping is disabled so prompt
// and document text stays readable in the artifact.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
