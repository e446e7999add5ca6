package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"

	"github.com/nlpeval/w5h-judge/internal/domain"
)

// decodeEvaluation parses a structured payload into a DetailedEvaluation and
// enforces the range and key-set invariants. Parsing and validation are the
// same failure class from the caller's perspective.
func (e *Evaluator) decodeEvaluation(payload []byte) (*domain.DetailedEvaluation, error) {
	var evaluation domain.DetailedEvaluation
	if err := json.Unmarshal(payload, &evaluation); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation payload: %w", err)
	}
	if err := evaluation.Validate(e.validate); err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// decodeFromRawText is the degraded fallback: locate a JSON object inside
// free-form response text, repairing near-JSON output if plain decoding
// fails.
func (e *Evaluator) decodeFromRawText(raw string) (*domain.DetailedEvaluation, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object found in response text (%d chars)", len(raw))
	}

	evaluation, err := e.decodeEvaluation([]byte(jsonStr))
	if err == nil {
		return evaluation, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(jsonStr)
	if repairErr != nil {
		return nil, err
	}
	return e.decodeEvaluation([]byte(repaired))
}

// extractJSON pulls a JSON object out of a response that may wrap it in
// markdown code fences or surrounding prose. It scans for balanced braces,
// respecting string literals and escapes.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if start := strings.Index(response, "```json"); start != -1 {
		start += len("```json")
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	if start := strings.Index(response, "```"); start != -1 {
		start += 3
		// Skip any language identifier on the fence line.
		if nl := strings.Index(response[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(response[start:], "```"); end != -1 {
			candidate := strings.TrimSpace(response[start : start+end])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	braceCount := 0
	inString := false
	escapeNext := false

	for i := start; i < len(response); i++ {
		char := response[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if char == '\\' {
			escapeNext = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch char {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				return response[start : i+1]
			}
		}
	}

	return ""
}
