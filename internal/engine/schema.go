package engine

import "github.com/nlpeval/w5h-judge/infrastructure/llm"

// SaveEvaluationTool is the single callable the judge model is forced to
// invoke; its arguments carry the structured evaluation.
const SaveEvaluationTool = "save_evaluation"

// saveEvaluationDescription documents the callable for the model.
const saveEvaluationDescription = "Saves the structured evaluation result of an extraction."

// evaluationSchema describes the DetailedEvaluation payload: six bounded
// integer scores, six free-text justifications with the identical key set,
// and a source-text confidence sub-object.
func evaluationSchema() *llm.Schema {
	return llm.Object("Structured and detailed evaluation of a 5W1H extraction.",
		map[string]*llm.Schema{
			"scores": llm.Object("The set of all numerical scores for the evaluation.",
				map[string]*llm.Schema{
					"factual_accuracy":          llm.BoundedInt("Score (1-5) for: Is the extracted information correct and does it faithfully reflect the facts presented in the source text?", 1, 5),
					"completeness":              llm.BoundedInt("Score (1-5) for: Does the extraction capture all essential information from the source text that answers the specific 5W1H question?", 1, 5),
					"relevance_and_conciseness": llm.BoundedInt("Score (1-5) for: Does the extraction focus only on the answer, avoiding superfluous information or content that would belong to another 5W1H element?", 1, 5),
					"clarity_and_readability":   llm.BoundedInt("Score (1-5) for: Is the extracted segment grammatically correct, coherent, and easy to understand on its own?", 1, 5),
					"source_faithfulness":       llm.BoundedInt("Score (1-5) for: Is the extraction strictly based on the source text information, without adding interpretations or hallucinations?", 1, 5),
					"overall_coherence":         llm.BoundedInt("Score (1-5) for: When considering all extractions together, do they form a logically connected and coherent set?", 1, 5),
				},
				"factual_accuracy", "completeness", "relevance_and_conciseness",
				"clarity_and_readability", "source_faithfulness", "overall_coherence",
			),
			"justifications": llm.Object("The set of all textual justifications supporting the scores.",
				map[string]*llm.Schema{
					"factual_accuracy":          llm.String("Brief justification for the Factual Accuracy score."),
					"completeness":              llm.String("Brief justification for the Completeness score."),
					"relevance_and_conciseness": llm.String("Brief justification for the Relevance and Conciseness score."),
					"clarity_and_readability":   llm.String("Brief justification for the Clarity and Readability score."),
					"source_faithfulness":       llm.String("Brief justification for the Source Faithfulness score."),
					"overall_coherence":         llm.String("Brief justification for the Overall Coherence score."),
				},
				"factual_accuracy", "completeness", "relevance_and_conciseness",
				"clarity_and_readability", "source_faithfulness", "overall_coherence",
			),
			"confidence_level": llm.Object("The confidence level for the source text.",
				map[string]*llm.Schema{
					"score":         llm.BoundedInt("Score (1-5) for: The suitability of the source for a 5W1H extraction.", 1, 5),
					"justification": llm.String("Brief justification for the Confidence Level score (e.g. 'The text is an editorial, not a news story')."),
				},
				"score", "justification",
			),
		},
		"scores", "justifications", "confidence_level",
	)
}
