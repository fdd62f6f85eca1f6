package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/vocab-api/internal/judge"
	"google.golang.org/genai"
)

// responseSchema is the JSON object the prompt asks the model for. Pointer fields
// are required; a missing one makes the whole response invalid.
type responseSchema struct {
	IsCorrect           *bool    `json:"is_correct"`
	ConfidenceScore     *float64 `json:"confidence_score"`
	Reasoning           string   `json:"reasoning"`
	SemanticSimilarity  *float64 `json:"semantic_similarity"`
	IsMeaningful        *bool    `json:"is_meaningful"`
	SuggestedCorrection *string  `json:"suggested_correction"`
	Feedback            string   `json:"feedback"`
	Encouragement       string   `json:"encouragement"`
}

// extractText returns the text of the first candidate, or an error when the
// response carries nothing usable.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", judge.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", judge.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", judge.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason %s", judge.ErrContentBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: candidate has no content", judge.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: empty response text", judge.ErrInvalidResponse)
	}
	return sb.String(), nil
}

// extractJSON returns the span from the first '{' to the last '}' so that
// models wrapping the object in prose or code fences still parse.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// parseResult converts the model text into a judge result.
func parseResult(text string) (*judge.Result, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found in response", judge.ErrInvalidResponse)
	}

	var schema responseSchema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %v", judge.ErrInvalidResponse, err)
	}

	var missing []string
	if schema.IsCorrect == nil {
		missing = append(missing, "is_correct")
	}
	if schema.ConfidenceScore == nil {
		missing = append(missing, "confidence_score")
	}
	if schema.SemanticSimilarity == nil {
		missing = append(missing, "semantic_similarity")
	}
	if schema.IsMeaningful == nil {
		missing = append(missing, "is_meaningful")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields %s", judge.ErrInvalidResponse, strings.Join(missing, ", "))
	}

	result := &judge.Result{
		IsCorrect:          *schema.IsCorrect,
		Confidence:         *schema.ConfidenceScore,
		Reasoning:          strings.TrimSpace(schema.Reasoning),
		SemanticSimilarity: *schema.SemanticSimilarity,
		IsMeaningful:       *schema.IsMeaningful,
		Feedback:           strings.TrimSpace(schema.Feedback),
		Encouragement:      strings.TrimSpace(schema.Encouragement),
	}
	if schema.SuggestedCorrection != nil {
		result.SuggestedCorrection = strings.TrimSpace(*schema.SuggestedCorrection)
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}
