package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ValidationContext is the full input of one answer validation. The two answers
// are what gets judged; the remaining fields classify the question and take part
// in the cache identity, so contexts that differ in any of them never share an entry.
type ValidationContext struct {
	LearnerAnswer   string `json:"learner_answer"`
	ReferenceAnswer string `json:"reference_answer"`
	QuestionKind    string `json:"question_kind"`
	StudyMode       string `json:"study_mode"`
	Word            string `json:"word,omitempty"`
	FreeTextContext string `json:"context,omitempty"`
}

// Normalized returns a copy with every field trimmed and lower-cased.
func (c ValidationContext) Normalized() ValidationContext {
	return ValidationContext{
		LearnerAnswer:   normalize(c.LearnerAnswer),
		ReferenceAnswer: normalize(c.ReferenceAnswer),
		QuestionKind:    normalize(c.QuestionKind),
		StudyMode:       normalize(c.StudyMode),
		Word:            normalize(c.Word),
		FreeTextContext: normalize(c.FreeTextContext),
	}
}

// HasEmptyAnswer reports whether either answer is blank after trimming.
func (c ValidationContext) HasEmptyAnswer() bool {
	return strings.TrimSpace(c.LearnerAnswer) == "" || strings.TrimSpace(c.ReferenceAnswer) == ""
}

// Key returns the cache identity of the context: the hex SHA-256 of the six
// normalized fields, each prefixed with its byte length so that no field's
// content can shift into a neighbouring field.
func (c ValidationContext) Key() string {
	n := c.Normalized()
	h := sha256.New()
	for _, f := range []string{
		n.LearnerAnswer,
		n.ReferenceAnswer,
		n.QuestionKind,
		n.StudyMode,
		n.Word,
		n.FreeTextContext,
	} {
		fmt.Fprintf(h, "%d:%s", len(f), f)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// VerdictSource records which stage of the pipeline produced a verdict.
type VerdictSource string

// Verdict sources, in pipeline order.
const (
	VerdictSourceEmpty      VerdictSource = "empty"
	VerdictSourceExact      VerdictSource = "exact"
	VerdictSourceSimilarity VerdictSource = "similarity"
	VerdictSourceMemory     VerdictSource = "memory"
	VerdictSourceDurable    VerdictSource = "durable"
	VerdictSourceJudge      VerdictSource = "judge"
)

// Verdict is the structured outcome of validating one answer. Source is not
// part of the JSON form, so a cached verdict serializes exactly like the
// judged one it came from.
type Verdict struct {
	IsCorrect           bool          `json:"is_correct"`
	Confidence          float64       `json:"confidence"`
	Reasoning           string        `json:"reasoning"`
	SemanticSimilarity  float64       `json:"semantic_similarity"`
	IsMeaningful        bool          `json:"is_meaningful"`
	SuggestedCorrection string        `json:"suggested_correction,omitempty"`
	Feedback            string        `json:"feedback,omitempty"`
	Encouragement       string        `json:"encouragement,omitempty"`
	Source              VerdictSource `json:"-"`
}

// Validate checks that confidence and similarity are within [0, 1].
func (v *Verdict) Validate() error {
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v", ErrOutOfRange, v.Confidence)
	}
	if v.SemanticSimilarity < 0 || v.SemanticSimilarity > 1 {
		return fmt.Errorf("%w: semantic similarity %v", ErrOutOfRange, v.SemanticSimilarity)
	}
	return nil
}

// EmptyAnswerVerdict is returned whenever either answer is blank.
func EmptyAnswerVerdict() Verdict {
	return Verdict{
		IsCorrect:    false,
		Confidence:   0,
		Reasoning:    "Empty answer provided",
		IsMeaningful: false,
		Source:       VerdictSourceEmpty,
	}
}

// CacheEntry is a persisted validation: the context and verdict are immutable,
// only the access metadata changes after creation.
type CacheEntry struct {
	Key          string            `json:"cache_key"`
	Context      ValidationContext `json:"context"`
	Verdict      Verdict           `json:"verdict"`
	CreatedAt    time.Time         `json:"created_at"`
	AccessCount  int               `json:"access_count"`
	LastAccessed *time.Time        `json:"last_accessed,omitempty"`
}

// NewCacheEntry builds an entry for a freshly judged context.
func NewCacheEntry(ctx ValidationContext, verdict Verdict, now time.Time) (*CacheEntry, error) {
	if err := verdict.Validate(); err != nil {
		return nil, err
	}
	verdict.Source = ""
	return &CacheEntry{
		Key:       ctx.Key(),
		Context:   ctx,
		Verdict:   verdict,
		CreatedAt: now,
	}, nil
}

// Touch records one more read of the entry.
func (e *CacheEntry) Touch(now time.Time) {
	e.AccessCount++
	e.LastAccessed = &now
}

// BucketKey identifies the (question kind, study mode, word) bucket of the entry.
func (e *CacheEntry) BucketKey() string {
	n := e.Context.Normalized()
	return n.QuestionKind + "|" + n.StudyMode + "|" + n.Word
}
