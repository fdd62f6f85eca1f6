package api

import (
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/srs"
)

// Defaults applied when a request leaves a size unspecified.
const (
	DefaultSessionSize     = 20
	DefaultAuditSampleSize = 100
	MaxAuditSampleSize     = 10000
)

// ValidateRequest is the body of POST /api/validate.
type ValidateRequest struct {
	LearnerAnswer   string `json:"learner_answer"   validate:"max=2000"`
	ReferenceAnswer string `json:"reference_answer" validate:"max=2000"`
	QuestionKind    string `json:"question_kind"    validate:"max=64"`
	StudyMode       string `json:"study_mode"       validate:"max=64"`
	Word            string `json:"word,omitempty"   validate:"max=256"`
	Context         string `json:"context,omitempty" validate:"max=2000"`
}

// ToDomain converts the request to a validation context.
func (r ValidateRequest) ToDomain() domain.ValidationContext {
	return domain.ValidationContext{
		LearnerAnswer:   r.LearnerAnswer,
		ReferenceAnswer: r.ReferenceAnswer,
		QuestionKind:    r.QuestionKind,
		StudyMode:       r.StudyMode,
		Word:            r.Word,
		FreeTextContext: r.Context,
	}
}

// RecordAttemptRequest is the body of POST .../attempts. Response times are
// capped at one day so the millisecond count always fits a time.Duration.
type RecordAttemptRequest struct {
	IsCorrect      *bool    `json:"is_correct"                validate:"required"`
	Confidence     *float64 `json:"confidence"                validate:"required,gte=0,lte=1"`
	HintsUsed      int      `json:"hints_used"                validate:"gte=0,lte=1000"`
	ResponseTimeMS int64    `json:"response_time_ms"          validate:"gte=0,lte=86400000"`
	UserConfidence int      `json:"user_confidence,omitempty" validate:"omitempty,min=1,max=5"`
}

// ToAttempt converts the request to an srs attempt. It must only be called
// after validation.
func (r RecordAttemptRequest) ToAttempt() srs.Attempt {
	return srs.Attempt{
		IsCorrect:      *r.IsCorrect,
		Confidence:     *r.Confidence,
		HintsUsed:      r.HintsUsed,
		ResponseTime:   time.Duration(r.ResponseTimeMS) * time.Millisecond,
		UserConfidence: r.UserConfidence,
	}
}

// AttemptResponse is the body returned after recording an attempt: the
// updated review state plus its derived learning state.
type AttemptResponse struct {
	*domain.CardReviewState
	LearningState domain.LearningState `json:"learning_state"`
}

// NewAttemptResponse wraps state for the wire.
func NewAttemptResponse(state *domain.CardReviewState) AttemptResponse {
	return AttemptResponse{CardReviewState: state, LearningState: state.State()}
}

// PurgeRequest is the optional body of POST /api/cache/purge.
// Without OlderThanHours the whole cache is purged. Ages are capped at ten
// years for the same reason as response times.
type PurgeRequest struct {
	OlderThanHours *float64 `json:"older_than_hours,omitempty" validate:"omitempty,gte=0,lte=87600"`
}

// OlderThan returns the requested age as a duration, or nil.
func (r PurgeRequest) OlderThan() *time.Duration {
	if r.OlderThanHours == nil {
		return nil
	}
	d := time.Duration(*r.OlderThanHours * float64(time.Hour))
	return &d
}

// PurgeResponse reports how many durable entries a purge removed.
type PurgeResponse struct {
	Removed int64 `json:"removed"`
}

// AuditRequest is the optional body of POST /api/cache/audit.
type AuditRequest struct {
	SampleSize int `json:"sample_size" validate:"gte=0,lte=10000"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
