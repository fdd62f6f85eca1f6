package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/vocab-api/internal/api/shared"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
)

// VerdictSourceHeader carries the pipeline stage that produced a verdict.
const VerdictSourceHeader = "X-Verdict-Source"

// AnswerValidator judges a learner answer. validation.Service implements it.
type AnswerValidator interface {
	Validate(ctx context.Context, vc domain.ValidationContext) (domain.Verdict, error)
}

// ValidationHandler serves answer validation.
type ValidationHandler struct {
	validator AnswerValidator
	logger    *slog.Logger
}

// NewValidationHandler creates a ValidationHandler.
func NewValidationHandler(validator AnswerValidator, logger *slog.Logger) *ValidationHandler {
	if validator == nil {
		panic("validator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidationHandler{
		validator: validator,
		logger:    logger.With(slog.String("component", "validation_handler")),
	}
}

// Validate handles POST /api/validate.
func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ValidateRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		log.Debug("invalid validate request", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return
	}

	verdict, err := h.validator.Validate(r.Context(), req.ToDomain())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("answer validated",
		slog.Bool("is_correct", verdict.IsCorrect),
		slog.String("source", string(verdict.Source)))
	if verdict.Source != "" {
		w.Header().Set(VerdictSourceHeader, string(verdict.Source))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, verdict)
}
