package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/api/shared"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/srs"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
)

// StudyService records attempts and selects sessions. study.Service
// implements it.
type StudyService interface {
	RecordAttempt(
		ctx context.Context,
		learnerID, cardID uuid.UUID,
		attempt srs.Attempt,
	) (*domain.CardReviewState, error)
	SelectSession(
		ctx context.Context,
		learnerID uuid.UUID,
		size int,
		filters domain.SessionFilters,
	) (domain.SessionSelection, error)
}

// StudyHandler serves attempt recording and session selection.
type StudyHandler struct {
	study  StudyService
	logger *slog.Logger
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(study StudyService, logger *slog.Logger) *StudyHandler {
	if study == nil {
		panic("study service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StudyHandler{
		study:  study,
		logger: logger.With(slog.String("component", "study_handler")),
	}
}

// RecordAttempt handles POST /api/learners/{learnerID}/cards/{cardID}/attempts.
func (h *StudyHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, err := getPathUUID(r, "learnerID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	cardID, err := getPathUUID(r, "cardID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req RecordAttemptRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	state, err := h.study.RecordAttempt(r.Context(), learnerID, cardID, req.ToAttempt())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("attempt recorded",
		slog.String("learner_id", learnerID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("learning_state", string(state.State())))
	shared.RespondWithJSON(w, r, http.StatusOK, NewAttemptResponse(state))
}

// SelectSession handles GET /api/learners/{learnerID}/session.
// Query parameters: size (default 20), topic and level.
func (h *StudyHandler) SelectSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, err := getPathUUID(r, "learnerID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	size, err := queryInt(r, "size", DefaultSessionSize)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	level, err := domain.ParseCEFRLevel(r.URL.Query().Get("level"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	filters := domain.SessionFilters{
		Topic: strings.TrimSpace(r.URL.Query().Get("topic")),
		Level: level,
	}

	selection, err := h.study.SelectSession(r.Context(), learnerID, size, filters)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if selection.Cards == nil {
		selection.Cards = []domain.CardRef{}
	}

	log.Debug("session selected",
		slog.String("learner_id", learnerID.String()),
		slog.Int("cards", len(selection.Cards)),
		slog.String("source", string(selection.Source)))
	shared.RespondWithJSON(w, r, http.StatusOK, selection)
}
