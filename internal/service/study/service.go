package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/srs"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/store"
)

// MaxSessionSize caps the number of cards a single session may request.
const MaxSessionSize = 200

// Service records attempts and selects study sessions.
type Service struct {
	db         *sql.DB
	states     store.ReviewStateStore
	pool       store.ContentPool
	srsService srs.Service
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new study Service. db is used to open the transaction
// that wraps each recorded attempt.
func NewService(
	db *sql.DB,
	states store.ReviewStateStore,
	pool store.ContentPool,
	srsService srs.Service,
	logger *slog.Logger,
) *Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if states == nil {
		panic("states cannot be nil")
	}
	if pool == nil {
		panic("pool cannot be nil")
	}
	if srsService == nil {
		srsService = srs.NewDefaultService()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		db:         db,
		states:     states,
		pool:       pool,
		srsService: srsService,
		logger:     logger.With(slog.String("component", "study_service")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RecordAttempt applies one attempt to the learner's state for the card and
// returns the new state. A learner's first attempt on a card creates the state.
//
// Returns ErrInvalidRequest for nil IDs, ErrCardNotFound when the card does not
// exist and ErrInvalidAttempt when the attempt fails validation.
func (s *Service) RecordAttempt(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
	attempt srs.Attempt,
) (*domain.CardReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learner_id", learnerID.String()),
		slog.String("card_id", cardID.String()),
	)

	if learnerID == uuid.Nil || cardID == uuid.Nil {
		return nil, fmt.Errorf("%w: learner and card IDs are required", ErrInvalidRequest)
	}

	now := s.now()
	var updated *domain.CardReviewState

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		states := s.states.WithTx(tx)

		state, err := states.GetForUpdate(ctx, learnerID, cardID)
		switch {
		case errors.Is(err, store.ErrReviewStateNotFound):
			if _, err := s.pool.GetCard(ctx, cardID); err != nil {
				if errors.Is(err, store.ErrCardNotFound) {
					return ErrCardNotFound
				}
				return fmt.Errorf("failed to look up card: %w", err)
			}
			state, err = domain.NewCardReviewState(learnerID, cardID, now)
			if err != nil {
				return fmt.Errorf("failed to create review state: %w", err)
			}
			log.Debug("first attempt on card, creating review state")
		case err != nil:
			return fmt.Errorf("failed to get review state: %w", err)
		}

		next, err := s.srsService.RecordAttempt(state, attempt, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAttempt, err)
		}

		if err := states.Upsert(ctx, next); err != nil {
			return fmt.Errorf("failed to save review state: %w", err)
		}
		updated = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrInvalidAttempt) {
			log.Warn("attempt rejected", slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to record attempt", slog.String("error", err.Error()))
		return nil, NewRecordAttemptError("failed to record attempt", err)
	}

	log.Debug("attempt recorded",
		slog.Bool("is_correct", attempt.IsCorrect),
		slog.Int("review_count", updated.ReviewCount),
		slog.Float64("mastery_level", updated.MasteryLevel),
		slog.String("difficulty", string(updated.Difficulty)),
		slog.Time("next_review_at", updated.NextReviewAt))
	return updated, nil
}

// SelectSession picks at most size cards for the learner. Cards the learner has
// attempted come from their review states; cards they have never attempted come
// from the content pool and compete for the new-card quota. An empty selection
// is a valid result.
func (s *Service) SelectSession(
	ctx context.Context,
	learnerID uuid.UUID,
	size int,
	filters domain.SessionFilters,
) (domain.SessionSelection, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learner_id", learnerID.String()),
	)

	if learnerID == uuid.Nil {
		return domain.SessionSelection{}, fmt.Errorf("%w: learner ID is required", ErrInvalidRequest)
	}
	if size > MaxSessionSize {
		size = MaxSessionSize
	}

	now := s.now()
	if size <= 0 {
		return s.srsService.SelectSession(nil, size, now), nil
	}

	reviewed, err := s.states.ListCandidates(ctx, learnerID, filters)
	if err != nil {
		log.Error("failed to list candidates", slog.String("error", err.Error()))
		return domain.SessionSelection{}, NewSelectSessionError("failed to list candidates", err)
	}

	// Backfill may hand every slot to new cards, so ask for up to size of them.
	unseen, err := s.pool.PoolCards(ctx, learnerID, filters, size)
	if err != nil {
		log.Error("failed to read content pool", slog.String("error", err.Error()))
		return domain.SessionSelection{}, NewSelectSessionError("failed to read content pool", err)
	}

	candidates := make([]domain.CardCandidate, 0, len(reviewed)+len(unseen))
	candidates = append(candidates, reviewed...)
	for _, card := range unseen {
		candidates = append(candidates, domain.CardCandidate{
			Card:  card,
			State: domain.CardReviewState{LearnerID: learnerID, CardID: card.ID, NextReviewAt: now},
		})
	}

	selection := s.srsService.SelectSession(candidates, size, now)
	selection.Source = domain.SessionSourceReview
	if len(reviewed) == 0 {
		selection.Source = domain.SessionSourcePool
	}

	log.Debug("session selected",
		slog.Int("reviewed_candidates", len(reviewed)),
		slog.Int("unseen_candidates", len(unseen)),
		slog.Int("quota_total", selection.Quotas.Total()),
		slog.Int("backfill_slots", selection.TargetSize-selection.Quotas.Total()),
		slog.Int("cards", len(selection.Cards)))
	return selection, nil
}
