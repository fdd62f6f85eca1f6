package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
)

// ReviewStateStore defines the persistence of per-learner card review states.
type ReviewStateStore interface {
	// Get retrieves the state of one card for one learner.
	// Returns ErrReviewStateNotFound if the learner never attempted the card.
	Get(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardReviewState, error)

	// GetForUpdate is Get with a row-level lock. It must run inside a transaction.
	GetForUpdate(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardReviewState, error)

	// Upsert inserts or replaces the state keyed by (learner, card).
	// Returns domain validation errors if the state is invalid.
	Upsert(ctx context.Context, state *domain.CardReviewState) error

	// ListCandidates returns every card the learner has a state for, filtered.
	ListCandidates(
		ctx context.Context,
		learnerID uuid.UUID,
		filters domain.SessionFilters,
	) ([]domain.CardCandidate, error)

	// WithTx returns a store bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewStateStore
}

// ContentPool is the card repository the session service falls back to when a
// learner has no candidates yet.
type ContentPool interface {
	// GetCard returns a single card. Returns ErrCardNotFound if it does not exist.
	GetCard(ctx context.Context, cardID uuid.UUID) (*domain.CardRef, error)

	// PoolCards returns up to limit cards matching the filters that the learner
	// has not attempted yet.
	PoolCards(
		ctx context.Context,
		learnerID uuid.UUID,
		filters domain.SessionFilters,
		limit int,
	) ([]domain.CardRef, error)
}
