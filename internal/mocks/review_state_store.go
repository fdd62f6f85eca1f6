package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/store"
)

type stateKey struct {
	learner uuid.UUID
	card    uuid.UUID
}

// MockReviewStateStore is an in-memory store.ReviewStateStore. Candidates are
// resolved against the cards registered with AddCard.
type MockReviewStateStore struct {
	GetFn            func(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardReviewState, error)
	UpsertFn         func(ctx context.Context, state *domain.CardReviewState) error
	ListCandidatesFn func(ctx context.Context, learnerID uuid.UUID, filters domain.SessionFilters) ([]domain.CardCandidate, error)

	mu     sync.Mutex
	states map[stateKey]domain.CardReviewState
	cards  map[uuid.UUID]domain.CardRef
	txs    int
}

var _ store.ReviewStateStore = (*MockReviewStateStore)(nil)

// NewMockReviewStateStore creates an empty store.
func NewMockReviewStateStore() *MockReviewStateStore {
	return &MockReviewStateStore{
		states: make(map[stateKey]domain.CardReviewState),
		cards:  make(map[uuid.UUID]domain.CardRef),
	}
}

// AddCard registers a card so that ListCandidates can join states to it.
func (m *MockReviewStateStore) AddCard(card domain.CardRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.ID] = card
}

// Seed stores states directly.
func (m *MockReviewStateStore) Seed(states ...*domain.CardReviewState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range states {
		m.states[stateKey{s.LearnerID, s.CardID}] = *s.Clone()
	}
}

// State returns a copy of a stored state, bypassing any function fields.
func (m *MockReviewStateStore) State(learnerID, cardID uuid.UUID) (*domain.CardReviewState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[stateKey{learnerID, cardID}]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// TxCount returns how many times WithTx was called.
func (m *MockReviewStateStore) TxCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txs
}

// Get implements store.ReviewStateStore.
func (m *MockReviewStateStore) Get(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardReviewState, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, learnerID, cardID)
	}
	if s, ok := m.State(learnerID, cardID); ok {
		return s, nil
	}
	return nil, store.ErrReviewStateNotFound
}

// GetForUpdate implements store.ReviewStateStore. The mock does not lock.
func (m *MockReviewStateStore) GetForUpdate(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
) (*domain.CardReviewState, error) {
	return m.Get(ctx, learnerID, cardID)
}

// Upsert implements store.ReviewStateStore.
func (m *MockReviewStateStore) Upsert(ctx context.Context, state *domain.CardReviewState) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, state)
	}
	if err := state.Validate(); err != nil {
		return err
	}
	m.Seed(state)
	return nil
}

// ListCandidates implements store.ReviewStateStore. Results are ordered by
// next review time, then card ID.
func (m *MockReviewStateStore) ListCandidates(
	ctx context.Context,
	learnerID uuid.UUID,
	filters domain.SessionFilters,
) ([]domain.CardCandidate, error) {
	if m.ListCandidatesFn != nil {
		return m.ListCandidatesFn(ctx, learnerID, filters)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.CardCandidate{}
	for k, s := range m.states {
		if k.learner != learnerID {
			continue
		}
		card, ok := m.cards[k.card]
		if !ok {
			card = domain.CardRef{ID: k.card}
		}
		if !filters.Matches(card) {
			continue
		}
		out = append(out, domain.CardCandidate{Card: card, State: s})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].State, out[j].State
		if !a.NextReviewAt.Equal(b.NextReviewAt) {
			return a.NextReviewAt.Before(b.NextReviewAt)
		}
		return a.CardID.String() < b.CardID.String()
	})
	return out, nil
}

// WithTx implements store.ReviewStateStore by returning the same store.
func (m *MockReviewStateStore) WithTx(*sql.Tx) store.ReviewStateStore {
	m.mu.Lock()
	m.txs++
	m.mu.Unlock()
	return m
}

// MockContentPool is an in-memory store.ContentPool.
type MockContentPool struct {
	GetCardFn   func(ctx context.Context, cardID uuid.UUID) (*domain.CardRef, error)
	PoolCardsFn func(
		ctx context.Context,
		learnerID uuid.UUID,
		filters domain.SessionFilters,
		limit int,
	) ([]domain.CardRef, error)

	// Attempted reports whether the learner already has a state for the card.
	// Nil means nothing has been attempted.
	Attempted func(learnerID, cardID uuid.UUID) bool

	mu    sync.Mutex
	cards []domain.CardRef
}

var _ store.ContentPool = (*MockContentPool)(nil)

// NewMockContentPool creates a pool holding cards in the given order.
func NewMockContentPool(cards ...domain.CardRef) *MockContentPool {
	return &MockContentPool{cards: append([]domain.CardRef(nil), cards...)}
}

// GetCard implements store.ContentPool.
func (m *MockContentPool) GetCard(ctx context.Context, cardID uuid.UUID) (*domain.CardRef, error) {
	if m.GetCardFn != nil {
		return m.GetCardFn(ctx, cardID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cards {
		if c.ID == cardID {
			card := c
			return &card, nil
		}
	}
	return nil, store.ErrCardNotFound
}

// PoolCards implements store.ContentPool.
func (m *MockContentPool) PoolCards(
	ctx context.Context,
	learnerID uuid.UUID,
	filters domain.SessionFilters,
	limit int,
) ([]domain.CardRef, error) {
	if m.PoolCardsFn != nil {
		return m.PoolCardsFn(ctx, learnerID, filters, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.CardRef{}
	for _, c := range m.cards {
		if len(out) >= limit {
			break
		}
		if !filters.Matches(c) {
			continue
		}
		if m.Attempted != nil && m.Attempted(learnerID, c.ID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
