package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/srs"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/store"
)

const stateColumns = `s.learner_id, s.card_id, s.review_count, s.last_reviewed_at,
	s.difficulty_rating, s.mastery_level, s.next_review_at, s.created_at, s.updated_at`

// PostgresReviewStateStore implements the store.ReviewStateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStateStore creates a new PostgreSQL review state store.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresReviewStateStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_state_store")),
	}
}

// Ensure PostgresReviewStateStore implements store.ReviewStateStore interface
var _ store.ReviewStateStore = (*PostgresReviewStateStore)(nil)

// scanReviewState reads the stateColumns. Legacy rows without a stored mastery
// level get one estimated from their review count and difficulty.
func scanReviewState(row rowScanner, extra ...any) (*domain.CardReviewState, error) {
	var (
		st           domain.CardReviewState
		lastReviewed sql.NullTime
		difficulty   sql.NullString
		mastery      sql.NullFloat64
	)
	dest := append(extra,
		&st.LearnerID,
		&st.CardID,
		&st.ReviewCount,
		&lastReviewed,
		&difficulty,
		&mastery,
		&st.NextReviewAt,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if lastReviewed.Valid {
		t := lastReviewed.Time
		st.LastReviewedAt = &t
	}
	if difficulty.Valid {
		st.Difficulty = domain.DifficultyRating(difficulty.String)
	}
	if mastery.Valid {
		st.MasteryLevel = mastery.Float64
	} else {
		st.MasteryLevel = srs.EstimateMastery(st.ReviewCount, st.Difficulty)
	}
	return &st, nil
}

// Get implements store.ReviewStateStore.Get.
// Returns store.ErrReviewStateNotFound if the learner never attempted the card.
func (s *PostgresReviewStateStore) Get(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardReviewState, error) {
	return s.get(ctx, learnerID, cardID, false)
}

// GetForUpdate implements store.ReviewStateStore.GetForUpdate.
// The row stays locked until the surrounding transaction ends.
func (s *PostgresReviewStateStore) GetForUpdate(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
) (*domain.CardReviewState, error) {
	return s.get(ctx, learnerID, cardID, true)
}

func (s *PostgresReviewStateStore) get(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
	forUpdate bool,
) (*domain.CardReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + stateColumns + ` FROM card_review_states s WHERE s.learner_id = $1 AND s.card_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	st, err := scanReviewState(s.db.QueryRowContext(ctx, query, learnerID, cardID))
	if err != nil {
		if IsNotFoundError(err) {
			log.Debug("review state not found",
				slog.String("learner_id", learnerID.String()),
				slog.String("card_id", cardID.String()))
			return nil, store.ErrReviewStateNotFound
		}
		log.Error("failed to get review state",
			slog.String("learner_id", learnerID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("review_state", "get", "failed to get review state", MapError(err))
	}
	return st, nil
}

// Upsert implements store.ReviewStateStore.Upsert.
// Returns domain validation errors if the state is invalid and
// store.ErrInvalidEntity if the card does not exist.
func (s *PostgresReviewStateStore) Upsert(ctx context.Context, state *domain.CardReviewState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("review state validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("card_id", state.CardID.String()))
		return err
	}

	var lastReviewed sql.NullTime
	if state.LastReviewedAt != nil {
		lastReviewed = sql.NullTime{Time: state.LastReviewedAt.UTC(), Valid: true}
	}
	var difficulty sql.NullString
	if state.Difficulty != domain.DifficultyUnset {
		difficulty = sql.NullString{String: string(state.Difficulty), Valid: true}
	}

	query := `
		INSERT INTO card_review_states (
			learner_id, card_id, review_count, last_reviewed_at, difficulty_rating,
			mastery_level, next_review_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (learner_id, card_id) DO UPDATE SET
			review_count = EXCLUDED.review_count,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			difficulty_rating = EXCLUDED.difficulty_rating,
			mastery_level = EXCLUDED.mastery_level,
			next_review_at = EXCLUDED.next_review_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		state.LearnerID,
		state.CardID,
		state.ReviewCount,
		lastReviewed,
		difficulty,
		state.MasteryLevel,
		state.NextReviewAt.UTC(),
		state.CreatedAt.UTC(),
		state.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to upsert review state",
			slog.String("learner_id", state.LearnerID.String()),
			slog.String("card_id", state.CardID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("review_state", "upsert", "failed to upsert review state", MapError(err))
	}

	log.Debug("review state upserted",
		slog.String("learner_id", state.LearnerID.String()),
		slog.String("card_id", state.CardID.String()),
		slog.Int("review_count", state.ReviewCount))
	return nil
}

// ListCandidates implements store.ReviewStateStore.ListCandidates.
func (s *PostgresReviewStateStore) ListCandidates(
	ctx context.Context,
	learnerID uuid.UUID,
	filters domain.SessionFilters,
) ([]domain.CardCandidate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT c.id, c.word, c.topic, c.level, ` + stateColumns + `
		FROM card_review_states s
		JOIN cards c ON c.id = s.card_id
		WHERE s.learner_id = $1
			AND ($2 = '' OR LOWER(c.topic) = LOWER($2))
			AND ($3 = '' OR c.level = $3)
		ORDER BY s.next_review_at, c.id
	`
	rows, err := s.db.QueryContext(ctx, query, learnerID, filters.Topic, string(filters.Level))
	if err != nil {
		log.Error("failed to list candidates",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("review_state", "list_candidates", "failed to list candidates", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	candidates := []domain.CardCandidate{}
	for rows.Next() {
		var card domain.CardRef
		var level string
		st, err := scanReviewState(rows, &card.ID, &card.Word, &card.Topic, &level)
		if err != nil {
			return nil, store.NewStoreError("review_state", "list_candidates", "failed to scan candidate", MapError(err))
		}
		card.Level = domain.CEFRLevel(level)
		candidates = append(candidates, domain.CardCandidate{Card: card, State: *st})
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_state", "list_candidates", "failed to iterate candidates", MapError(err))
	}

	log.Debug("candidates listed",
		slog.String("learner_id", learnerID.String()),
		slog.Int("count", len(candidates)))
	return candidates, nil
}

// WithTx implements store.ReviewStateStore.WithTx.
func (s *PostgresReviewStateStore) WithTx(tx *sql.Tx) store.ReviewStateStore {
	return &PostgresReviewStateStore{
		db:     tx,
		logger: s.logger,
	}
}
