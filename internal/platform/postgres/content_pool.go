package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/store"
)

// PostgresContentPool implements the store.ContentPool interface over the cards table.
type PostgresContentPool struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresContentPool creates a new PostgreSQL content pool.
// If logger is nil, a default logger will be used.
func NewPostgresContentPool(db store.DBTX, logger *slog.Logger) *PostgresContentPool {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresContentPool{
		db:     db,
		logger: logger.With(slog.String("component", "content_pool")),
	}
}

// Ensure PostgresContentPool implements store.ContentPool interface
var _ store.ContentPool = (*PostgresContentPool)(nil)

func scanCard(row rowScanner) (*domain.CardRef, error) {
	var card domain.CardRef
	var level string
	if err := row.Scan(&card.ID, &card.Word, &card.Topic, &level); err != nil {
		return nil, err
	}
	card.Level = domain.CEFRLevel(level)
	return &card, nil
}

// GetCard implements store.ContentPool.GetCard.
// Returns store.ErrCardNotFound if the card does not exist.
func (p *PostgresContentPool) GetCard(ctx context.Context, cardID uuid.UUID) (*domain.CardRef, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	card, err := scanCard(p.db.QueryRowContext(ctx,
		`SELECT id, word, topic, level FROM cards WHERE id = $1`, cardID))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card",
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", "get", "failed to get card", MapError(err))
	}
	return card, nil
}

// PoolCards implements store.ContentPool.PoolCards.
// Cards are returned oldest first so every learner meets the pool in the same order.
func (p *PostgresContentPool) PoolCards(
	ctx context.Context,
	learnerID uuid.UUID,
	filters domain.SessionFilters,
	limit int,
) ([]domain.CardRef, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	if limit <= 0 {
		return []domain.CardRef{}, nil
	}

	query := `
		SELECT c.id, c.word, c.topic, c.level
		FROM cards c
		WHERE NOT EXISTS (
				SELECT 1 FROM card_review_states s
				WHERE s.card_id = c.id AND s.learner_id = $1
			)
			AND ($2 = '' OR LOWER(c.topic) = LOWER($2))
			AND ($3 = '' OR c.level = $3)
		ORDER BY c.created_at, c.id
		LIMIT $4
	`
	rows, err := p.db.QueryContext(ctx, query, learnerID, filters.Topic, string(filters.Level), limit)
	if err != nil {
		log.Error("failed to query content pool",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", "pool", "failed to query content pool", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	cards := make([]domain.CardRef, 0, limit)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewStoreError("card", "pool", "failed to scan card", MapError(err))
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "pool", "failed to iterate cards", MapError(err))
	}
	return cards, nil
}
