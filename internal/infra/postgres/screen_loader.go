package postgres

import (
	"context"
	"errors"
	"fmt"

	"funnel-player-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ScreenLoader loads screen JSONB from Postgres. Documents pass the full
// ingestion validation before they reach callers.
type ScreenLoader struct {
	pool *pgxpool.Pool
}

func NewScreenLoader(pool *pgxpool.Pool) *ScreenLoader {
	return &ScreenLoader{pool: pool}
}

func (l *ScreenLoader) LoadScreen(ctx context.Context, screenID string) (domain.ScreenContent, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM screens WHERE id=$1`, screenID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScreenContent{}, domain.ErrScreenNotFound
	}
	if err != nil {
		return domain.ScreenContent{}, fmt.Errorf("load screen: %w", err)
	}
	screen, err := domain.ParseScreen(raw)
	if err != nil {
		return domain.ScreenContent{}, fmt.Errorf("screen %s: %w", screenID, err)
	}
	return screen, nil
}
