package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clobworks/matchbook/internal/book"
)

// TradeStore writes fill records to Postgres. One submission's fills go in
// a single transaction so readers never observe half a match.
type TradeStore struct {
	pool *pgxpool.Pool
}

func NewTradeStore(pool *pgxpool.Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

const insertTradeSQL = `
INSERT INTO trades (id, market, taker_order_id, maker_order_id, status, price, quantity, executed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (s *TradeStore) InsertFills(ctx context.Context, market string, taker uuid.UUID, fills []book.Fill) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for _, f := range fills {
		_, err := tx.Exec(ctx, insertTradeSQL,
			uuid.New(),
			market,
			taker,
			f.OrderID,
			f.Status.String(),
			f.Price.String(),
			f.Quantity.String(),
			now,
		)
		if err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Trade is a persisted fill row.
type Trade struct {
	ID           uuid.UUID `json:"id"`
	Market       string    `json:"market"`
	TakerOrderID uuid.UUID `json:"taker_order_id"`
	MakerOrderID uuid.UUID `json:"maker_order_id"`
	Status       string    `json:"status"`
	Price        string    `json:"price"`
	Quantity     string    `json:"quantity"`
	ExecutedAt   time.Time `json:"executed_at"`
}

const listTradesSQL = `
SELECT id, market, taker_order_id, maker_order_id, status, price::text, quantity::text, executed_at
FROM trades
WHERE taker_order_id = $1 OR maker_order_id = $1
ORDER BY executed_at`

// ListTradesByOrder returns every trade an order took part in, taker or
// maker side.
func (s *TradeStore) ListTradesByOrder(ctx context.Context, orderID uuid.UUID) ([]Trade, error) {
	rows, err := s.pool.Query(ctx, listTradesSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		var tr Trade
		if err := rows.Scan(
			&tr.ID, &tr.Market, &tr.TakerOrderID, &tr.MakerOrderID,
			&tr.Status, &tr.Price, &tr.Quantity, &tr.ExecutedAt,
		); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}
