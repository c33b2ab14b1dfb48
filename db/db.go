package db

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool connects using the given url, falling back to DATABASE_URL.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	return pgxpool.New(ctx, url)
}
