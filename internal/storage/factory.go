package storage

import (
	"context"
	"fmt"

	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/config"
)

// NewStore opens the backend named by cfg.DBType.
func NewStore(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "", "file":
		return NewFileStorage(cfg.DataDir, logger)
	case "postgres":
		return NewPostgresStorage(ctx, cfg.DBDSN, logger)
	case "sqlite":
		return NewSQLiteStorage(ctx, cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q: %w", cfg.DBType, internal.ErrInvalidInput)
	}
}
