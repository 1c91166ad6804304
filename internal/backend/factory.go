package backend

import (
	"fmt"
	"log/slog"

	"wey/internal/storage"
	"wey/internal/store/memory"
)

// Open creates the stores for the configured backend.
func Open(cfg Config, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Type.Valid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SQLite:
		repo, err := storage.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Stores{
			Users:        repo,
			Transactions: repo,
			Messages:     repo,
			Cleanup:      repo.Close,
		}, nil
	default:
		logger.Info("Initialized memory backend")
		return &Stores{
			Users:        memory.NewUserDirectory(),
			Transactions: memory.NewTransactionStore(),
			Messages:     memory.NewMessageStore(),
		}, nil
	}
}
