package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sukilabs/suki/internal/config"
	"github.com/sukilabs/suki/internal/service"
	"github.com/sukilabs/suki/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/suki/suki.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// parseScope builds a transaction scope from command flags. An explicit ID
// list takes precedence over the date range.
func parseScope(from, to, ids string) (service.Scope, error) {
	var scope service.Scope

	if ids != "" {
		for _, id := range strings.Split(ids, ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				scope.IDs = append(scope.IDs, id)
			}
		}
		return scope, nil
	}

	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return scope, fmt.Errorf("invalid --from date %q (want 2006-01-02): %w", from, err)
		}
		scope.From = &t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return scope, fmt.Errorf("invalid --to date %q (want 2006-01-02): %w", to, err)
		}
		// Include the whole end day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		scope.To = &t
	}
	return scope, nil
}
