package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/records-backend/pkg/config"
	"github.com/angelmondragon/records-backend/pkg/db"
	"github.com/angelmondragon/records-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations at startup when the app runs in
// dev mode with RECORDS_DB_AUTO_MIGRATE enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.DB.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	src, err := Embedded(client.Driver())
	if err != nil {
		return err
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": src.Dir, "driver": client.Driver()}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Up(ctx, sqlDB, client.Driver(), src); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}
