package controllers

import (
	"context"

	"github.com/angelmondragon/records-backend/pkg/logger"
)

func withLookup(ctx context.Context, logg *logger.Logger, key, value string) context.Context {
	if logg == nil {
		return ctx
	}
	return logg.WithLookup(ctx, key, value)
}
