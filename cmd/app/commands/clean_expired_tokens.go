package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	authUseCase "github.com/allisson/permguard/internal/auth/usecase"
)

// RunCleanExpiredTokens deletes tokens that expired more than days ago.
// Expired tokens never authenticate, so this only reclaims storage.
func RunCleanExpiredTokens(
	ctx context.Context,
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
	io IOTuple,
	days int,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning expired tokens", slog.Int("days", days))

	before := time.Now().UTC().AddDate(0, 0, -days)
	count, err := tokenUseCase.PurgeExpired(ctx, before)
	if err != nil {
		return fmt.Errorf("failed to clean expired tokens: %w", err)
	}

	if format == "json" {
		err = writeJSON(io.Writer, map[string]any{
			"count": count,
			"days":  days,
		})
	} else {
		_, err = fmt.Fprintf(io.Writer, "Successfully deleted %d expired token(s) older than %d day(s)\n", count, days)
	}
	if err != nil {
		return err
	}

	logger.Info("cleanup completed", slog.Int64("count", count), slog.Int("days", days))
	return nil
}
