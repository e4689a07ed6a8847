package workers

import (
	"context"

	"github.com/rs/zerolog/log"

	"webhooksandbox/internal/platform/models"
)

type RetryableStore interface {
	ListRetryable(maxAttempts int) ([]*models.Delivery, error)
}

type Redeliverer interface {
	DeliverSync(ctx context.Context, delivery *models.Delivery) error
}

// RetryFailedDeliveries resends every failed delivery that still has attempts
// left and returns how many succeeded. It stops early if ctx is cancelled.
func RetryFailedDeliveries(ctx context.Context, store RetryableStore, redeliverer Redeliverer, maxAttempts int) (int, error) {
	pending, err := store.ListRetryable(maxAttempts)
	if err != nil {
		return 0, err
	}

	succeeded := 0
	for _, d := range pending {
		if err := ctx.Err(); err != nil {
			return succeeded, err
		}
		if err := redeliverer.DeliverSync(ctx, d); err != nil {
			log.Warn().Err(err).Str("delivery_id", d.ID).Int("attempts", d.Attempts).Msg("retry failed")
			continue
		}
		succeeded++
	}

	log.Info().Int("retried", len(pending)).Int("succeeded", succeeded).Msg("worker: retried failed deliveries")
	return succeeded, nil
}
