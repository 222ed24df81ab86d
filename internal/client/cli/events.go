package cli

import (
	"context"
	"log/slog"

	"github.com/iudanet/vitrina/internal/notify"
)

// LogEvents logs record changes until events is closed or ctx is done.
// It stands in for a UI refresh.
func LogEvents(ctx context.Context, logger *slog.Logger, events <-chan notify.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case notify.RecordCreated:
				logger.Info("record created", "kind", ev.Kind, "id", ev.ID, "origin", ev.Origin)
			case notify.SyncCompleted:
				logger.Debug("sync completed")
			default:
				logger.Debug("record changed", "event", ev.Type, "kind", ev.Kind, "id", ev.ID)
			}
		}
	}
}
