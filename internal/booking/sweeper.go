package booking

import (
	"context"
	"log"
	"time"
)

// RunHoldSweeper periodically releases expired holds until ctx is canceled.
// Reclamation stays lazy on every request path; the sweeper only keeps rows
// tidy between requests so dashboards reading the table directly do not see
// stale holds linger.
func (e *Engine) RunHoldSweeper(ctx context.Context, interval time.Duration) {
	log.Printf("hold sweeper started (interval %s)", interval)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("hold sweeper shutting down")
			return
		case <-timer.C:
			if err := e.ReleaseExpiredHolds(ctx); err != nil {
				log.Printf("hold sweeper: %v", err)
			}
			timer.Reset(interval)
		}
	}
}
