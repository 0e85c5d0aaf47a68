package scheduler

import (
	"log"
	"time"

	"ilika_backend/internals/features/campaign/retry/service"
)

// Interval between in-process sweep runs. Deployments that trigger the
// sweep over HTTP from an external scheduler can leave this disabled.
const sweepInterval = 6 * time.Hour

// Start runs the sweep on a fixed interval in a background goroutine.
// stop closes the loop on shutdown.
func Start(sweeper *service.Sweeper, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		log.Printf("[SCHEDULER] payment retry sweep every %s", sweepInterval)
		for {
			select {
			case <-ticker.C:
				if _, err := sweeper.Run(); err != nil {
					log.Printf("[SCHEDULER] sweep run failed: %v", err)
				}
			case <-stop:
				log.Println("[SCHEDULER] stopped")
				return
			}
		}
	}()
}
