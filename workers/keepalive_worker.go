package workers

import (
	"context"
	"log"
	"net/http"
	"time"

	"earn-bot-system/utils"
)

// PollKeepAlive pings the public app URL on an interval so free-tier hosts
// don't idle the process out.
func PollKeepAlive(ctx context.Context, appURL string, interval time.Duration) {
	if appURL == "" {
		return
	}
	log.Printf("Starting keep-alive pings to %s...", appURL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Keep-alive pings stopped.")
			return
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, "GET", appURL, nil)
			if err != nil {
				log.Printf("❌ Keep-alive request error: %v", err)
				continue
			}
			resp, err := utils.HTTPClient.Do(req)
			if err != nil {
				log.Printf("❌ Keep-alive ping failed: %v", err)
				continue
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				log.Printf("⚠️  Keep-alive ping returned status %d", resp.StatusCode)
			}
		}
	}
}
