package scheduler

import (
	"log/slog"
	"time"

	"showdownbot/src-server/bot"
	"showdownbot/src-server/handler"
	"showdownbot/src-server/memo"
	"showdownbot/src-server/utils"

	"github.com/puzpuzpuz/xsync/v3"
)

// SweepProfileCards periodically drops profile cards whose interaction token
// has expired, until the app shuts down.
func SweepProfileCards(as *utils.AppState, interval time.Duration) {
	cards := handler.ProfileCards(as)
	closeChan := as.CreateGracefulShutdownChan()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-closeChan:
			return
		case <-ticker.C:
			if n := sweepExpired(cards); n > 0 {
				slog.Debug("swept profile cards", "count", n)
			}
		}
	}
}

func sweepExpired(cards *xsync.MapOf[string, *memo.Slot[*bot.Reply]]) int {
	swept := 0
	cards.Range(func(userID string, _ *memo.Slot[*bot.Reply]) bool {
		cards.Compute(userID, func(slot *memo.Slot[*bot.Reply], loaded bool) (*memo.Slot[*bot.Reply], bool) {
			if !loaded {
				return slot, true
			}
			if _, live := slot.Get(); live {
				return slot, false
			}
			swept++
			return slot, true
		})
		return true
	})
	return swept
}
