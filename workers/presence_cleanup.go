package workers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"club-gameplay-engine/events"
	"club-gameplay-engine/services"
)

// PresenceCleanupWorker evicts players whose heartbeats stopped and
// broadcasts the resulting online count.
type PresenceCleanupWorker struct {
	Presence *services.PresenceService
	Bus      events.Bus
}

func NewPresenceCleanupWorker(presence *services.PresenceService, bus events.Bus) *PresenceCleanupWorker {
	return &PresenceCleanupWorker{Presence: presence, Bus: bus}
}

func (w *PresenceCleanupWorker) RunOnce(ctx context.Context) error {
	now := time.Now()

	removed, err := w.Presence.SweepOffline(ctx, now)
	if err != nil {
		return err
	}
	if removed > 0 {
		log.Printf("[PRESENCE] 🧹 Cleared %d offline player(s)", removed)
	}

	count, err := w.Presence.OnlineCount(ctx, now)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]int64{"online": count})
	if err != nil {
		return err
	}
	return w.Bus.Publish(ctx, events.OnlinePlayersCountChannel, payload)
}
