package events

import (
	"context"
	"sync"
)

// Channel names carried over the bus.
const (
	GoalResultChannel         = "gameplay:goal_result"
	HourSnapshotChannel       = "leaderboard:hour_snapshot"
	RoundSnapshotChannel      = "leaderboard:round_snapshot"
	SeasonSnapshotChannel     = "leaderboard:season_snapshot"
	OnlinePlayersCountChannel = "gameplay:online_count"
)

// Handler receives the raw payload published on a channel.
type Handler func(payload []byte)

// Bus fans events out to live connections. Gameplay code publishes without
// knowing whether the consumer lives in this process or another worker; the
// Redis implementation crosses process boundaries, the local one serves tests
// and single-process runs.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string, handler Handler) error
}

// LocalBus dispatches synchronously within the process.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[string][]Handler)}
}

func (b *LocalBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[channel]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
	return nil
}

func (b *LocalBus) Subscribe(_ context.Context, channel string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[channel] = append(b.handlers[channel], handler)
	return nil
}
