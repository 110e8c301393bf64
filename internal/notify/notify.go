package notify

import (
	"context"
	"sync"
	"time"

	"eventreg/internal/models"

	"github.com/rs/zerolog/log"
)

// Sender delivers one registration announcement.
type Sender interface {
	Send(ctx context.Context, r models.Registration) error
}

// Dispatcher fans each accepted registration out to every configured sender
// in the background. A nil Dispatcher is a no-op.
type Dispatcher struct {
	senders []Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher returns nil when no senders are given.
func NewDispatcher(timeout time.Duration, senders ...Sender) *Dispatcher {
	if len(senders) == 0 {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{senders: senders, timeout: timeout}
}

// NotifyAsync only logs failures. The request that triggered it never waits.
func (d *Dispatcher) NotifyAsync(r models.Registration) {
	if d == nil {
		return
	}
	for _, s := range d.senders {
		d.wg.Add(1)
		go func(s Sender) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := s.Send(ctx, r); err != nil {
				log.Warn().Err(err).Str("component", "notify").Int("registration_id", r.ID).Msg("registration notification failed")
			}
		}(s)
	}
}

// Wait blocks until in-flight notifications finish.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
