package stream

import (
	"context"
	"time"

	"github.com/chanombude/twitter-go-client/internal/cache"
	"github.com/chanombude/twitter-go-client/internal/log"
)

// DefaultPollInterval matches the unread-count fallback cadence.
const DefaultPollInterval = 5 * time.Minute

type unreadAPI interface {
	UnreadCount(ctx context.Context) (int32, error)
}

// Poller periodically reconciles the unread counter from the server. It is
// the correction path for events the at-most-once stream missed.
type Poller struct {
	api      unreadAPI
	tokens   tokenSource
	store    *cache.Store
	interval time.Duration

	log log.Logger
}

func NewPoller(api unreadAPI, tokens tokenSource, store *cache.Store, interval time.Duration, logger log.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Poller{
		api:      api,
		tokens:   tokens,
		store:    store,
		interval: interval,
		log:      logger,
	}
}

// Run blocks until the context ends.
func (p *Poller) Run(ctx context.Context) {
	tick := time.NewTicker(p.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if p.tokens.Token() == "" {
		return
	}

	count, err := p.api.UnreadCount(ctx)
	if err != nil {
		p.log.WithError(err).Debug("unread count poll")
		return
	}

	p.store.SetUnreadCount(count)
}
