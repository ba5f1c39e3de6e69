package mutator

import (
	"context"

	"github.com/chanombude/twitter-go-client/internal/common"
)

// MarkAllRead flips every cached notification to read and zeroes the unread
// counter once the server confirms. The optimistic state is trusted; no
// invalidation follows.
func (c *Coordinator) MarkAllRead(ctx context.Context) error {
	if err := c.api.MarkAllRead(ctx); err != nil {
		return err
	}

	c.store.SetUnreadCount(0)
	c.store.ApplyToNotifications(func(n common.Notification) common.Notification {
		n.IsRead = true
		return n
	})

	return nil
}
