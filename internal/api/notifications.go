package api

import (
	"context"
	"net/http"

	"github.com/chanombude/twitter-go-client/internal/common"
)

func (c *Client) Notifications(ctx context.Context, page, size int) (common.Page[common.Notification], error) {
	var out common.Page[common.Notification]

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/notifications",
		query:  pageQuery(page, size),
		out:    &out,
	})

	return out, err
}

func (c *Client) UnreadCount(ctx context.Context) (int32, error) {
	var out int32

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/notifications/unread-count",
		out:    &out,
	})

	return out, err
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   "/notifications/mark-read",
	})
}
