package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chanombude/twitter-go-client/internal/common"
)

func (c *Client) GlobalFeed(ctx context.Context, page, size int) (common.Page[common.Tweet], error) {
	return c.tweetPage(ctx, "/feeds/global", page, size)
}

func (c *Client) FollowingFeed(ctx context.Context, page, size int) (common.Page[common.Tweet], error) {
	return c.tweetPage(ctx, "/feeds/following", page, size)
}

func (c *Client) UserFeed(ctx context.Context, userID int64, page, size int) (common.Page[common.Tweet], error) {
	return c.tweetPage(ctx, fmt.Sprintf("/feeds/user/%d", userID), page, size)
}

func (c *Client) tweetPage(ctx context.Context, path string, page, size int) (common.Page[common.Tweet], error) {
	var out common.Page[common.Tweet]

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   path,
		query:  pageQuery(page, size),
		out:    &out,
	})

	return out, err
}
