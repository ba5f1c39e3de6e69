package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/chanombude/twitter-go-client/internal/common"
)

func (c *Client) SearchTweets(ctx context.Context, query string, page, size int) (common.Page[common.Tweet], error) {
	var out common.Page[common.Tweet]

	q := pageQuery(page, size)
	q.Set("q", query)

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/search/tweets",
		query:  q,
		out:    &out,
	})

	return out, err
}

func (c *Client) SearchUsers(ctx context.Context, query string, page, size int) (common.Page[common.User], error) {
	var out common.Page[common.User]

	q := pageQuery(page, size)
	q.Set("q", query)

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/search/users",
		query:  q,
		out:    &out,
	})

	return out, err
}

func (c *Client) SearchHashtags(ctx context.Context, query string, limit int) ([]common.Hashtag, error) {
	var out []common.Hashtag

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", fmt.Sprintf("%d", limit))

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/search/hashtags",
		query:  q,
		out:    &out,
	})

	return out, err
}

func (c *Client) TrendingHashtags(ctx context.Context, limit int) ([]common.Hashtag, error) {
	var out []common.Hashtag

	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/discovery/trending",
		query:  q,
		out:    &out,
	})

	return out, err
}

func (c *Client) SuggestedUsers(ctx context.Context, page, size int) (common.Page[common.User], error) {
	var out common.Page[common.User]

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/discovery/users",
		query:  pageQuery(page, size),
		out:    &out,
	})

	return out, err
}
