package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chanombude/twitter-go-client/internal/common"
)

// TweetRequest is the JSON part of tweet creation.
type TweetRequest struct {
	Content  string `json:"content,omitempty"`
	ParentID *int64 `json:"parentId,omitempty"`
}

func (c *Client) GetTweet(ctx context.Context, id int64) (common.Tweet, error) {
	var out common.Tweet

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   fmt.Sprintf("/tweets/%d", id),
		out:    &out,
	})

	return out, err
}

func (c *Client) Replies(ctx context.Context, tweetID int64, page, size int) (common.Page[common.Tweet], error) {
	return c.tweetPage(ctx, fmt.Sprintf("/tweets/%d/replies", tweetID), page, size)
}

func (c *Client) CreateTweet(ctx context.Context, req TweetRequest, media *Upload) (common.Tweet, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return common.Tweet{}, err
	}

	body, contentType, err := multipartBody(data, "media", media)
	if err != nil {
		return common.Tweet{}, err
	}

	var out common.Tweet

	err = c.do(ctx, call{
		method:      http.MethodPost,
		path:        "/tweets",
		body:        body,
		contentType: contentType,
		out:         &out,
	})

	return out, err
}

func (c *Client) DeleteTweet(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/tweets/%d", id),
	})
}

func (c *Client) Like(ctx context.Context, tweetID int64) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   fmt.Sprintf("/tweets/%d/like", tweetID),
	})
}

func (c *Client) Unlike(ctx context.Context, tweetID int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/tweets/%d/like", tweetID),
	})
}

func (c *Client) Retweet(ctx context.Context, tweetID int64) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   fmt.Sprintf("/tweets/%d/retweet", tweetID),
	})
}

func (c *Client) Unretweet(ctx context.Context, tweetID int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/tweets/%d/retweet", tweetID),
	})
}
