package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chanombude/twitter-go-client/internal/common"
)

// ProfileRequest is the JSON part of a profile update.
type ProfileRequest struct {
	DisplayName string  `json:"displayName"`
	Bio         *string `json:"bio,omitempty"`
}

func (c *Client) GetUser(ctx context.Context, id int64) (common.User, error) {
	var out common.User

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   fmt.Sprintf("/users/%d", id),
		out:    &out,
	})

	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, req ProfileRequest, avatar *Upload) (common.User, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return common.User{}, err
	}

	body, contentType, err := multipartBody(data, "avatar", avatar)
	if err != nil {
		return common.User{}, err
	}

	var out common.User

	err = c.do(ctx, call{
		method:      http.MethodPut,
		path:        "/users/profile",
		body:        body,
		contentType: contentType,
		out:         &out,
	})

	return out, err
}

func (c *Client) Follow(ctx context.Context, userID int64) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   fmt.Sprintf("/users/%d/follow", userID),
	})
}

func (c *Client) Unfollow(ctx context.Context, userID int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/users/%d/follow", userID),
	})
}

func (c *Client) Followers(ctx context.Context, userID int64, page, size int) (common.Page[common.User], error) {
	return c.userPage(ctx, fmt.Sprintf("/users/%d/followers", userID), page, size)
}

func (c *Client) Following(ctx context.Context, userID int64, page, size int) (common.Page[common.User], error) {
	return c.userPage(ctx, fmt.Sprintf("/users/%d/following", userID), page, size)
}

func (c *Client) userPage(ctx context.Context, path string, page, size int) (common.Page[common.User], error) {
	var out common.Page[common.User]

	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   path,
		query:  pageQuery(page, size),
		out:    &out,
	})

	return out, err
}
