package mutator

import (
	"context"

	"github.com/chanombude/twitter-go-client/internal/api"
	"github.com/chanombude/twitter-go-client/internal/cache"
	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
)

// syntheticIDFloor separates client-generated ids (current Unix millis) from
// server-assigned ones. Any id above it is an optimistic placeholder.
const syntheticIDFloor = 1_700_000_000_000

// CreateTweet posts a tweet or reply. A synthetic record appears at the head
// of the global and following feeds (and the parent's reply list) before the
// call resolves; on success it is swapped for the server record, on failure
// the affected lists are restored from their pre-mutation snapshots.
func (c *Coordinator) CreateTweet(ctx context.Context, content string, media *api.Upload, parentID *int64) (common.Tweet, error) {
	user, ok := c.viewer.CurrentUser()
	if !ok {
		return common.Tweet{}, common.ErrUnauthorized
	}

	affected := []keys.Key{c.keys.GlobalFeed(), c.keys.FollowingFeed()}
	if parentID != nil {
		affected = append(affected, c.keys.Replies(*parentID))
	}

	c.store.CancelInFlight(keys.Feeds, keys.Tweets)

	snaps := make([]cache.Snapshot, 0, len(affected))
	for _, key := range affected {
		snaps = append(snaps, c.store.Snapshot(key))
	}

	synthetic := c.syntheticTweet(content, media, parentID, user)
	for _, key := range affected {
		c.store.PrependTweet(key, synthetic)
	}

	real, err := c.api.CreateTweet(ctx, api.TweetRequest{Content: content, ParentID: parentID}, media)
	if err != nil {
		for _, snap := range snaps {
			c.store.Restore(snap)
		}

		return common.Tweet{}, err
	}

	match := syntheticMatcher(content, user.ID)
	for _, key := range affected {
		c.store.SwapTweet(key, match, real)
	}

	if parentID != nil {
		// The parent's reply list just grew; keep its counter in step.
		c.store.ApplyToTweet(*parentID, func(t common.Tweet) (common.Tweet, bool) {
			if t.ID == *parentID {
				t.ReplyCount++
			}

			return t, true
		})
	}

	return real, nil
}

// DeleteTweet removes the tweet from the global and following feeds
// immediately. Failure restores the exact snapshots, original positions
// included; success broadly invalidates feeds for eventual consistency, since
// other regions (user feeds, search) may still hold copies.
func (c *Coordinator) DeleteTweet(ctx context.Context, tweetID int64) error {
	feedKeys := []keys.Key{c.keys.GlobalFeed(), c.keys.FollowingFeed()}

	c.store.CancelInFlight(keys.Feeds, keys.Tweets)

	snaps := make([]cache.Snapshot, 0, len(feedKeys))
	for _, key := range feedKeys {
		snaps = append(snaps, c.store.Snapshot(key))
	}

	for _, key := range feedKeys {
		c.store.RemoveTweet(key, tweetID)
	}

	if err := c.api.DeleteTweet(ctx, tweetID); err != nil {
		for _, snap := range snaps {
			c.store.Restore(snap)
		}

		return err
	}

	c.store.Invalidate(keys.Feeds)
	c.store.InvalidateKey(c.keys.Tweet(tweetID))

	return nil
}

func (c *Coordinator) syntheticTweet(content string, media *api.Upload, parentID *int64, user common.User) common.Tweet {
	now := c.now()

	t := common.Tweet{
		ID:        now.UnixMilli(),
		User:      user,
		ParentID:  parentID,
		CreatedAt: now,
	}

	if content != "" {
		t.Content = &content
	}

	if media != nil {
		mediaType := "IMAGE"
		t.MediaType = &mediaType
	}

	return t
}

// syntheticMatcher finds the optimistic placeholder: same content, same
// author, id in the synthetic range. Two identical in-flight posts by the
// same author can cross-match; accepted, the debounce layer makes it
// human-impossible in practice.
func syntheticMatcher(content string, authorID int64) func(common.Tweet) bool {
	return func(t common.Tweet) bool {
		if t.ID <= syntheticIDFloor || t.User.ID != authorID {
			return false
		}

		if content == "" {
			return t.Content == nil || *t.Content == ""
		}

		return t.Content != nil && *t.Content == content
	}
}
