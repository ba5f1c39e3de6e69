package mutator

import (
	"context"

	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
)

// Retweet marks the tweet retweeted across every cached copy. Reconciliation
// matches Like: broad invalidation on failure, detail-only refetch on
// success.
func (c *Coordinator) Retweet(ctx context.Context, tweetID int64) error {
	return c.toggleRetweet(ctx, tweetID, true)
}

// Unretweet flips the flag back and, when the viewer's own retweet wrapper of
// the target is cached in a feed, removes exactly that wrapper. Wrappers
// authored by other users only get their embedded original updated.
func (c *Coordinator) Unretweet(ctx context.Context, tweetID int64) error {
	return c.toggleRetweet(ctx, tweetID, false)
}

func (c *Coordinator) toggleRetweet(ctx context.Context, tweetID int64, retweeted bool) error {
	viewerID := int64(0)
	if user, ok := c.viewer.CurrentUser(); ok {
		viewerID = user.ID
	}

	c.store.CancelInFlight(keys.Feeds, keys.Tweets, keys.Search)
	c.store.ApplyToTweet(tweetID, retweetUpdater(tweetID, retweeted, viewerID))

	var err error
	if retweeted {
		err = c.api.Retweet(ctx, tweetID)
	} else {
		err = c.api.Unretweet(ctx, tweetID)
	}

	if err != nil {
		c.store.Invalidate(keys.Feeds, keys.Tweets, keys.Search)
		return err
	}

	c.refreshTweetDetail(ctx, tweetID)

	return nil
}

func retweetUpdater(tweetID int64, retweeted bool, viewerID int64) func(common.Tweet) (common.Tweet, bool) {
	delta := int32(1)
	if !retweeted {
		delta = -1
	}

	return func(t common.Tweet) (common.Tweet, bool) {
		// Un-retweeting deletes the viewer's own wrapper of the target.
		if !retweeted && viewerID != 0 && t.OriginalTweet != nil && t.OriginalTweet.ID == tweetID && t.User.ID == viewerID {
			return t, false
		}

		if t.ID != tweetID {
			return t, true
		}

		t.RetweetedByMe = retweeted
		t.RetweetCount = floorCount(t.RetweetCount + delta)

		return t, true
	}
}
