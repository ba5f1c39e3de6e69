package mutator

import (
	"context"

	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
)

// Like marks the tweet liked everywhere a copy of it is cached, then commits
// to the server. On failure every region that could hold the tweet is
// invalidated to restore truth; on success only the detail entry is
// refetched.
func (c *Coordinator) Like(ctx context.Context, tweetID int64) error {
	return c.toggleLike(ctx, tweetID, true)
}

// Unlike is the inverse of Like with the same reconciliation policy.
func (c *Coordinator) Unlike(ctx context.Context, tweetID int64) error {
	return c.toggleLike(ctx, tweetID, false)
}

func (c *Coordinator) toggleLike(ctx context.Context, tweetID int64, liked bool) error {
	c.store.CancelInFlight(keys.Feeds, keys.Tweets, keys.Search)
	c.store.ApplyToTweet(tweetID, likeUpdater(tweetID, liked))

	var err error
	if liked {
		err = c.api.Like(ctx, tweetID)
	} else {
		err = c.api.Unlike(ctx, tweetID)
	}

	if err != nil {
		c.store.Invalidate(keys.Feeds, keys.Tweets, keys.Search)
		return err
	}

	c.refreshTweetDetail(ctx, tweetID)

	return nil
}

func likeUpdater(tweetID int64, liked bool) func(common.Tweet) (common.Tweet, bool) {
	delta := int32(1)
	if !liked {
		delta = -1
	}

	return func(t common.Tweet) (common.Tweet, bool) {
		if t.ID != tweetID {
			return t, true
		}

		t.LikedByMe = liked
		t.LikeCount = floorCount(t.LikeCount + delta)

		return t, true
	}
}
