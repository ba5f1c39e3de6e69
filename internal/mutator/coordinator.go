package mutator

import (
	"context"
	"time"

	"github.com/chanombude/twitter-go-client/internal/api"
	"github.com/chanombude/twitter-go-client/internal/cache"
	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
	"github.com/chanombude/twitter-go-client/internal/log"
)

type client interface {
	Like(ctx context.Context, tweetID int64) error
	Unlike(ctx context.Context, tweetID int64) error
	Retweet(ctx context.Context, tweetID int64) error
	Unretweet(ctx context.Context, tweetID int64) error
	Follow(ctx context.Context, userID int64) error
	Unfollow(ctx context.Context, userID int64) error
	GetTweet(ctx context.Context, id int64) (common.Tweet, error)
	CreateTweet(ctx context.Context, req api.TweetRequest, media *api.Upload) (common.Tweet, error)
	DeleteTweet(ctx context.Context, id int64) error
	UpdateProfile(ctx context.Context, req api.ProfileRequest, avatar *api.Upload) (common.User, error)
	MarkAllRead(ctx context.Context) error
}

type viewer interface {
	CurrentUser() (common.User, bool)
	SetUser(user common.User)
}

// Coordinator pairs each user action with its optimistic cache edit and
// reconciliation policy. Within one action the ordering is fixed: cancel
// in-flight fetches for affected regions, apply the optimistic edit, call the
// network, reconcile on settlement.
type Coordinator struct {
	api    client
	store  *cache.Store
	viewer viewer
	keys   keys.Builder
	now    func() time.Time

	log log.Logger
}

func NewCoordinator(apiClient client, store *cache.Store, v viewer, logger log.Logger) *Coordinator {
	return &Coordinator{
		api:    apiClient,
		store:  store,
		viewer: v,
		keys:   keys.NewBuilder(),
		now:    time.Now,
		log:    logger,
	}
}

// refreshTweetDetail refetches only the standalone detail entry, leaving
// feeds and search results alone so the viewer's scroll position survives.
func (c *Coordinator) refreshTweetDetail(ctx context.Context, tweetID int64) {
	tweet, err := c.api.GetTweet(ctx, tweetID)
	if err != nil {
		c.log.WithError(err).WithField("tweet", tweetID).Debug("detail refetch after mutation")
		return
	}

	c.store.SetTweet(tweet)
}

func floorCount(n int32) int32 {
	if n < 0 {
		return 0
	}

	return n
}
