package mutator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanombude/twitter-go-client/internal/api"
	"github.com/chanombude/twitter-go-client/internal/cache"
	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
	"github.com/chanombude/twitter-go-client/internal/log"
)

var errServer = errors.New("server said no")

type fakeClient struct {
	likeErr     error
	retweetErr  error
	followErr   error
	createErr   error
	deleteErr   error
	markReadErr error

	created     *common.Tweet
	detail      *common.Tweet
	detailCalls int

	calls []string
}

func (f *fakeClient) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeClient) Like(context.Context, int64) error   { f.record("like"); return f.likeErr }
func (f *fakeClient) Unlike(context.Context, int64) error { f.record("unlike"); return f.likeErr }
func (f *fakeClient) Retweet(context.Context, int64) error {
	f.record("retweet")
	return f.retweetErr
}
func (f *fakeClient) Unretweet(context.Context, int64) error {
	f.record("unretweet")
	return f.retweetErr
}
func (f *fakeClient) Follow(context.Context, int64) error { f.record("follow"); return f.followErr }
func (f *fakeClient) Unfollow(context.Context, int64) error {
	f.record("unfollow")
	return f.followErr
}

func (f *fakeClient) GetTweet(_ context.Context, id int64) (common.Tweet, error) {
	f.record("getTweet")
	f.detailCalls++

	if f.detail != nil {
		return f.detail.Clone(), nil
	}

	return common.Tweet{ID: id}, nil
}

func (f *fakeClient) CreateTweet(_ context.Context, req api.TweetRequest, _ *api.Upload) (common.Tweet, error) {
	f.record("createTweet")

	if f.createErr != nil {
		return common.Tweet{}, f.createErr
	}

	if f.created != nil {
		return f.created.Clone(), nil
	}

	content := req.Content

	return common.Tweet{ID: 42, Content: &content}, nil
}

func (f *fakeClient) DeleteTweet(context.Context, int64) error {
	f.record("deleteTweet")
	return f.deleteErr
}

func (f *fakeClient) UpdateProfile(_ context.Context, req api.ProfileRequest, _ *api.Upload) (common.User, error) {
	f.record("updateProfile")
	return common.User{ID: 1, Username: "alice", DisplayName: req.DisplayName}, nil
}

func (f *fakeClient) MarkAllRead(context.Context) error {
	f.record("markAllRead")
	return f.markReadErr
}

type fakeViewer struct {
	user *common.User
	set  []common.User
}

func (f *fakeViewer) CurrentUser() (common.User, bool) {
	if f.user == nil {
		return common.User{}, false
	}

	return f.user.Clone(), true
}

func (f *fakeViewer) SetUser(u common.User) { f.set = append(f.set, u) }

func newTestCoordinator(f *fakeClient, v *fakeViewer) (*Coordinator, *cache.Store) {
	logger := log.NewLogger(logrus.New())
	store := cache.NewStore(logger, nil)

	if v == nil {
		v = &fakeViewer{user: &common.User{ID: 1, Username: "alice"}}
	}

	return NewCoordinator(f, store, v, logger), store
}

func seedFeed(store *cache.Store, key keys.Key, tweets ...common.Tweet) {
	gen := store.Generation(key)
	store.StoreFetched(key, gen, []common.Page[common.Tweet]{{Content: tweets, Size: len(tweets), Last: true}})
}

func tweet(id int64, content string) common.Tweet {
	return common.Tweet{ID: id, Content: &content, User: common.User{ID: id * 100}}
}

func TestLike(t *testing.T) {
	kb := keys.NewBuilder()
	ctx := context.Background()

	t.Run("success edits optimistically and refetches only the detail", func(t *testing.T) {
		f := &fakeClient{detail: &common.Tweet{ID: 1, LikedByMe: true, LikeCount: 10}}
		c, store := newTestCoordinator(f, nil)

		seedFeed(store, kb.GlobalFeed(), tweet(1, "a"), tweet(2, "b"))

		require.NoError(t, c.Like(ctx, 1))

		feed, ok := store.TweetPages(kb.GlobalFeed())
		require.True(t, ok, "feed survives a successful like")
		assert.True(t, feed[0].Content[0].LikedByMe)
		assert.Equal(t, int32(1), feed[0].Content[0].LikeCount)

		detail, ok := store.Tweet(1)
		require.True(t, ok)
		assert.Equal(t, int32(10), detail.LikeCount, "detail reconciled from server")

		assert.Equal(t, []string{"like", "getTweet"}, f.calls)
	})

	t.Run("failure invalidates every affected region", func(t *testing.T) {
		f := &fakeClient{likeErr: errServer}
		c, store := newTestCoordinator(f, nil)

		seedFeed(store, kb.GlobalFeed(), tweet(1, "a"))
		store.SetTweet(tweet(1, "a"))

		err := c.Like(ctx, 1)
		require.ErrorIs(t, err, errServer)

		_, ok := store.TweetPages(kb.GlobalFeed())
		assert.False(t, ok, "feed dropped for refetch")

		_, ok = store.Tweet(1)
		assert.False(t, ok, "detail dropped for refetch")

		assert.Zero(t, f.detailCalls)
	})

	t.Run("unlike floors the count at zero", func(t *testing.T) {
		f := &fakeClient{}
		c, store := newTestCoordinator(f, nil)

		seedFeed(store, kb.GlobalFeed(), tweet(1, "a"))

		require.NoError(t, c.Unlike(ctx, 1))

		feed, _ := store.TweetPages(kb.GlobalFeed())
		assert.Equal(t, int32(0), feed[0].Content[0].LikeCount)
	})
}

func TestRetweet(t *testing.T) {
	kb := keys.NewBuilder()
	ctx := context.Background()

	t.Run("unretweet removes the viewer's own wrapper", func(t *testing.T) {
		f := &fakeClient{}
		viewer := &fakeViewer{user: &common.User{ID: 9}}
		c, store := newTestCoordinator(f, viewer)

		original := tweet(1, "a")
		original.RetweetedByMe = true
		original.RetweetCount = 1

		mine := common.Tweet{ID: 50, User: common.User{ID: 9}, OriginalTweet: &original}
		theirs := common.Tweet{ID: 51, User: common.User{ID: 8}, OriginalTweet: &original}

		seedFeed(store, kb.GlobalFeed(), mine, theirs, original)

		require.NoError(t, c.Unretweet(ctx, 1))

		feed, _ := store.TweetPages(kb.GlobalFeed())
		require.Len(t, feed[0].Content, 2, "own wrapper removed")

		assert.Equal(t, int64(51), feed[0].Content[0].ID)
		assert.False(t, feed[0].Content[0].OriginalTweet.RetweetedByMe)

		assert.Equal(t, int64(1), feed[0].Content[1].ID)
		assert.False(t, feed[0].Content[1].RetweetedByMe)
		assert.Equal(t, int32(0), feed[0].Content[1].RetweetCount)
	})

	t.Run("failure invalidates affected regions", func(t *testing.T) {
		f := &fakeClient{retweetErr: errServer}
		c, store := newTestCoordinator(f, nil)

		seedFeed(store, kb.GlobalFeed(), tweet(1, "a"))

		require.ErrorIs(t, c.Retweet(ctx, 1), errServer)

		_, ok := store.TweetPages(kb.GlobalFeed())
		assert.False(t, ok)
	})
}

func TestFollow(t *testing.T) {
	kb := keys.NewBuilder()
	ctx := context.Background()

	seedUsers := func(store *cache.Store) {
		gen := store.Generation(kb.User(7))
		store.StoreFetched(kb.User(7), gen, common.User{ID: 7, Username: "bob"})

		key := kb.DiscoveryUsers()
		gen = store.Generation(key)
		store.StoreFetched(key, gen, common.Page[common.User]{Content: []common.User{{ID: 7}}})
	}

	t.Run("success keeps the optimistic state with no refetch", func(t *testing.T) {
		f := &fakeClient{}
		c, store := newTestCoordinator(f, nil)

		seedUsers(store)

		require.NoError(t, c.Follow(ctx, 7))

		profile, ok := store.User(7)
		require.True(t, ok)
		assert.True(t, profile.FollowedByMe)
		assert.Equal(t, int32(1), profile.FollowersCount)

		discovery, ok := store.UserPage(kb.DiscoveryUsers())
		require.True(t, ok, "listings never dropped on success")
		assert.True(t, discovery.Content[0].FollowedByMe)

		assert.Equal(t, []string{"follow"}, f.calls)
	})

	t.Run("failure rolls back with the inverse edit", func(t *testing.T) {
		f := &fakeClient{followErr: errServer}
		c, store := newTestCoordinator(f, nil)

		seedUsers(store)

		require.ErrorIs(t, c.Follow(ctx, 7), errServer)

		profile, ok := store.User(7)
		require.True(t, ok, "no invalidation on follow failure")
		assert.False(t, profile.FollowedByMe)
		assert.Equal(t, int32(0), profile.FollowersCount)
	})
}

func TestCreateTweet(t *testing.T) {
	kb := keys.NewBuilder()
	ctx := context.Background()

	t.Run("synthetic record is swapped for the server record", func(t *testing.T) {
		content := "hello"
		f := &fakeClient{created: &common.Tweet{ID: 42, Content: &content, User: common.User{ID: 1}}}
		c, store := newTestCoordinator(f, nil)

		seedFeed(store, kb.GlobalFeed(), tweet(5, "old"))
		seedFeed(store, kb.FollowingFeed(), tweet(5, "old"))

		created, err := c.CreateTweet(ctx, "hello", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(42), created.ID)

		for _, key := range []keys.Key{kb.GlobalFeed(), kb.FollowingFeed()} {
			feed, ok := store.TweetPages(key)
			require.True(t, ok)
			require.Len(t, feed[0].Content, 2)
			assert.Equal(t, int64(42), feed[0].Content[0].ID, "placeholder replaced at the head of %s", key)
		}
	})

	t.Run("synthetic id is in the placeholder range", func(t *testing.T) {
		f := &fakeClient{createErr: errServer}
		c, store := newTestCoordinator(f, nil)
		c.now = func() time.Time { return time.UnixMilli(1_750_000_000_000) }

		seedFeed(store, kb.GlobalFeed(), tweet(5, "old"))
		snapBefore, _ := store.TweetPages(kb.GlobalFeed())

		_, err := c.CreateTweet(ctx, "hello", nil, nil)
		require.ErrorIs(t, err, errServer)

		feed, ok := store.TweetPages(kb.GlobalFeed())
		require.True(t, ok, "failure restores, never invalidates")
		assert.Equal(t, snapBefore, feed, "placeholder rolled back")
	})

	t.Run("reply also lands in the parent's reply list and bumps its counter", func(t *testing.T) {
		parentID := int64(5)
		content := "a reply"
		f := &fakeClient{created: &common.Tweet{ID: 43, Content: &content, User: common.User{ID: 1}, ParentID: &parentID}}
		c, store := newTestCoordinator(f, nil)

		seedFeed(store, kb.GlobalFeed(), tweet(5, "parent"))
		seedFeed(store, kb.Replies(parentID))
		store.SetTweet(tweet(5, "parent"))

		_, err := c.CreateTweet(ctx, "a reply", nil, &parentID)
		require.NoError(t, err)

		replies, ok := store.TweetPages(kb.Replies(parentID))
		require.True(t, ok)
		require.Len(t, replies[0].Content, 1)
		assert.Equal(t, int64(43), replies[0].Content[0].ID)

		parent, _ := store.Tweet(5)
		assert.Equal(t, int32(1), parent.ReplyCount)
	})

	t.Run("anonymous viewer is rejected before any edit", func(t *testing.T) {
		f := &fakeClient{}
		c, store := newTestCoordinator(f, &fakeViewer{})

		seedFeed(store, kb.GlobalFeed(), tweet(5, "old"))

		_, err := c.CreateTweet(ctx, "hello", nil, nil)
		require.ErrorIs(t, err, common.ErrUnauthorized)

		feed, _ := store.TweetPages(kb.GlobalFeed())
		assert.Len(t, feed[0].Content, 1)
		assert.Empty(t, f.calls)
	})
}

func TestDeleteTweet(t *testing.T) {
	kb := keys.NewBuilder()
	ctx := context.Background()

	t.Run("success removes from feeds and invalidates", func(t *testing.T) {
		f := &fakeClient{}
		c, store := newTestCoordinator(f, nil)

		seedFeed(store, kb.GlobalFeed(), tweet(1, "a"), tweet(2, "b"))
		store.SetTweet(tweet(1, "a"))

		require.NoError(t, c.DeleteTweet(ctx, 1))

		_, ok := store.TweetPages(kb.GlobalFeed())
		assert.False(t, ok, "feeds invalidated for eventual consistency")

		_, ok = store.Tweet(1)
		assert.False(t, ok)
	})

	t.Run("failure restores original positions", func(t *testing.T) {
		f := &fakeClient{deleteErr: errServer}
		c, store := newTestCoordinator(f, nil)

		seedFeed(store, kb.GlobalFeed(), tweet(1, "a"), tweet(2, "b"), tweet(3, "c"))

		require.ErrorIs(t, c.DeleteTweet(ctx, 2), errServer)

		feed, ok := store.TweetPages(kb.GlobalFeed())
		require.True(t, ok)
		require.Len(t, feed[0].Content, 3)
		assert.Equal(t, int64(2), feed[0].Content[1].ID, "restored in place")
	})
}

func TestUpdateProfile(t *testing.T) {
	kb := keys.NewBuilder()
	ctx := context.Background()

	f := &fakeClient{}
	viewer := &fakeViewer{user: &common.User{ID: 1, Username: "alice"}}
	c, store := newTestCoordinator(f, viewer)

	gen := store.Generation(kb.UserByUsername("alice"))
	store.StoreFetched(kb.UserByUsername("alice"), gen, common.User{ID: 1, Username: "alice"})

	updated, err := c.UpdateProfile(ctx, api.ProfileRequest{DisplayName: "Alice A."}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.DisplayName)

	profile, ok := store.User(1)
	require.True(t, ok)
	assert.Equal(t, "Alice A.", profile.DisplayName)

	require.Len(t, viewer.set, 1)
	assert.Equal(t, "Alice A.", viewer.set[0].DisplayName)
}

func TestMarkAllRead(t *testing.T) {
	kb := keys.NewBuilder()
	ctx := context.Background()

	t.Run("success zeroes the counter and flips cached pages", func(t *testing.T) {
		f := &fakeClient{}
		c, store := newTestCoordinator(f, nil)

		store.SetUnreadCount(5)

		gen := store.Generation(kb.NotificationList())
		store.StoreFetched(kb.NotificationList(), gen, []common.Page[common.Notification]{
			{Content: []common.Notification{{ID: 1}, {ID: 2}}},
		})

		require.NoError(t, c.MarkAllRead(ctx))

		n, ok := store.UnreadCount()
		require.True(t, ok)
		assert.Zero(t, n)

		pages, _ := store.NotificationPages()
		assert.True(t, pages[0].Content[0].IsRead)
		assert.True(t, pages[0].Content[1].IsRead)
	})

	t.Run("failure leaves the cache untouched", func(t *testing.T) {
		f := &fakeClient{markReadErr: errServer}
		c, store := newTestCoordinator(f, nil)

		store.SetUnreadCount(5)

		require.ErrorIs(t, c.MarkAllRead(ctx), errServer)

		n, _ := store.UnreadCount()
		assert.Equal(t, int32(5), n)
	})
}
