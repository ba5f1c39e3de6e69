package cache

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
	"github.com/chanombude/twitter-go-client/internal/log"
)

func newTestStore() *Store {
	return NewStore(log.NewLogger(logrus.New()), nil)
}

func tweet(id int64, content string) common.Tweet {
	return common.Tweet{ID: id, Content: &content, User: common.User{ID: id * 100, Username: "u"}}
}

func tweetPage(page int, last bool, tweets ...common.Tweet) common.Page[common.Tweet] {
	return common.Page[common.Tweet]{Content: tweets, Page: page, Size: len(tweets), Last: last}
}

func TestStoreFencing(t *testing.T) {
	kb := keys.NewBuilder()

	t.Run("fetch lands when no edit intervened", func(t *testing.T) {
		s := newTestStore()
		key := kb.GlobalFeed()

		gen := s.Generation(key)
		pages := []common.Page[common.Tweet]{tweetPage(0, true, tweet(1, "a"))}

		require.True(t, s.StoreFetched(key, gen, pages))

		got, ok := s.TweetPages(key)
		require.True(t, ok)
		assert.Len(t, got, 1)
	})

	t.Run("cancelled fetch is dropped", func(t *testing.T) {
		s := newTestStore()
		key := kb.GlobalFeed()

		gen := s.Generation(key)

		s.CancelInFlight(keys.Feeds)

		stale := []common.Page[common.Tweet]{tweetPage(0, true, tweet(1, "stale"))}
		require.False(t, s.StoreFetched(key, gen, stale))

		_, ok := s.TweetPages(key)
		assert.False(t, ok)
	})

	t.Run("cancel scopes to the given prefixes", func(t *testing.T) {
		s := newTestStore()
		feedKey := kb.GlobalFeed()
		userKey := kb.User(7)

		feedGen := s.Generation(feedKey)
		userGen := s.Generation(userKey)

		s.CancelInFlight(keys.Feeds)

		assert.False(t, s.StoreFetched(feedKey, feedGen, []common.Page[common.Tweet]{}))
		assert.True(t, s.StoreFetched(userKey, userGen, common.User{ID: 7}))
	})
}

func TestStoreInvalidate(t *testing.T) {
	kb := keys.NewBuilder()

	s := newTestStore()
	s.put(kb.GlobalFeed(), []common.Page[common.Tweet]{tweetPage(0, true, tweet(1, "a"))})
	s.put(kb.Tweet(1), tweet(1, "a"))
	s.put(kb.User(7), common.User{ID: 7})

	s.Invalidate(keys.Feeds, keys.Tweets)

	_, ok := s.TweetPages(kb.GlobalFeed())
	assert.False(t, ok)

	_, ok = s.Tweet(1)
	assert.False(t, ok)

	_, ok = s.User(7)
	assert.True(t, ok, "other prefixes survive")
}

func TestStoreSnapshotRestore(t *testing.T) {
	kb := keys.NewBuilder()
	key := kb.GlobalFeed()

	t.Run("restore returns the exact previous value", func(t *testing.T) {
		s := newTestStore()

		original := []common.Page[common.Tweet]{tweetPage(0, false, tweet(1, "a"), tweet(2, "b"))}
		s.put(key, original)

		snap := s.Snapshot(key)

		s.PrependTweet(key, tweet(99, "optimistic"))

		got, ok := s.TweetPages(key)
		require.True(t, ok)
		require.Len(t, got[0].Content, 3)

		s.Restore(snap)

		got, ok = s.TweetPages(key)
		require.True(t, ok)
		require.Len(t, got[0].Content, 2)
		assert.Equal(t, int64(1), got[0].Content[0].ID)
	})

	t.Run("snapshot is isolated from later edits", func(t *testing.T) {
		s := newTestStore()
		s.put(key, []common.Page[common.Tweet]{tweetPage(0, true, tweet(1, "a"))})

		snap := s.Snapshot(key)

		s.ApplyToTweet(1, func(tw common.Tweet) (common.Tweet, bool) {
			tw.LikeCount = 42
			return tw, true
		})

		s.Restore(snap)

		got, _ := s.TweetPages(key)
		assert.Equal(t, int32(0), got[0].Content[0].LikeCount)
	})

	t.Run("restoring an absent snapshot drops the key", func(t *testing.T) {
		s := newTestStore()

		snap := s.Snapshot(key)

		s.put(key, []common.Page[common.Tweet]{tweetPage(0, true, tweet(1, "a"))})
		s.Restore(snap)

		_, ok := s.TweetPages(key)
		assert.False(t, ok)
	})
}

func TestStoreSubscribe(t *testing.T) {
	kb := keys.NewBuilder()
	s := newTestStore()

	ch := s.Subscribe(keys.Notifications)
	defer s.Unsubscribe(ch)

	s.SetUnreadCount(3)

	select {
	case key := <-ch:
		assert.Equal(t, kb.UnreadCount(), key)
	default:
		t.Fatal("expected a change notification")
	}

	// Changes outside the prefix stay silent.
	s.put(kb.GlobalFeed(), []common.Page[common.Tweet]{})

	select {
	case key := <-ch:
		t.Fatalf("unexpected notification for %s", key)
	default:
	}
}

func TestStoreUnreadCount(t *testing.T) {
	s := newTestStore()

	_, ok := s.UnreadCount()
	require.False(t, ok)

	s.SetUnreadCount(2)
	s.BumpUnreadCount(1)

	n, ok := s.UnreadCount()
	require.True(t, ok)
	assert.Equal(t, int32(3), n)

	s.BumpUnreadCount(-10)

	n, _ = s.UnreadCount()
	assert.Equal(t, int32(0), n, "counter never goes negative")
}

func TestStoreLists(t *testing.T) {
	kb := keys.NewBuilder()

	t.Run("prepend targets the first page only", func(t *testing.T) {
		s := newTestStore()
		key := kb.GlobalFeed()

		s.put(key, []common.Page[common.Tweet]{
			tweetPage(0, false, tweet(1, "a")),
			tweetPage(1, true, tweet(2, "b")),
		})

		s.PrependTweet(key, tweet(99, "new"))

		got, _ := s.TweetPages(key)
		require.Len(t, got[0].Content, 2)
		assert.Equal(t, int64(99), got[0].Content[0].ID)
		assert.Len(t, got[1].Content, 1)
	})

	t.Run("prepend without cached pages is a no-op", func(t *testing.T) {
		s := newTestStore()

		s.PrependTweet(kb.GlobalFeed(), tweet(99, "new"))

		_, ok := s.TweetPages(kb.GlobalFeed())
		assert.False(t, ok)
	})

	t.Run("swap replaces the matched placeholder", func(t *testing.T) {
		s := newTestStore()
		key := kb.GlobalFeed()

		placeholder := tweet(1_800_000_000_000, "hello")
		s.put(key, []common.Page[common.Tweet]{tweetPage(0, true, placeholder, tweet(1, "a"))})

		server := tweet(42, "hello")
		s.SwapTweet(key, func(tw common.Tweet) bool { return tw.ID == placeholder.ID }, server)

		got, _ := s.TweetPages(key)
		assert.Equal(t, int64(42), got[0].Content[0].ID)
		assert.Equal(t, int64(1), got[0].Content[1].ID)
	})

	t.Run("remove deletes the exact id", func(t *testing.T) {
		s := newTestStore()
		key := kb.GlobalFeed()

		s.put(key, []common.Page[common.Tweet]{tweetPage(0, true, tweet(1, "a"), tweet(2, "b"))})

		s.RemoveTweet(key, 1)

		got, _ := s.TweetPages(key)
		require.Len(t, got[0].Content, 1)
		assert.Equal(t, int64(2), got[0].Content[0].ID)
	})
}
