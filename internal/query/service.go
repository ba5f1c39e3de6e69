package query

import (
	"context"

	"github.com/chanombude/twitter-go-client/internal/cache"
	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
	"github.com/chanombude/twitter-go-client/internal/log"
)

const defaultPageSize = 20

type client interface {
	GlobalFeed(ctx context.Context, page, size int) (common.Page[common.Tweet], error)
	FollowingFeed(ctx context.Context, page, size int) (common.Page[common.Tweet], error)
	UserFeed(ctx context.Context, userID int64, page, size int) (common.Page[common.Tweet], error)
	GetTweet(ctx context.Context, id int64) (common.Tweet, error)
	Replies(ctx context.Context, tweetID int64, page, size int) (common.Page[common.Tweet], error)
	GetUser(ctx context.Context, id int64) (common.User, error)
	SearchTweets(ctx context.Context, query string, page, size int) (common.Page[common.Tweet], error)
	SearchUsers(ctx context.Context, query string, page, size int) (common.Page[common.User], error)
	Notifications(ctx context.Context, page, size int) (common.Page[common.Notification], error)
	UnreadCount(ctx context.Context) (int32, error)
}

// Service is the read side of the cache: fetch-through queries that populate
// store entries. Every write into the store goes through the generation
// fence, so a response that raced an optimistic edit is dropped instead of
// overwriting it.
type Service struct {
	api      client
	store    *cache.Store
	keys     keys.Builder
	pageSize int

	log log.Logger
}

func NewService(apiClient client, store *cache.Store, pageSize int, logger log.Logger) *Service {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Service{
		api:      apiClient,
		store:    store,
		keys:     keys.NewBuilder(),
		pageSize: pageSize,
		log:      logger,
	}
}

// LoadGlobalFeed fetches the next uncached page of the global feed and
// returns the accumulated pages.
func (s *Service) LoadGlobalFeed(ctx context.Context) ([]common.Page[common.Tweet], error) {
	return s.loadPages(ctx, s.keys.GlobalFeed(), func(page int) (common.Page[common.Tweet], error) {
		return s.api.GlobalFeed(ctx, page, s.pageSize)
	})
}

// LoadFollowingFeed is LoadGlobalFeed for the following feed.
func (s *Service) LoadFollowingFeed(ctx context.Context) ([]common.Page[common.Tweet], error) {
	return s.loadPages(ctx, s.keys.FollowingFeed(), func(page int) (common.Page[common.Tweet], error) {
		return s.api.FollowingFeed(ctx, page, s.pageSize)
	})
}

// LoadUserFeed loads the next page of one user's feed.
func (s *Service) LoadUserFeed(ctx context.Context, userID int64) ([]common.Page[common.Tweet], error) {
	return s.loadPages(ctx, s.keys.UserFeed(userID), func(page int) (common.Page[common.Tweet], error) {
		return s.api.UserFeed(ctx, userID, page, s.pageSize)
	})
}

// LoadReplies loads the next page of a tweet's reply list.
func (s *Service) LoadReplies(ctx context.Context, tweetID int64) ([]common.Page[common.Tweet], error) {
	return s.loadPages(ctx, s.keys.Replies(tweetID), func(page int) (common.Page[common.Tweet], error) {
		return s.api.Replies(ctx, tweetID, page, s.pageSize)
	})
}

// Tweet returns the cached detail entry, fetching it on a miss.
func (s *Service) Tweet(ctx context.Context, id int64) (common.Tweet, error) {
	if t, ok := s.store.Tweet(id); ok {
		return t, nil
	}

	key := s.keys.Tweet(id)
	gen := s.store.Generation(key)

	t, err := s.api.GetTweet(ctx, id)
	if err != nil {
		return common.Tweet{}, err
	}

	s.store.StoreFetched(key, gen, t)

	return t, nil
}

// User returns the cached profile entry, fetching it on a miss.
func (s *Service) User(ctx context.Context, id int64) (common.User, error) {
	if u, ok := s.store.User(id); ok {
		return u, nil
	}

	key := s.keys.User(id)
	gen := s.store.Generation(key)

	u, err := s.api.GetUser(ctx, id)
	if err != nil {
		return common.User{}, err
	}

	s.store.StoreFetched(key, gen, u)

	return u, nil
}

// SearchTweets caches one result page per query string.
func (s *Service) SearchTweets(ctx context.Context, query string) (common.Page[common.Tweet], error) {
	key := s.keys.SearchTweets(query)

	if page, ok := s.store.TweetPage(key); ok {
		return page, nil
	}

	gen := s.store.Generation(key)

	page, err := s.api.SearchTweets(ctx, query, 0, s.pageSize)
	if err != nil {
		return common.Page[common.Tweet]{}, err
	}

	s.store.StoreFetched(key, gen, page)

	return page, nil
}

// SearchUsers caches one result page per query string.
func (s *Service) SearchUsers(ctx context.Context, query string) (common.Page[common.User], error) {
	key := s.keys.SearchUsers(query)

	if page, ok := s.store.UserPage(key); ok {
		return page, nil
	}

	gen := s.store.Generation(key)

	page, err := s.api.SearchUsers(ctx, query, 0, s.pageSize)
	if err != nil {
		return common.Page[common.User]{}, err
	}

	s.store.StoreFetched(key, gen, page)

	return page, nil
}

// LoadNotifications loads the next page of the notification list.
func (s *Service) LoadNotifications(ctx context.Context) ([]common.Page[common.Notification], error) {
	key := s.keys.NotificationList()

	cached, _ := s.store.NotificationPages()

	next, done := nextPage(pageMeta(cached))
	if done {
		return cached, nil
	}

	gen := s.store.Generation(key)

	page, err := s.api.Notifications(ctx, next, s.pageSize)
	if err != nil {
		return nil, err
	}

	pages := append(append([]common.Page[common.Notification]{}, cached...), page)

	if !s.store.StoreFetched(key, gen, pages) {
		current, _ := s.store.NotificationPages()
		return current, nil
	}

	return pages, nil
}

// UnreadCount returns the cached unread counter, polling the server on a
// miss.
func (s *Service) UnreadCount(ctx context.Context) (int32, error) {
	if n, ok := s.store.UnreadCount(); ok {
		return n, nil
	}

	n, err := s.api.UnreadCount(ctx)
	if err != nil {
		return 0, err
	}

	s.store.SetUnreadCount(n)

	return n, nil
}

func (s *Service) loadPages(ctx context.Context, key keys.Key, fetch func(page int) (common.Page[common.Tweet], error)) ([]common.Page[common.Tweet], error) {
	cached, _ := s.store.TweetPages(key)

	next, done := nextPage(pageMeta(cached))
	if done {
		return cached, nil
	}

	gen := s.store.Generation(key)

	page, err := fetch(next)
	if err != nil {
		return nil, err
	}

	pages := append(append([]common.Page[common.Tweet]{}, cached...), page)

	if !s.store.StoreFetched(key, gen, pages) {
		// An optimistic edit fenced this fetch off; the store wins.
		current, _ := s.store.TweetPages(key)
		return current, nil
	}

	return pages, nil
}

type meta struct {
	count    int
	lastPage int
	last     bool
}

func pageMeta[T any](pages []common.Page[T]) meta {
	if len(pages) == 0 {
		return meta{}
	}

	tail := pages[len(pages)-1]

	return meta{count: len(pages), lastPage: tail.Page, last: tail.Last}
}

// nextPage returns the next page index to fetch, or done when the listing is
// exhausted.
func nextPage(m meta) (int, bool) {
	if m.count == 0 {
		return 0, false
	}

	if m.last {
		return 0, true
	}

	return m.lastPage + 1, false
}
