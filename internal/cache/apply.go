package cache

import (
	"reflect"

	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
)

// TweetUpdater rewrites one copy of a tweet. Returning keep=false removes the
// copy from its containing list, or drops a standalone detail entry.
type TweetUpdater func(common.Tweet) (common.Tweet, bool)

// UserUpdater rewrites one copy of a user.
type UserUpdater func(common.User) common.User

// ApplyToTweet walks every declared tweet-bearing region and applies the
// updater to each copy of the tweet: a direct match on the id, or a retweet
// wrapper embedding it. For a wrapper the updater sees the wrapper first, so
// wrapper-level decisions (deleting the viewer's own retweet) take effect; an
// updater that leaves the wrapper untouched is re-applied to the embedded
// original in place. An id present in no region is a silent no-op.
func (s *Store) ApplyToTweet(id int64, updater TweetUpdater) {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := false

	for key, value := range s.entries {
		r, ok := s.regionOf(key)
		if !ok || r.kind != kindTweet {
			continue
		}

		switch v := value.(type) {
		case []common.Page[common.Tweet]:
			pages, changed := rewritePages(v, id, updater)
			if changed {
				s.put(key, pages)

				touched = true
			}
		case common.Page[common.Tweet]:
			content, changed := rewriteTweetList(v.Content, id, updater)
			if changed {
				v.Content = content
				s.put(key, v)

				touched = true
			}
		case common.Tweet:
			nt, keep, matched := rewriteTweetCopy(v, id, updater)
			if !matched {
				continue
			}

			if keep {
				s.put(key, nt)
			} else {
				s.drop(key)
			}

			touched = true
		}
	}

	if touched {
		s.metrics.CacheApply("tweet")
	}
}

// ApplyToUser fans a user mutation out over every declared user-bearing
// region: the profile entry, discovery and search listings, follower and
// following pages.
func (s *Store) ApplyToUser(id int64, updater UserUpdater) {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := false

	for key, value := range s.entries {
		r, ok := s.regionOf(key)
		if !ok || r.kind != kindUser {
			continue
		}

		switch v := value.(type) {
		case common.User:
			if v.ID != id {
				continue
			}

			s.put(key, updater(v.Clone()))

			touched = true
		case common.Page[common.User]:
			changed := false
			content := make([]common.User, 0, len(v.Content))

			for _, u := range v.Content {
				if u.ID == id {
					u = updater(u.Clone())
					changed = true
				}

				content = append(content, u)
			}

			if changed {
				v.Content = content
				s.put(key, v)

				touched = true
			}
		}
	}

	if touched {
		s.metrics.CacheApply("user")
	}
}

// ApplyToNotifications rewrites every cached notification page in place, used
// by mark-all-read.
func (s *Store) ApplyToNotifications(updater func(common.Notification) common.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keys.NewBuilder().NotificationList()

	pages, ok := s.entries[key].([]common.Page[common.Notification])
	if !ok {
		return
	}

	next := make([]common.Page[common.Notification], 0, len(pages))

	for _, page := range pages {
		content := make([]common.Notification, 0, len(page.Content))
		for _, n := range page.Content {
			content = append(content, updater(n.Clone()))
		}

		page.Content = content
		next = append(next, page)
	}

	s.put(key, next)
	s.metrics.CacheApply("notification")
}

func rewritePages(pages []common.Page[common.Tweet], id int64, updater TweetUpdater) ([]common.Page[common.Tweet], bool) {
	changed := false
	next := make([]common.Page[common.Tweet], 0, len(pages))

	for _, page := range pages {
		content, pageChanged := rewriteTweetList(page.Content, id, updater)
		if pageChanged {
			page.Content = content
			changed = true
		}

		next = append(next, page)
	}

	return next, changed
}

func rewriteTweetList(list []common.Tweet, id int64, updater TweetUpdater) ([]common.Tweet, bool) {
	changed := false
	next := make([]common.Tweet, 0, len(list))

	for _, t := range list {
		nt, keep, matched := rewriteTweetCopy(t, id, updater)
		if matched {
			changed = true
		}

		if keep {
			next = append(next, nt)
		}
	}

	return next, changed
}

// rewriteTweetCopy applies the updater to one stored copy. The copy is cloned
// first so updaters never mutate shared state.
func rewriteTweetCopy(t common.Tweet, id int64, updater TweetUpdater) (common.Tweet, bool, bool) {
	if t.ID == id {
		nt, keep := updater(t.Clone())
		return nt, keep, true
	}

	if t.OriginalTweet == nil || t.OriginalTweet.ID != id {
		return t, true, false
	}

	wrapper := t.Clone()

	nt, keep := updater(wrapper.Clone())
	if !keep {
		return nt, false, true
	}

	if !reflect.DeepEqual(nt, wrapper) {
		// The updater handled the wrapper itself.
		return nt, true, true
	}

	inner, keepInner := updater(wrapper.OriginalTweet.Clone())
	if !keepInner {
		// Deleting the embedded original invalidates the wrapper.
		return wrapper, false, true
	}

	wrapper.OriginalTweet = &inner

	return wrapper, true, true
}
