package cache

import (
	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
)

// PrependTweet inserts a tweet at the head of the first cached page under the
// key. A key with no cached pages is left untouched: an unpopulated region
// needs no visible change.
func (s *Store) PrependTweet(key keys.Key, t common.Tweet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pages, ok := s.entries[key].([]common.Page[common.Tweet])
	if !ok || len(pages) == 0 {
		return
	}

	next := make([]common.Page[common.Tweet], len(pages))
	copy(next, pages)

	head := next[0]
	head.Content = append([]common.Tweet{t.Clone()}, head.Content...)
	next[0] = head

	s.put(key, next)
}

// RemoveTweet drops every copy with the exact id (wrappers are not unwrapped)
// from the cached pages under the key.
func (s *Store) RemoveTweet(key keys.Key, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pages, ok := s.entries[key].([]common.Page[common.Tweet])
	if !ok {
		return
	}

	changed := false
	next := make([]common.Page[common.Tweet], 0, len(pages))

	for _, page := range pages {
		content := make([]common.Tweet, 0, len(page.Content))

		for _, t := range page.Content {
			if t.ID == id {
				changed = true
				continue
			}

			content = append(content, t)
		}

		page.Content = content
		next = append(next, page)
	}

	if changed {
		s.put(key, next)
	}
}

// SwapTweet replaces every entry the matcher accepts with the given tweet.
// Used to reconcile a synthetic optimistic tweet with the server record.
func (s *Store) SwapTweet(key keys.Key, match func(common.Tweet) bool, real common.Tweet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pages, ok := s.entries[key].([]common.Page[common.Tweet])
	if !ok {
		return
	}

	changed := false
	next := make([]common.Page[common.Tweet], 0, len(pages))

	for _, page := range pages {
		content := make([]common.Tweet, 0, len(page.Content))

		for _, t := range page.Content {
			if match(t) {
				t = real.Clone()
				changed = true
			}

			content = append(content, t)
		}

		page.Content = content
		next = append(next, page)
	}

	if changed {
		s.put(key, next)
	}
}
