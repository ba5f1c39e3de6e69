package cache

import (
	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
)

// Snapshot is a deep copy of one cache entry, taken before a list-membership
// edit so a failed mutation restores the exact previous state.
type Snapshot struct {
	key     keys.Key
	value   any
	present bool
}

// Snapshot captures the entry under the key. Absent entries snapshot too, so
// Restore can bring the key back to "not cached".
func (s *Store) Snapshot(key keys.Key) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.entries[key]
	if !ok {
		return Snapshot{key: key}
	}

	return Snapshot{key: key, value: cloneValue(value), present: true}
}

// Restore puts the snapshotted state back, replacing whatever the optimistic
// edit wrote in the meantime.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !snap.present {
		s.drop(snap.key)
		return
	}

	s.put(snap.key, cloneValue(snap.value))
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case []common.Page[common.Tweet]:
		next := make([]common.Page[common.Tweet], 0, len(v))
		for _, page := range v {
			page.Content = cloneTweets(page.Content)
			next = append(next, page)
		}

		return next
	case common.Page[common.Tweet]:
		v.Content = cloneTweets(v.Content)
		return v
	case common.Tweet:
		return v.Clone()
	case common.User:
		return v.Clone()
	case common.Page[common.User]:
		content := make([]common.User, 0, len(v.Content))
		for _, u := range v.Content {
			content = append(content, u.Clone())
		}

		v.Content = content

		return v
	case []common.Page[common.Notification]:
		next := make([]common.Page[common.Notification], 0, len(v))
		for _, page := range v {
			content := make([]common.Notification, 0, len(page.Content))
			for _, n := range page.Content {
				content = append(content, n.Clone())
			}

			page.Content = content
			next = append(next, page)
		}

		return next
	default:
		return v
	}
}

func cloneTweets(list []common.Tweet) []common.Tweet {
	next := make([]common.Tweet, 0, len(list))
	for _, t := range list {
		next = append(next, t.Clone())
	}

	return next
}
