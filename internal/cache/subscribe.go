package cache

import (
	"github.com/chanombude/twitter-go-client/internal/cache/keys"
)

const subscriptionBuffer = 16

type subscription struct {
	prefix keys.Prefix
	ch     chan keys.Key
}

// Subscribe returns a channel carrying the key of every entry that changes
// under the prefix. Delivery is best effort: a subscriber that stops draining
// loses events instead of blocking cache writes.
func (s *Store) Subscribe(prefix keys.Prefix) <-chan keys.Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &subscription{prefix: prefix, ch: make(chan keys.Key, subscriptionBuffer)}
	s.subs = append(s.subs, sub)

	return sub.ch
}

// Unsubscribe removes the subscription and closes its channel.
func (s *Store) Unsubscribe(ch <-chan keys.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.ch == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			close(sub.ch)

			return
		}
	}
}

// notify is called with the store lock held.
func (s *Store) notify(key keys.Key) {
	for _, sub := range s.subs {
		if !key.HasPrefix(sub.prefix) {
			continue
		}

		select {
		case sub.ch <- key:
		default:
		}
	}
}
