package cache

import (
	"sync"

	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/common"
	"github.com/chanombude/twitter-go-client/internal/log"
	"github.com/chanombude/twitter-go-client/internal/metrics"
)

// Store is the single source of truth for fetched entities, addressed by
// composite keys. It is explicitly constructed, never global, and never
// performs I/O: every operation completes synchronously in memory.
type Store struct {
	mu      sync.Mutex
	entries map[keys.Key]any
	gens    map[keys.Key]uint64
	regions []region
	subs    []*subscription

	log     log.Logger
	metrics *metrics.Metrics
}

func NewStore(logger log.Logger, m *metrics.Metrics) *Store {
	return &Store{
		entries: map[keys.Key]any{},
		gens:    map[keys.Key]uint64{},
		regions: declaredRegions(),
		log:     logger,
		metrics: m,
	}
}

// Generation returns the fence value for a key. A fetcher reads it before
// issuing the network call and hands it back to StoreFetched; any optimistic
// edit or cancellation in between bumps the generation and the stale response
// is dropped instead of clobbering the edit. Reading the fence registers the
// key, so a first-ever fetch can be fenced off too.
func (s *Store) Generation(key keys.Key) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.gens[key]; !ok {
		s.gens[key] = 0
	}

	return s.gens[key]
}

// StoreFetched installs a fetched value unless the key's generation moved
// since gen was read. Reports whether the value was stored.
func (s *Store) StoreFetched(key keys.Key, gen uint64, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[key] != gen {
		s.log.WithField("key", key).Debug("stale fetch dropped")
		return false
	}

	s.put(key, value)

	return true
}

// CancelInFlight fences off responses of fetches already in flight for the
// given region families. Called before an optimistic edit.
func (s *Store) CancelInFlight(prefixes ...keys.Prefix) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.gens {
		if matchAny(key, prefixes) {
			s.gens[key]++
		}
	}
}

// Invalidate drops every entry under the given region families so the next
// read refetches.
func (s *Store) Invalidate(prefixes ...keys.Prefix) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if matchAny(key, prefixes) {
			s.drop(key)
		}
	}
}

// InvalidateKey drops the entry family rooted at one full key, e.g. a single
// tweet's detail entry or the notification list.
func (s *Store) InvalidateKey(key keys.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.entries {
		if k.HasKeyPrefix(key) {
			s.drop(k)
		}
	}
}

func (s *Store) drop(key keys.Key) {
	delete(s.entries, key)
	s.gens[key]++
	s.metrics.CacheInvalidation()
	s.notify(key)
}

// put stores a value, bumps the fence and signals subscribers. Callers hold
// the lock.
func (s *Store) put(key keys.Key, value any) {
	s.entries[key] = value
	s.gens[key]++
	s.notify(key)
}

func matchAny(key keys.Key, prefixes []keys.Prefix) bool {
	for _, p := range prefixes {
		if key.HasPrefix(p) {
			return true
		}
	}

	return false
}

// Typed accessors. Readers get the stored value; list values share backing
// arrays with the store, which is safe because edits are copy-on-write and
// replace whole entries.

func (s *Store) TweetPages(key keys.Key) ([]common.Page[common.Tweet], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[key].([]common.Page[common.Tweet])

	return v, ok
}

func (s *Store) TweetPage(key keys.Key) (common.Page[common.Tweet], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[key].(common.Page[common.Tweet])

	return v, ok
}

func (s *Store) Tweet(id int64) (common.Tweet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[keys.NewBuilder().Tweet(id)].(common.Tweet)

	return v, ok
}

func (s *Store) SetTweet(t common.Tweet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(keys.NewBuilder().Tweet(t.ID), t.Clone())
}

func (s *Store) User(id int64) (common.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[keys.NewBuilder().User(id)].(common.User)

	return v, ok
}

func (s *Store) SetUser(u common.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(keys.NewBuilder().User(u.ID), u.Clone())
}

func (s *Store) UserPage(key keys.Key) (common.Page[common.User], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[key].(common.Page[common.User])

	return v, ok
}

func (s *Store) NotificationPages() ([]common.Page[common.Notification], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[keys.NewBuilder().NotificationList()].([]common.Page[common.Notification])

	return v, ok
}

func (s *Store) UnreadCount() (int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[keys.NewBuilder().UnreadCount()].(int32)

	return v, ok
}

func (s *Store) SetUnreadCount(n int32) {
	if n < 0 {
		n = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(keys.NewBuilder().UnreadCount(), n)
}

// BumpUnreadCount adjusts the unread counter, flooring at zero. An absent
// counter counts as zero.
func (s *Store) BumpUnreadCount(delta int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keys.NewBuilder().UnreadCount()

	current, _ := s.entries[key].(int32)

	next := current + delta
	if next < 0 {
		next = 0
	}

	s.put(key, next)
}
