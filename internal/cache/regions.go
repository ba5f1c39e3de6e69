package cache

import (
	"strings"

	"github.com/chanombude/twitter-go-client/internal/cache/keys"
)

type entityKind int

const (
	kindNone entityKind = iota
	kindTweet
	kindUser
)

// region declares one family of cache locations and which entity kind its
// copies carry. The fan-out in ApplyToTweet/ApplyToUser walks this list
// instead of relying on key-string convention.
type region struct {
	name  string
	kind  entityKind
	match func(keys.Key) bool
}

func declaredRegions() []region {
	b := keys.NewBuilder()

	return []region{
		{
			name:  "feed.global",
			kind:  kindTweet,
			match: exact(b.GlobalFeed()),
		},
		{
			name:  "feed.following",
			kind:  kindTweet,
			match: exact(b.FollowingFeed()),
		},
		{
			name: "feed.user",
			kind: kindTweet,
			match: func(k keys.Key) bool {
				return k.HasKeyPrefix(keys.Key("feeds/user"))
			},
		},
		{
			name: "search.tweets",
			kind: kindTweet,
			match: func(k keys.Key) bool {
				return k.HasKeyPrefix(keys.Key("search/tweets"))
			},
		},
		{
			name: "tweet.replies",
			kind: kindTweet,
			match: func(k keys.Key) bool {
				return k.HasPrefix(keys.Tweets) && strings.HasSuffix(string(k), "/replies")
			},
		},
		{
			name: "tweet.detail",
			kind: kindTweet,
			match: func(k keys.Key) bool {
				return k.HasPrefix(keys.Tweets) && !strings.HasSuffix(string(k), "/replies")
			},
		},
		{
			name: "user.profile",
			kind: kindUser,
			match: func(k keys.Key) bool {
				return k.HasPrefix(keys.Users) && !strings.HasSuffix(string(k), "/followers") && !strings.HasSuffix(string(k), "/following")
			},
		},
		{
			name: "user.connections",
			kind: kindUser,
			match: func(k keys.Key) bool {
				return k.HasPrefix(keys.Users) && (strings.HasSuffix(string(k), "/followers") || strings.HasSuffix(string(k), "/following"))
			},
		},
		{
			name:  "discovery.users",
			kind:  kindUser,
			match: exact(b.DiscoveryUsers()),
		},
		{
			name: "search.users",
			kind: kindUser,
			match: func(k keys.Key) bool {
				return k.HasKeyPrefix(keys.Key("search/users"))
			},
		},
	}
}

func exact(want keys.Key) func(keys.Key) bool {
	return func(k keys.Key) bool {
		return k == want
	}
}

func (s *Store) regionOf(key keys.Key) (region, bool) {
	for _, r := range s.regions {
		if r.match(key) {
			return r, true
		}
	}

	return region{}, false
}
