package keys

import (
	"strconv"
	"strings"
)

const separator = "/"

// Key addresses one cache location. Segments are joined with a separator that
// never occurs inside a segment produced by the builder.
type Key string

// HasPrefix reports whether the key belongs to the prefix family, respecting
// segment boundaries.
func (k Key) HasPrefix(p Prefix) bool {
	s := string(k)
	ps := string(p)

	if s == ps {
		return true
	}

	return strings.HasPrefix(s, ps+separator)
}

// HasKeyPrefix is HasPrefix against another full key, for narrower targeting
// such as one tweet's detail-and-replies family.
func (k Key) HasKeyPrefix(other Key) bool {
	return k.HasPrefix(Prefix(other))
}

type Builder interface {
	GlobalFeed() Key
	FollowingFeed() Key
	UserFeed(userID int64) Key
	Tweet(id int64) Key
	Replies(tweetID int64) Key
	User(id int64) Key
	UserByUsername(username string) Key
	Followers(userID int64) Key
	Following(userID int64) Key
	SearchTweets(query string) Key
	SearchUsers(query string) Key
	DiscoveryUsers() Key
	NotificationList() Key
	UnreadCount() Key
}

type builder struct{}

func (b builder) GlobalFeed() Key {
	return join(feedsPrefix, "global")
}

func (b builder) FollowingFeed() Key {
	return join(feedsPrefix, "following")
}

func (b builder) UserFeed(userID int64) Key {
	return join(feedsPrefix, "user", strconv.FormatInt(userID, 10))
}

func (b builder) Tweet(id int64) Key {
	return join(tweetsPrefix, strconv.FormatInt(id, 10))
}

func (b builder) Replies(tweetID int64) Key {
	return join(tweetsPrefix, strconv.FormatInt(tweetID, 10), "replies")
}

func (b builder) User(id int64) Key {
	return join(usersPrefix, strconv.FormatInt(id, 10))
}

func (b builder) UserByUsername(username string) Key {
	return join(usersPrefix, "byUsername", strings.ToLower(username))
}

func (b builder) Followers(userID int64) Key {
	return join(usersPrefix, strconv.FormatInt(userID, 10), "followers")
}

func (b builder) Following(userID int64) Key {
	return join(usersPrefix, strconv.FormatInt(userID, 10), "following")
}

func (b builder) SearchTweets(query string) Key {
	return join(searchPrefix, "tweets", query)
}

func (b builder) SearchUsers(query string) Key {
	return join(searchPrefix, "users", query)
}

func (b builder) DiscoveryUsers() Key {
	return join(discoveryPrefix, "users")
}

func (b builder) NotificationList() Key {
	return join(notificationsPrefix, "list")
}

func (b builder) UnreadCount() Key {
	return join(notificationsPrefix, "unread")
}

func NewBuilder() Builder {
	return &builder{}
}

func join(p Prefix, segments ...string) Key {
	parts := append([]string{string(p)}, segments...)
	return Key(strings.Join(parts, separator))
}
