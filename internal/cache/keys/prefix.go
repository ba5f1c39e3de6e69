package keys

// Prefix groups all cache keys of one region family. Matching is by key
// segment, never by raw string convention.
type Prefix string

const (
	feedsPrefix         Prefix = "feeds"
	tweetsPrefix        Prefix = "tweets"
	usersPrefix         Prefix = "users"
	searchPrefix        Prefix = "search"
	discoveryPrefix     Prefix = "discovery"
	notificationsPrefix Prefix = "notifications"
)

// Region families exported for fan-out and invalidation targeting.
var (
	Feeds         = feedsPrefix
	Tweets        = tweetsPrefix
	Users         = usersPrefix
	Search        = searchPrefix
	Discovery     = discoveryPrefix
	Notifications = notificationsPrefix
)
