package common

import "time"

type NotificationType string

const (
	NotificationLike    NotificationType = "LIKE"
	NotificationRetweet NotificationType = "RETWEET"
	NotificationReply   NotificationType = "REPLY"
	NotificationFollow  NotificationType = "FOLLOW"
)

type Notification struct {
	ID            int64            `json:"id"`
	Type          NotificationType `json:"type"`
	Actor         User             `json:"actor"`
	TweetID       *int64           `json:"tweetId"`
	TweetContent  *string          `json:"tweetContent"`
	TweetMediaURL *string          `json:"tweetMediaUrl"`
	IsRead        bool             `json:"isRead"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// Clone deep-copies the notification.
func (n Notification) Clone() Notification {
	res := n
	res.Actor = n.Actor.Clone()
	res.TweetID = clonePtr(n.TweetID)
	res.TweetContent = clonePtr(n.TweetContent)
	res.TweetMediaURL = clonePtr(n.TweetMediaURL)

	return res
}
