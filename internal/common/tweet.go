package common

import (
	"fmt"
	"time"
)

type Tweet struct {
	ID             int64     `json:"id"`
	Content        *string   `json:"content"`
	MediaType      *string   `json:"mediaType"`
	MediaURL       *string   `json:"mediaUrl"`
	User           User      `json:"user"`
	ReplyCount     int32     `json:"replyCount"`
	LikeCount      int32     `json:"likeCount"`
	RetweetCount   int32     `json:"retweetCount"`
	LikedByMe      bool      `json:"likedByMe"`
	RetweetedByMe  bool      `json:"retweetedByMe"`
	OriginalTweet  *Tweet    `json:"originalTweet"`
	ParentID       *int64    `json:"replyToTweetId"`
	ParentUsername *string   `json:"replyToUserHandle"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsRetweet reports whether the record is a wrapper around another tweet.
func (t Tweet) IsRetweet() bool {
	return t.OriginalTweet != nil
}

// Target returns the tweet engagement actions operate on: the embedded
// original for a retweet wrapper, the record itself otherwise.
func (t Tweet) Target() Tweet {
	if t.OriginalTweet != nil {
		return *t.OriginalTweet
	}

	return t
}

// Clone deep-copies the tweet, including the embedded original.
func (t Tweet) Clone() Tweet {
	res := t
	res.Content = clonePtr(t.Content)
	res.MediaType = clonePtr(t.MediaType)
	res.MediaURL = clonePtr(t.MediaURL)
	res.ParentID = clonePtr(t.ParentID)
	res.ParentUsername = clonePtr(t.ParentUsername)
	res.User = t.User.Clone()

	if t.OriginalTweet != nil {
		orig := t.OriginalTweet.Clone()
		res.OriginalTweet = &orig
	}

	return res
}

func (t Tweet) String() string {
	return fmt.Sprintf("Tweet{ID: %d, Author: %s, CreatedAt: %s}", t.ID, t.User.Username, t.CreatedAt.Format(time.RFC3339))
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}
