package common

// Page is one slice of a server-side paginated listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// Hashtag is a trending or searched hashtag with its usage count.
type Hashtag struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// AuthSession is the payload of a successful refresh or login.
type AuthSession struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}
