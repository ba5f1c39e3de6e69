package common

type User struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	DisplayName    string  `json:"displayName"`
	AvatarURL      *string `json:"avatarUrl"`
	Bio            *string `json:"bio"`
	Role           string  `json:"role"`
	FollowersCount int32   `json:"followersCount"`
	FollowingCount int32   `json:"followingCount"`
	FollowedByMe   bool    `json:"followedByMe"`
}

// Clone deep-copies the user.
func (u User) Clone() User {
	res := u
	res.AvatarURL = clonePtr(u.AvatarURL)
	res.Bio = clonePtr(u.Bio)

	return res
}
