package model

import "time"

// Artist is catalog artist metadata, hydrated from the catalog client and
// annotated with the requesting user's follow state.
type Artist struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Picture     string     `json:"picture"`
	PictureBig  string     `json:"picture_big,omitempty"`
	Followers   int64      `json:"followers"`
	Genre       string     `json:"genre,omitempty"`
	IsFollowing bool       `json:"isFollowing"`
	FollowedAt  *time.Time `json:"followedAt,omitempty"`
}
