package model

import "time"

// Followed entity types.
const (
	FollowTypeArtist = "artist"
	FollowTypeUser   = "user"
)

// Follow links a user to a followed entity, unique per
// (follower, type, followed id).
type Follow struct {
	ID                   int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FollowerID           int64     `json:"followerId" gorm:"uniqueIndex:uq_follow;not null"`
	FollowedType         string    `json:"followedType" gorm:"uniqueIndex:uq_follow;size:16;not null"`
	FollowedID           string    `json:"followedId" gorm:"uniqueIndex:uq_follow;size:64;not null"`
	FollowedAt           time.Time `json:"followedAt"`
	NotificationsEnabled bool      `json:"notificationsEnabled" gorm:"default:true"`
}
