package repository

import (
	"errors"
	"fmt"
	"time"

	"tracktide/model"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow operations.
// Follows are unique per (follower, type, followed id).
type FollowRepository interface {
	ListByFollower(followerID int64, followedType string) ([]model.Follow, error)
	Add(follow *model.Follow) error
	Remove(followerID int64, followedType, followedID string) (*model.Follow, error)
	IsFollowing(followerID int64, followedType, followedID string) (bool, error)
}

type gormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new gormFollowRepository.
func NewGormFollowRepository(db *gorm.DB) FollowRepository {
	return &gormFollowRepository{db: db}
}

// ListByFollower returns the user's follows of one type, newest first.
func (r *gormFollowRepository) ListByFollower(followerID int64, followedType string) ([]model.Follow, error) {
	var follows []model.Follow
	err := r.db.Where("follower_id = ? AND followed_type = ?", followerID, followedType).
		Order("followed_at DESC").
		Find(&follows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list follows for user %d: %w", followerID, err)
	}
	return follows, nil
}

// Add inserts a follow record. Returns ErrDuplicateFollow when the entity
// is already followed.
func (r *gormFollowRepository) Add(follow *model.Follow) error {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("follower_id = ? AND followed_type = ? AND followed_id = ?",
			follow.FollowerID, follow.FollowedType, follow.FollowedID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check for existing follow: %w", err)
	}
	if count > 0 {
		return ErrDuplicateFollow
	}

	follow.FollowedAt = time.Now()
	if err := r.db.Create(follow).Error; err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

// Remove deletes a follow record and returns it.
func (r *gormFollowRepository) Remove(followerID int64, followedType, followedID string) (*model.Follow, error) {
	var follow model.Follow
	err := r.db.Where("follower_id = ? AND followed_type = ? AND followed_id = ?",
		followerID, followedType, followedID).First(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find follow to remove: %w", err)
	}

	if err := r.db.Delete(&follow).Error; err != nil {
		return nil, fmt.Errorf("failed to delete follow %d: %w", follow.ID, err)
	}
	return &follow, nil
}

// IsFollowing reports whether the user follows the entity.
func (r *gormFollowRepository) IsFollowing(followerID int64, followedType, followedID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("follower_id = ? AND followed_type = ? AND followed_id = ?",
			followerID, followedType, followedID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow state: %w", err)
	}
	return count > 0, nil
}
