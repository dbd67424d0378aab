package repository

import (
	"KaraFM/db"
	"KaraFM/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArtistFollowRepository manages artist follows.
type ArtistFollowRepository struct {
	DB *gorm.DB
}

func NewArtistFollowRepository() *ArtistFollowRepository {
	return &ArtistFollowRepository{DB: db.GormDB}
}

// Follow records a follow. Following an artist twice is a no-op thanks to
// the unique index.
func (r *ArtistFollowRepository) Follow(userID int64, artist string) error {
	follow := model.ArtistFollow{UserID: userID, Artist: artist}
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error
}

// Unfollow removes the follow if present.
func (r *ArtistFollowRepository) Unfollow(userID int64, artist string) error {
	return r.DB.Where("user_id = ? AND artist = ?", userID, artist).
		Delete(&model.ArtistFollow{}).Error
}

// IsFollowing reports membership.
func (r *ArtistFollowRepository) IsFollowing(userID int64, artist string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ArtistFollow{}).
		Where("user_id = ? AND artist = ?", userID, artist).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns the artists a user follows, most recent first.
func (r *ArtistFollowRepository) ListByUser(userID int64) ([]model.ArtistFollow, error) {
	var follows []model.ArtistFollow
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&follows).Error
	return follows, err
}
