package repository

import (
	"errors"

	"KaraFM/db"
	"KaraFM/model"

	"gorm.io/gorm"
)

// PodcastRepository manages podcast shows and episodes.
type PodcastRepository struct {
	DB *gorm.DB
}

func NewPodcastRepository() *PodcastRepository {
	return &PodcastRepository{DB: db.GormDB}
}

func (r *PodcastRepository) CreateShow(show *model.PodcastShow) error {
	return r.DB.Create(show).Error
}

// GetShowByID returns the show with its episodes, or (nil, nil) when absent.
func (r *PodcastRepository) GetShowByID(id int64) (*model.PodcastShow, error) {
	var show model.PodcastShow
	if err := r.DB.Preload("Episodes").First(&show, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &show, nil
}

// ListShows returns all shows, newest first.
func (r *PodcastRepository) ListShows(limit int) ([]model.PodcastShow, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var shows []model.PodcastShow
	err := r.DB.Order("created_at DESC").Limit(limit).Find(&shows).Error
	return shows, err
}

func (r *PodcastRepository) UpdateShow(show *model.PodcastShow) error {
	return r.DB.Save(show).Error
}

// DeleteShow removes the show and its episodes.
func (r *PodcastRepository) DeleteShow(id int64) error {
	if err := r.DB.Where("show_id = ?", id).Delete(&model.PodcastEpisode{}).Error; err != nil {
		return err
	}
	return r.DB.Delete(&model.PodcastShow{}, id).Error
}

func (r *PodcastRepository) CreateEpisode(episode *model.PodcastEpisode) error {
	return r.DB.Create(episode).Error
}

// GetEpisodeByID returns (nil, nil) when absent.
func (r *PodcastRepository) GetEpisodeByID(id int64) (*model.PodcastEpisode, error) {
	var episode model.PodcastEpisode
	if err := r.DB.First(&episode, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &episode, nil
}

// ListEpisodes returns a show's episodes, newest first.
func (r *PodcastRepository) ListEpisodes(showID int64) ([]model.PodcastEpisode, error) {
	var episodes []model.PodcastEpisode
	err := r.DB.Where("show_id = ?", showID).
		Order("published_at DESC").
		Find(&episodes).Error
	return episodes, err
}

func (r *PodcastRepository) DeleteEpisode(id int64) error {
	return r.DB.Delete(&model.PodcastEpisode{}, id).Error
}

// AllFileURLs returns every episode audio URL and show cover URL. Consumed
// by the orphan sweep.
func (r *PodcastRepository) AllFileURLs() ([]string, error) {
	var urls []string

	var episodeURLs []string
	if err := r.DB.Model(&model.PodcastEpisode{}).Pluck("audio_url", &episodeURLs).Error; err != nil {
		return nil, err
	}
	var coverURLs []string
	if err := r.DB.Model(&model.PodcastShow{}).Pluck("cover_url", &coverURLs).Error; err != nil {
		return nil, err
	}

	for _, u := range append(episodeURLs, coverURLs...) {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
