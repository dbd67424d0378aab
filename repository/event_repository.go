package repository

import (
	"errors"
	"time"

	"KaraFM/db"
	"KaraFM/model"

	"gorm.io/gorm"
)

// EventRepository manages concert listings. GORM-backed like the other
// newer modules.
type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository() *EventRepository {
	return &EventRepository{DB: db.GormDB}
}

func (r *EventRepository) Create(event *model.Event) error {
	return r.DB.Create(event).Error
}

// GetByID returns (nil, nil) when the event does not exist.
func (r *EventRepository) GetByID(id int64) (*model.Event, error) {
	var event model.Event
	if err := r.DB.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// ListUpcoming returns events starting after now, soonest first.
func (r *EventRepository) ListUpcoming(limit int) ([]model.Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var events []model.Event
	err := r.DB.Where("starts_at > ?", time.Now()).
		Order("starts_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// ListByArtist returns all events for one artist, soonest first.
func (r *EventRepository) ListByArtist(artist string) ([]model.Event, error) {
	var events []model.Event
	err := r.DB.Where("artist = ?", artist).
		Order("starts_at ASC").
		Find(&events).Error
	return events, err
}

func (r *EventRepository) Update(event *model.Event) error {
	return r.DB.Save(event).Error
}

func (r *EventRepository) Delete(id int64) error {
	return r.DB.Delete(&model.Event{}, id).Error
}
