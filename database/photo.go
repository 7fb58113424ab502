package database

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// ErrNoRowsAffected is returned when a write completes without touching any row.
var ErrNoRowsAffected = errors.New("no rows affected")

// CreatePhoto inserts a new photo record for a user.
func (c *Client) CreatePhoto(ctx context.Context, photo *Photo) error {
	res := c.db.WithContext(ctx).Create(photo)
	if res.Error != nil {
		log.Error("failed to create photo", "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// GetPhoto returns the photo with the given id.
func (c *Client) GetPhoto(ctx context.Context, id uint) (*Photo, error) {
	var photo Photo
	if err := c.db.WithContext(ctx).First(&photo, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get photo", "error", err)
		}
		return nil, err
	}
	return &photo, nil
}
