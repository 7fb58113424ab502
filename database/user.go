package database

import (
	"context"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// CreateUser inserts a new user record.
func (c *Client) CreateUser(ctx context.Context, user *User) error {
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		if err != gorm.ErrDuplicatedKey {
			log.Error("failed to create user", "error", err)
		}
		return err
	}
	return nil
}

// GetUserByUsername returns the user with the given (lowercase) username,
// including their photos.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Preload("Photos").Where("username = ?", username).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by username", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID returns the user with the given id, including their photos.
func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Preload("Photos").First(&user, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by id", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether a user with the given (lowercase) username exists.
func (c *Client) UserExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		log.Error("failed to check user existence", "error", err)
		return false, err
	}
	return count > 0, nil
}
