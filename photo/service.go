package photo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/emberdating/ember/cloudinary"
	"github.com/emberdating/ember/database"
	"github.com/samber/lo"
)

var (
	// ErrUnauthorized is returned when a user tries to add a photo to a
	// profile that is not their own.
	ErrUnauthorized = errors.New("not allowed to modify this profile")
	// ErrUploadFailed is returned when the image host does not return a
	// usable reference.
	ErrUploadFailed = errors.New("image upload failed")
)

// Store is the subset of database operations the photo service needs.
type Store interface {
	GetUserByID(ctx context.Context, id uint) (*database.User, error)
	CreatePhoto(ctx context.Context, photo *database.Photo) error
}

// Uploader sends an image to the external host and returns its reference.
type Uploader interface {
	UploadImage(ctx context.Context, filename string, file io.Reader) (*cloudinary.UploadResult, error)
}

// Service associates uploaded photos with user profiles.
type Service struct {
	store    Store
	uploader Uploader
}

// New creates a new photo service.
func New(store Store, uploader Uploader) *Service {
	return &Service{store: store, uploader: uploader}
}

// AddPhoto uploads an image to the external host and records the returned
// reference against the user. The requesting user must be the profile owner.
// The first photo of a user is flagged as the main photo.
func (s *Service) AddPhoto(ctx context.Context, userID, requestingUserID uint, filename string, file io.Reader, size int64) (*database.Photo, error) {
	if userID != requestingUserID {
		return nil, ErrUnauthorized
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if size <= 0 {
		return nil, fmt.Errorf("%w: empty image payload", ErrUploadFailed)
	}

	result, err := s.uploader.UploadImage(ctx, filename, file)
	if err != nil {
		log.Error("image upload failed", "user", user.Username, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrUploadFailed, err)
	}
	if result.SecureURL == "" || result.PublicID == "" {
		return nil, fmt.Errorf("%w: incomplete upload result", ErrUploadFailed)
	}

	photo := &database.Photo{
		UserID:   user.ID,
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		IsMain:   !lo.SomeBy(user.Photos, func(p database.Photo) bool { return p.IsMain }),
	}
	if err := s.store.CreatePhoto(ctx, photo); err != nil {
		return nil, err
	}

	log.Debug("photo added", "user", user.Username, "photo", photo.ID, "main", photo.IsMain)
	return photo, nil
}
