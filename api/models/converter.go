package models

import (
	"github.com/emberdating/ember/database"
	"github.com/samber/lo"
)

// ToUserForList converts a database.User to its compact representation.
// The photo URL is taken from the user's main photo, if any.
func ToUserForList(u *database.User) UserForList {
	item := UserForList{
		ID:       u.ID,
		Username: u.Username,
	}

	if main, ok := lo.Find(u.Photos, func(p database.Photo) bool { return p.IsMain }); ok {
		item.PhotoURL = main.URL
	}

	return item
}

// ToUserForDetail converts a database.User to its full representation.
// This excludes the credential fields, which never leave the server.
func ToUserForDetail(u *database.User) UserForDetail {
	return UserForDetail{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		Photos:    ToPhotosForReturn(u.Photos),
	}
}

// ToPhotoForReturn converts a database.Photo to its API representation.
func ToPhotoForReturn(p *database.Photo) PhotoForReturn {
	return PhotoForReturn{
		ID:      p.ID,
		URL:     p.URL,
		IsMain:  p.IsMain,
		AddedAt: p.CreatedAt,
	}
}

// ToPhotosForReturn converts a slice of database.Photo to API representations.
func ToPhotosForReturn(photos []database.Photo) []PhotoForReturn {
	result := make([]PhotoForReturn, len(photos))
	for i, p := range photos {
		result[i] = ToPhotoForReturn(&p)
	}
	return result
}
