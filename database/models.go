package database

import "gorm.io/gorm"

// User represents a registered user in the database.
// The username is stored lowercase and protected by a unique index, so a
// duplicate registration always fails at the storage layer even if two
// requests race past the existence pre-check.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash []byte `gorm:"not null"`
	PasswordSalt []byte `gorm:"not null"`
	Photos       []Photo
}

// Photo represents a profile photo stored at the external image host.
// URL and PublicID reference the hosted image; a photo row only exists after
// a successful upload.
type Photo struct {
	gorm.Model
	UserID   uint   `gorm:"index;not null"`
	URL      string `gorm:"not null"`
	PublicID string `gorm:"not null"`
	IsMain   bool
}
