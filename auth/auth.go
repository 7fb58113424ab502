package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"
	"strings"

	"github.com/emberdating/ember/database"
	"gorm.io/gorm"
)

// saltSize is the number of random bytes used as the per-user hash key.
const saltSize = 128

// ErrUsernameTaken is returned when registering a username that already exists.
var ErrUsernameTaken = errors.New("username already exists")

// Store is the subset of database operations the authenticator needs.
type Store interface {
	CreateUser(ctx context.Context, user *database.User) error
	GetUserByUsername(ctx context.Context, username string) (*database.User, error)
	UserExists(ctx context.Context, username string) (bool, error)
}

// Authenticator creates and verifies user credentials.
type Authenticator struct {
	store Store
}

// New creates a new Authenticator backed by the given store.
func New(store Store) *Authenticator {
	return &Authenticator{store: store}
}

// Register creates a new user with a freshly generated salt and a keyed hash
// of the password. Usernames are case-normalized to lowercase. It returns
// ErrUsernameTaken if the username is already in use.
func (a *Authenticator) Register(ctx context.Context, username, password string) (*database.User, error) {
	username = strings.ToLower(username)

	exists, err := a.store.UserExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	user := &database.User{
		Username:     username,
		PasswordHash: hashPassword(password, salt),
		PasswordSalt: salt,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		// The unique index catches registrations that race past the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies the password for the given username and returns the user on
// success. It returns nil without an error on an unknown username or a wrong
// password, so callers cannot tell the two apart.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*database.User, error) {
	user, err := a.store.GetUserByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !hmac.Equal(hashPassword(password, user.PasswordSalt), user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}

// UserExists reports whether the username is already registered, ignoring case.
func (a *Authenticator) UserExists(ctx context.Context, username string) (bool, error) {
	return a.store.UserExists(ctx, strings.ToLower(username))
}

// hashPassword computes an HMAC-SHA-512 over the password, keyed by the salt.
func hashPassword(password string, salt []byte) []byte {
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
