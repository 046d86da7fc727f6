package state

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when a user was never registered.
var ErrUserNotFound = errors.New("user not found")

// Profile is what the bot remembers about a Telegram user.
type Profile struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	Lang         string
	State        string
	LastActivity time.Time
}

// Store keeps the current status of every user.
type Store interface {
	// Register creates the user with initial state when missing, otherwise returns
	// the stored profile with LastActivity refreshed.
	Register(ctx context.Context, p Profile, initial string) (Profile, error)
	// State returns the current status of the user.
	State(ctx context.Context, userID int64) (string, error)
	// SetState stores a new status for the user.
	SetState(ctx context.Context, userID int64, status string) error
	// SetLang stores the preferred language of the user.
	SetLang(ctx context.Context, userID int64, lang string) error
}
