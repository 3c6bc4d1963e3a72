package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
)

type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Initials     string    `json:"initials" db:"initials"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// CreateUserRequest represents the request to create a new user
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Initials string `json:"initials"`
}

func (r *CreateUserRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrUsernameRequired
	}
	if r.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// DeriveInitials builds up to two upper-case initials from a username.
func DeriveInitials(username string) string {
	fields := strings.FieldsFunc(username, func(r rune) bool {
		return r == ' ' || r == '.' || r == '_' || r == '-'
	})
	var b strings.Builder
	for _, f := range fields {
		if b.Len() >= 2 {
			break
		}
		b.WriteString(strings.ToUpper(f[:1]))
	}
	return b.String()
}
