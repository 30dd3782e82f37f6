// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
)

const MaxUserIDLen = 36

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
)

// UserID is the authenticated principal. Verification happens in front of
// the adapters (auth guard); this core only validates shape.
type UserID string

func ParseUserID(raw string) (UserID, error) {
	if len(raw) == 0 {
		return "", ErrUserIDEmpty
	}
	if len(raw) > MaxUserIDLen {
		return "", ErrUserIDTooLong
	}
	return UserID(raw), nil
}

func (u UserID) String() string { return string(u) }
