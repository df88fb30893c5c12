package auth

import (
	"errors"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLen = 8

var ErrWeakPassword = errors.New("password must be at least 8 characters")

func ValidatePassword(p string) error {
	if utf8.RuneCountInString(p) < MinPasswordLen {
		return ErrWeakPassword
	}
	return nil
}

func HashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(b), err
}

func VerifyPassword(plain, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// timingHash is a real hash at the default cost, minted on first use.
var timingHash = sync.OnceValue(func() []byte {
	b, err := bcrypt.GenerateFromPassword([]byte("jobcard-timing-only"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return b
})

// BurnCompare costs as much as a failed VerifyPassword; used when there is no user to check.
func BurnCompare(plain string) {
	_ = bcrypt.CompareHashAndPassword(timingHash(), []byte(plain))
}
