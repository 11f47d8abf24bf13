// Package authutil hashes and checks operator passwords.
package authutil

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores input past 72 bytes.
	MaxPasswordLength = 72
	BcryptCost        = 12
)

// Errors returned by ValidatePassword. The text is shown on the form as is.
var (
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters.")
	ErrPasswordTooLong  = errors.New("Password must be at most 72 bytes.")
	ErrPasswordCommon   = errors.New("That password is too easy to guess. Choose another.")
)

// Lowercased. Also rejects the stock temporary password so a forced change
// cannot keep it.
var weak = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, pw := range strings.Fields(`
		123456 1234567 12345678 123456789 111111 000000 123123 654321
		password password1 passw0rd qwerty qwerty123 abc123 abcdef
		letmein welcome admin login master iloveyou monkey dragon
		sunshine princess football baseball temp123 changeme
		stratareview youtube
	`) {
		m[pw] = struct{}{}
	}
	return m
}()

// PasswordRules is the hint printed under password fields.
func PasswordRules() string {
	return "At least 6 characters. Common passwords and the temporary password are not accepted."
}

// ValidatePassword returns nil or one of the ErrPassword errors.
func ValidatePassword(pw string) error {
	switch {
	case utf8.RuneCountInString(pw) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(pw) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	if _, ok := weak[strings.ToLower(pw)]; ok {
		return ErrPasswordCommon
	}
	return nil
}

// HashPassword returns the bcrypt hash stored on a profile.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash. A malformed hash never
// matches.
func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
