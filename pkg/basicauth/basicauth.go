package basicauth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	// SaltLength is the length of the salt used to derive password keys.
	SaltLength = 32
)

var (
	ErrEmptyUsername = errors.New("username must not be empty")
)

// SaltGenerator generates a crypto-secure random salt.
func SaltGenerator(length int) ([]byte, error) {
	salt := make([]byte, length)

	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	return salt, nil
}

// DerivePasswordKey calculates the key based on password and salt.
func DerivePasswordKey(password []byte, salt []byte) ([]byte, error) {
	return scrypt.Key(password, salt, 1<<15, 8, 1, 32)
}

// VerifyPassword verifies if the password is correct.
func VerifyPassword(password []byte, salt []byte, storedPasswordKey []byte) (bool, error) {

	dk, err := DerivePasswordKey(password, salt)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(dk, storedPasswordKey) == 1, nil
}

// BasicAuth guards an endpoint with a single username and a scrypt password key.
type BasicAuth struct {
	username     string
	passwordHash []byte
	passwordSalt []byte
}

// NewBasicAuth creates a BasicAuth from hex encoded hash and salt values.
func NewBasicAuth(username string, passwordHashHex string, passwordSaltHex string) (*BasicAuth, error) {
	if len(username) == 0 {
		return nil, ErrEmptyUsername
	}

	if len(passwordHashHex) != 64 {
		return nil, errors.New("password hash must be 64 (hex encoded scrypt hash) in length")
	}

	if len(passwordSaltHex) != 2*SaltLength {
		return nil, errors.Errorf("password salt must be %d (hex encoded) in length", 2*SaltLength)
	}

	passwordHash, err := hex.DecodeString(passwordHashHex)
	if err != nil {
		return nil, errors.New("password hash must be hex encoded")
	}

	passwordSalt, err := hex.DecodeString(passwordSaltHex)
	if err != nil {
		return nil, errors.New("password salt must be hex encoded")
	}

	return &BasicAuth{
		username:     username,
		passwordHash: passwordHash,
		passwordSalt: passwordSalt,
	}, nil
}

func (b *BasicAuth) VerifyUsernameAndPassword(username string, password string) bool {
	if username != b.username {
		return false
	}

	// error is ignored because it returns false in case it can't be derived
	valid, _ := VerifyPassword([]byte(password), b.passwordSalt, b.passwordHash)
	return valid
}

// Middleware returns an echo middleware that rejects requests without valid credentials.
func (b *BasicAuth) Middleware(realm string) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: realm,
		Validator: func(username string, password string, _ echo.Context) (bool, error) {
			return b.VerifyUsernameAndPassword(username, password), nil
		},
	})
}
