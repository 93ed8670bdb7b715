package service

import (
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/db"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
)

const bcryptCost = 10

var (
	ErrUsernameTaken      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("invalid or expired token")
	// ErrResourceUnavailable covers both a missing resource and one owned by
	// somebody else; callers cannot tell the two apart.
	ErrResourceUnavailable = errors.New("resource unavailable")
)

var (
	Module = fx.Provide(
		models.NewValidator,
		NewTokens,
		NewAuth,
		NewContent,
		NewSharing,
		NewProfiles,
	)
)

func unavailable(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return ErrResourceUnavailable
	}
	return err
}

func bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}
