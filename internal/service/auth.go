package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/db"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
)

type Auth struct {
	store     db.Store
	tokens    *Tokens
	validator *models.Validator
	logger    *zap.SugaredLogger
}

func NewAuth(store db.Store, tokens *Tokens, v *models.Validator, l *zap.SugaredLogger) *Auth {
	return &Auth{
		store:     store,
		tokens:    tokens,
		validator: v,
		logger:    l,
	}
}

// Signup stores a new user. No token is issued; the caller signs in next.
func (s *Auth) Signup(ctx context.Context, creds models.Credentials) error {
	if err := s.validator.Struct(&creds); err != nil {
		return err
	}

	hash, err := bcryptGen(creds.Password)
	if err != nil {
		return errors.Wrap(err, "bcryptGen")
	}

	user := models.User{
		Username:     creds.Username,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return ErrUsernameTaken
		}
		return err
	}
	s.logger.Infow("user signed up", "userId", user.ID)
	return nil
}

// Signin checks the credentials, makes sure the user has a profile mirroring
// their username and returns a signed token.
func (s *Auth) Signin(ctx context.Context, creds models.Credentials) (string, error) {
	if err := s.validator.Struct(&creds); err != nil {
		return "", err
	}

	user, err := s.store.FindUserByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcryptCheck(user.PasswordHash, creds.Password); err != nil {
		return "", ErrInvalidCredentials
	}

	if _, err := s.store.UpsertProfile(ctx, user.ID, user.Username, models.ProfilePatch{}); err != nil {
		return "", errors.Wrap(err, "sync profile")
	}

	return s.tokens.Issue(user.ID)
}

func (s *Auth) Verify(token string) (string, error) {
	return s.tokens.Verify(token)
}
