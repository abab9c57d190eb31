package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wuyan/lifescope/internal/auth"
	"github.com/wuyan/lifescope/internal/domain"
	"github.com/wuyan/lifescope/internal/events"
	"github.com/wuyan/lifescope/internal/repository"
	apperrors "github.com/wuyan/lifescope/pkg/util"
)

// User-facing business rule messages.
const (
	MsgUsernameTaken = "username already exists"
	MsgEmailTaken    = "email already exists"
	MsgUserNotFound  = "user not found"
	MsgWrongPassword = "wrong password"
)

// ProfileReader loads public user profiles.
type ProfileReader interface {
	FindProfile(ctx context.Context, id int64) (*domain.User, error)
}

// AuthResult is what a successful register or login hands back.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	profiles   ProfileReader
	tokens     *auth.TokenCodec
	hasher     *auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Profiles   ProfileReader
	Tokens     *auth.TokenCodec
	Hasher     *auth.PasswordHasher
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	profiles := deps.Profiles
	if profiles == nil {
		profiles = repositoryProfiles{deps.UserRepo}
	}
	return &AuthService{
		users:      deps.UserRepo,
		profiles:   profiles,
		tokens:     deps.Tokens,
		hasher:     deps.Hasher,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Register creates a new account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, apperrors.NewBadRequest(MsgUsernameTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewBadRequest(MsgEmailTaken)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if _, err := s.users.Insert(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, apperrors.NewBadRequest(MsgUsernameTaken)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apperrors.NewBadRequest(MsgEmailTaken)
		}
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventUserRegistered, user.ID, events.UserPayload{Username: user.Username}))
	return result, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewBadRequest(MsgUserNotFound)
		}
		return nil, err
	}
	if !s.hasher.Matches(ctx, password, user.PasswordHash) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.NewBadRequest(MsgWrongPassword)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventUserLoggedIn, user.ID, events.UserPayload{Username: user.Username}))
	return result, nil
}

// Profile returns the public profile of the given user.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.profiles.FindProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewBadRequest(MsgUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// repositoryProfiles reads profiles straight from the store when no cache is wired.
type repositoryProfiles struct {
	users repository.UserRepository
}

func (r repositoryProfiles) FindProfile(ctx context.Context, id int64) (*domain.User, error) {
	user, err := r.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := *user
	profile.PasswordHash = ""
	return &profile, nil
}
