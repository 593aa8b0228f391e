package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"socialite/internal/domain/entity"
	"socialite/internal/domain/repository"
	"socialite/pkg/apperr"
	"socialite/pkg/helpers"
	"socialite/pkg/mailer"
	"socialite/pkg/validation"
)

// EmailEnqueuer queues transactional email jobs for the mail worker.
// *helpers.RabbitPublisher satisfies it; tests use in-memory fakes.
type EmailEnqueuer interface {
	PublishJSON(ctx context.Context, body any) error
}

// UserService implements registration and login. Uniqueness is enforced here
// against storage; input shape is checked by the pure validators first.
type UserService struct {
	Repo   repository.UserRepository
	Tokens *helpers.TokenManager
	Emails EmailEnqueuer  // optional
	Logger *logrus.Logger // optional
}

func NewUserService(repo repository.UserRepository, tokens *helpers.TokenManager, emails EmailEnqueuer, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, Tokens: tokens, Emails: emails, Logger: logger}
}

// AuthPayload is the result of a successful register or login: the user
// record plus a fresh session token.
type AuthPayload struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// Register validates input, enforces username uniqueness, hashes the
// password and persists the new user, returning it with a session token.
func (s *UserService) Register(ctx context.Context, username, email, password, confirmPassword string) (*AuthPayload, error) {
	if valid, details := validation.ValidateRegisterInput(username, email, password, confirmPassword); !valid {
		return nil, apperr.WithDetails(apperr.InvalidInput, "invalid registration input", details)
	}
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if _, err := s.Repo.GetByUsername(ctx, username); err == nil {
		return nil, apperr.WithDetails(apperr.Conflict, "username is taken", map[string]string{
			"username": "this username is taken",
		})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrap(err, "looking up username")
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(err, "hashing password")
	}

	u := &entity.User{Username: username, Email: email, Password: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		// Concurrent registration can still trip the unique constraint.
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperr.WithDetails(apperr.Conflict, "username is taken", map[string]string{
				"username": "this username is taken",
			})
		}
		return nil, apperr.Wrap(err, "creating user")
	}

	token, exp, err := s.Tokens.Generate(u.ID, u.Username, u.Email)
	if err != nil {
		return nil, apperr.Wrap(err, "issuing token")
	}

	s.enqueueWelcomeEmail(ctx, u)

	return &AuthPayload{User: u, Token: token, ExpiresAt: exp}, nil
}

// Login verifies credentials and issues a fresh session token on every call.
func (s *UserService) Login(ctx context.Context, username, password string) (*AuthPayload, error) {
	if valid, details := validation.ValidateLoginInput(username, password); !valid {
		return nil, apperr.WithDetails(apperr.InvalidInput, "invalid login input", details)
	}
	username = strings.TrimSpace(username)

	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap(err, "looking up user")
	}

	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, apperr.New(apperr.Unauthenticated, "wrong credentials")
	}

	token, exp, err := s.Tokens.Generate(u.ID, u.Username, u.Email)
	if err != nil {
		return nil, apperr.Wrap(err, "issuing token")
	}
	return &AuthPayload{User: u, Token: token, ExpiresAt: exp}, nil
}

// enqueueWelcomeEmail is best-effort: a queue failure never fails
// registration.
func (s *UserService) enqueueWelcomeEmail(ctx context.Context, u *entity.User) {
	if s.Emails == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: "welcome",
		Data:     map[string]any{"Username": u.Username},
	}
	if err := s.Emails.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email enqueue failed")
	}
}
