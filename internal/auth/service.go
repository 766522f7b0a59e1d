// Package auth implements signup, login and the admin role operations on
// top of the user store and the password hasher.
package auth

import (
	"context"
	"errors"
	"fmt"

	"memberportal/web-service/internal/logging"
	"memberportal/web-service/internal/models"
	"memberportal/web-service/internal/store"
	"memberportal/web-service/internal/validate"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "memberportal/web-service/internal/auth"

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type SignupInput struct {
	Username string
	Password string
	Email    string
}

type Service struct {
	users  store.UserStore
	hasher PasswordHasher
	logger logging.Logger
	tracer trace.Tracer
	// decoy is verified against when the identifier is unknown so both
	// failure paths pay for one hash comparison.
	decoy string
}

func NewService(users store.UserStore, hasher PasswordHasher, logger logging.Logger) (*Service, error) {
	decoy, err := hasher.Hash("decoy-password")
	if err != nil {
		return nil, err
	}
	return &Service{
		users:  users,
		hasher: hasher,
		logger: logger,
		tracer: otel.Tracer(tracerName),
		decoy:  decoy,
	}, nil
}

// Signup validates the form, rejects taken usernames and emails, and stores
// a new user with the user role.
//
// The conflict check and the insert are separate round trips; the store's
// insert is the final authority on uniqueness.
func (s *Service) Signup(ctx context.Context, in SignupInput) (models.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Signup")
	defer span.End()

	user, err := s.register(ctx, span, in, models.RoleUser)
	if err != nil {
		return models.User{}, err
	}
	s.logger.Info(ctx, "user signed up", "username", user.Username)
	return user, nil
}

// register applies the signup rules and inserts the user with role in a
// single write.
func (s *Service) register(ctx context.Context, span trace.Span, in SignupInput, role models.Role) (models.User, error) {
	if err := validate.Signup(in.Username, in.Password, in.Email); err != nil {
		return models.User{}, err
	}

	existing, err := s.users.FindConflict(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		return models.User{}, store.ConflictError(existing, in.Username)
	case !errors.Is(err, store.ErrUserNotFound):
		return models.User{}, fail(span, fmt.Errorf("check duplicates: %w", err))
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, fail(span, err)
	}

	user, err := s.users.Insert(ctx, store.NewUser{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: digest,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) || errors.Is(err, store.ErrDuplicateEmail) {
			return models.User{}, err
		}
		return models.User{}, fail(span, err)
	}

	span.SetAttributes(attribute.String("user.id", user.UserID), attribute.String("user.role", string(role)))
	return user, nil
}

// Login resolves identifier (username or email) and verifies password.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, identifier, password string) (models.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	if err := validate.Login(identifier, password); err != nil {
		return models.User{}, err
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.hasher.Verify(password, s.decoy)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fail(span, fmt.Errorf("find user: %w", err))
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}

	span.SetAttributes(attribute.String("user.id", user.UserID))
	return user, nil
}

// CurrentRole reads the stored role of username.
func (s *Service) CurrentRole(ctx context.Context, username string) (models.Role, error) {
	user, err := s.users.FindByIdentifier(ctx, username)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	return s.users.ListAll(ctx)
}

func (s *Service) SetRole(ctx context.Context, username string, role models.Role) error {
	if err := s.users.SetRole(ctx, username, role); err != nil {
		return err
	}
	s.logger.Info(ctx, "role changed", "username", username, "role", string(role))
	return nil
}

// ToggleRole flips username between user and admin and returns the new role.
func (s *Service) ToggleRole(ctx context.Context, username string) (models.Role, error) {
	ctx, span := s.tracer.Start(ctx, "auth.ToggleRole")
	defer span.End()

	current, err := s.CurrentRole(ctx, username)
	if err != nil {
		return "", err
	}
	next := current.Toggled()
	if err := s.SetRole(ctx, username, next); err != nil {
		return "", err
	}
	return next, nil
}

// CreateUser stores a user with an explicit role, applying the signup rules.
func (s *Service) CreateUser(ctx context.Context, in SignupInput, role models.Role) (models.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.CreateUser")
	defer span.End()

	if !role.Valid() {
		return models.User{}, store.ErrInvalidRole
	}
	user, err := s.register(ctx, span, in, role)
	if err != nil {
		return models.User{}, err
	}
	s.logger.Info(ctx, "user created", "username", user.Username, "role", string(role))
	return user, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
