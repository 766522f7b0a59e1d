package postgres

import (
	"context"
	"errors"
	"fmt"

	"memberportal/web-service/internal/models"
	"memberportal/web-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	usernameUniqueIndex = "users_username_lower_idx"
	emailUniqueIndex    = "users_email_lower_idx"
	userColumns         = "user_id, username, email, password_hash, role, created_at"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) FindByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	column := "username"
	if store.IsEmailIdentifier(identifier) {
		column = "email"
	}
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(`+column+`) = lower($1)
	`, identifier)
	return scanUser(row)
}

func (s *UserStore) FindConflict(ctx context.Context, username, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(username) = lower($1) OR lower(email) = lower($2)
		ORDER BY (lower(username) = lower($1)) DESC
		LIMIT 1
	`, username, email)
	return scanUser(row)
}

func (s *UserStore) Insert(ctx context.Context, in store.NewUser) (models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return models.User{}, store.ErrInvalidRole
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Role:         role,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (user_id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, user.UserID, user.Username, user.Email, user.PasswordHash, string(user.Role)).Scan(&user.Created)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return models.User{}, dup
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *UserStore) ListAll(ctx context.Context) ([]models.UserSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT username, email, role
		FROM users
		ORDER BY lower(username)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var user models.UserSummary
		var role string
		if err := rows.Scan(&user.Username, &user.Email, &role); err != nil {
			return nil, err
		}
		user.Role = models.Role(role)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) SetRole(ctx context.Context, username string, role models.Role) error {
	if !role.Valid() {
		return store.ErrInvalidRole
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET role = $2
		WHERE lower(username) = lower($1)
	`, username, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var role string
	if err := row.Scan(&user.UserID, &user.Username, &user.Email, &user.PasswordHash, &role, &user.Created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, err
	}
	user.Role = models.Role(role)
	return user, nil
}

// duplicateError maps a unique-index violation to the store sentinel for
// the colliding field.
func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case usernameUniqueIndex:
		return store.ErrDuplicateUsername
	case emailUniqueIndex:
		return store.ErrDuplicateEmail
	default:
		return nil
	}
}
