package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

var userFields = []string{
	"id", "username", "password_hash", "first_name", "last_name", "middle_name",
	"email", "role", "is_staff", "created_at", "updated_at",
}

// userColumns selects the user columns of the given table alias. With a non-empty
// prefix each column is aliased "prefix.column" so sqlx scans it into a nested struct.
func userColumns(alias, prefix string) string {
	cols := make([]string, len(userFields))
	for i, f := range userFields {
		if prefix == "" {
			cols[i] = alias + "." + f
		} else {
			cols[i] = fmt.Sprintf(`%s.%s AS "%s.%s"`, alias, f, prefix, f)
		}
	}
	return strings.Join(cols, ", ")
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns("u", "") + ` FROM users u WHERE u.username = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", mapError(err, "user"))
	}
	return &user, nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns("u", "") + ` FROM users u WHERE u.id = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", mapError(err, "user"))
	}
	return &user, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func insertUser(ctx context.Context, tx *sqlx.Tx, user *model.User) error {
	query := `
		INSERT INTO users (
			id, username, password_hash, first_name, last_name, middle_name,
			email, role, is_staff, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := tx.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.MiddleName,
		user.Email,
		user.Role,
		user.IsStaff,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err, "user"))
	}
	return nil
}

func updateUser(ctx context.Context, tx *sqlx.Tx, user *model.User) error {
	query := `
		UPDATE users
		SET username = $1, password_hash = $2, first_name = $3, last_name = $4,
			middle_name = $5, email = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := tx.ExecContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.MiddleName,
		user.Email,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapError(err, "user"))
	}
	return expectAffected(result, "user")
}
