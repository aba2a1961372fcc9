package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/luisale89/storage-manager-sub000/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, email, password_hash, display_name, phone,
	email_confirmed, signup_completed, super_user, created_at, updated_at
`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Phone,
		&user.EmailConfirmed,
		&user.SignupCompleted,
		&user.SuperUser,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, display_name, phone,
			email_confirmed, signup_completed, super_user, created_at, updated_at
		) VALUES (
			$1, lower($2), $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.Phone,
		user.EmailConfirmed,
		user.SignupCompleted,
		user.SuperUser,
	)
	return mapWriteError(err)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, displayName string, phone *string) error {
	const query = `
		UPDATE users SET display_name = $2, phone = $3, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id, displayName, phone)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// MarkEmailConfirmed flips the confirmed flag after a successful
// verification-code check.
func (r *UserRepository) MarkEmailConfirmed(ctx context.Context, email string) error {
	const query = `
		UPDATE users SET email_confirmed = TRUE, updated_at = NOW() WHERE email = lower($1)
	`
	cmd, err := r.db.Exec(ctx, query, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CompleteSignup stores the chosen password and marks the account usable.
func (r *UserRepository) CompleteSignup(ctx context.Context, email string, passwordHash []byte, displayName string) error {
	const query = `
		UPDATE users
		SET password_hash = $2, display_name = $3, signup_completed = TRUE, updated_at = NOW()
		WHERE email = lower($1)
	`
	cmd, err := r.db.Exec(ctx, query, email, passwordHash, displayName)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, email string, passwordHash []byte) error {
	const query = `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE email = lower($1)
	`
	cmd, err := r.db.Exec(ctx, query, email, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateFlags is the super-user switch for account liveness.
func (r *UserRepository) UpdateFlags(ctx context.Context, id string, emailConfirmed, signupCompleted bool) error {
	const query = `
		UPDATE users
		SET email_confirmed = $2, signup_completed = $3, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id, emailConfirmed, signupCompleted)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteStaleUnverified prunes accounts that never confirmed their email
// within the cutoff window. Used by the maintenance sweep.
func (r *UserRepository) DeleteStaleUnverified(ctx context.Context, olderThanDays int) (int64, error) {
	const query = `
		DELETE FROM users
		WHERE email_confirmed = FALSE
		  AND created_at < NOW() - make_interval(days => $1)
	`
	cmd, err := r.db.Exec(ctx, query, olderThanDays)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
