package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobaggregator/internal/user"
)

const userColumns = `id, username, email, password, telegram_id, active_resume_id, created_at`

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Create сохраняет пользователя; пустые email и пароль пишутся как NULL
func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (username, email, password, telegram_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		u.Username, nullString(u.Email), nullString(u.Password), nullInt64(u.TelegramID), u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *PostgresUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresUserRepository) SetActiveResume(ctx context.Context, id int64, resumeID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET active_resume_id = $1 WHERE id = $2`, resumeID, id)
	if err != nil {
		return fmt.Errorf("failed to set active resume: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	u := &user.User{}
	var (
		email, password, activeResume sql.NullString
		telegramID                    sql.NullInt64
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&email,
		&password,
		&telegramID,
		&activeResume,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Email = email.String
	u.Password = password.String
	if telegramID.Valid {
		u.TelegramID = &telegramID.Int64
	}
	if activeResume.Valid {
		u.ActiveResumeID = &activeResume.String
	}
	return u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}
