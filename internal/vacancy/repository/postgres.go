package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"jobaggregator/internal/vacancy"
)

const vacancyColumns = `id, title, company, location, url, source, external_id, created_at`

type PostgresVacancyRepository struct {
	DB *sqlx.DB
}

func NewPostgresVacancyRepository(db *sqlx.DB) *PostgresVacancyRepository {
	return &PostgresVacancyRepository{DB: db}
}

func (r *PostgresVacancyRepository) Create(ctx context.Context, v *vacancy.Vacancy) error {
	query := `
		INSERT INTO vacancies (title, company, location, url, source, external_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.DB.QueryRowxContext(ctx, query,
		v.Title, v.Company, v.Location, v.URL, v.Source, v.ExternalID, v.CreatedAt,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("failed to create vacancy: %w", err)
	}
	return nil
}

// UpsertExternal сохраняет вакансию из внешнего источника; повтор по external_id
// пропускается. Возвращает true, если строка добавлена.
func (r *PostgresVacancyRepository) UpsertExternal(ctx context.Context, v *vacancy.Vacancy) (bool, error) {
	query := `
		INSERT INTO vacancies (title, company, location, url, source, external_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (external_id) DO NOTHING`

	res, err := r.DB.ExecContext(ctx, query,
		v.Title, v.Company, v.Location, v.URL, v.Source, v.ExternalID, v.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to upsert vacancy: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresVacancyRepository) GetByID(ctx context.Context, id int64) (*vacancy.Vacancy, error) {
	v := &vacancy.Vacancy{}
	err := r.DB.GetContext(ctx, v, `SELECT `+vacancyColumns+` FROM vacancies WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vacancy.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vacancy: %w", err)
	}
	return v, nil
}

func (r *PostgresVacancyRepository) List(ctx context.Context, offset, limit int) ([]*vacancy.Vacancy, error) {
	vacancies := []*vacancy.Vacancy{}
	err := r.DB.SelectContext(ctx, &vacancies,
		`SELECT `+vacancyColumns+` FROM vacancies ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacancies: %w", err)
	}
	return vacancies, nil
}

func (r *PostgresVacancyRepository) Update(ctx context.Context, id int64, u vacancy.Update) error {
	var (
		sets []string
		args []interface{}
	)
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("title", u.Title)
	add("company", u.Company)
	add("location", u.Location)
	add("url", u.URL)

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE vacancies SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update vacancy: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresVacancyRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM vacancies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vacancy: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return vacancy.ErrNotFound
	}
	return nil
}
