package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/luisale89/storage-manager-sub000/internal/models"
)

var ErrCompanyNotFound = errors.New("company not found")

type CompanyRepository struct {
	db Querier
}

func NewCompanyRepository(db Querier) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, company models.Company) error {
	const query = `
		INSERT INTO companies (id, name, address, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, company.ID, company.Name, company.Address, company.Currency)
	return mapWriteError(err)
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (models.Company, error) {
	const query = `
		SELECT id, name, address, currency, created_at, updated_at
		FROM companies WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, id)
	var company models.Company
	if err := row.Scan(
		&company.ID,
		&company.Name,
		&company.Address,
		&company.Currency,
		&company.CreatedAt,
		&company.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Company{}, ErrCompanyNotFound
		}
		return models.Company{}, err
	}
	return company, nil
}

func (r *CompanyRepository) Update(ctx context.Context, company models.Company) error {
	const query = `
		UPDATE companies
		SET name = $2, address = $3, currency = $4, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, company.ID, company.Name, company.Address, company.Currency)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepository) List(ctx context.Context, limit, offset int) ([]models.Company, error) {
	const query = `
		SELECT id, name, address, currency, created_at, updated_at
		FROM companies
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var company models.Company
		if err := rows.Scan(
			&company.ID,
			&company.Name,
			&company.Address,
			&company.Currency,
			&company.CreatedAt,
			&company.UpdatedAt,
		); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}
