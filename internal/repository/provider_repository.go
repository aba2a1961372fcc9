package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/luisale89/storage-manager-sub000/internal/models"
)

var ErrProviderNotFound = errors.New("provider not found")

type ProviderRepository struct {
	db Querier
}

func NewProviderRepository(db Querier) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) Create(ctx context.Context, provider models.Provider) error {
	const query = `
		INSERT INTO providers (id, company_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		provider.ID,
		provider.CompanyID,
		provider.Name,
		provider.Email,
		provider.Phone,
	)
	return mapWriteError(err)
}

func (r *ProviderRepository) GetByID(ctx context.Context, id, companyID string) (models.Provider, error) {
	const query = `
		SELECT id, company_id, name, email, phone, created_at, updated_at
		FROM providers
		WHERE id = $1 AND company_id = $2
	`

	row := r.db.QueryRow(ctx, query, id, companyID)
	var provider models.Provider
	if err := row.Scan(
		&provider.ID,
		&provider.CompanyID,
		&provider.Name,
		&provider.Email,
		&provider.Phone,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Provider{}, ErrProviderNotFound
		}
		return models.Provider{}, err
	}
	return provider, nil
}

func (r *ProviderRepository) List(ctx context.Context, companyID string, limit, offset int) ([]models.Provider, error) {
	const query = `
		SELECT id, company_id, name, email, phone, created_at, updated_at
		FROM providers
		WHERE company_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []models.Provider
	for rows.Next() {
		var provider models.Provider
		if err := rows.Scan(
			&provider.ID,
			&provider.CompanyID,
			&provider.Name,
			&provider.Email,
			&provider.Phone,
			&provider.CreatedAt,
			&provider.UpdatedAt,
		); err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}
	return providers, rows.Err()
}

func (r *ProviderRepository) Update(ctx context.Context, provider models.Provider) error {
	const query = `
		UPDATE providers
		SET name = $3, email = $4, phone = $5, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`
	cmd, err := r.db.Exec(ctx, query,
		provider.ID,
		provider.CompanyID,
		provider.Name,
		provider.Email,
		provider.Phone,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProviderNotFound
	}
	return nil
}

func (r *ProviderRepository) Delete(ctx context.Context, id, companyID string) error {
	const query = `DELETE FROM providers WHERE id = $1 AND company_id = $2`
	cmd, err := r.db.Exec(ctx, query, id, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProviderNotFound
	}
	return nil
}
