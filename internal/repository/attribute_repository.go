package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/luisale89/storage-manager-sub000/internal/models"
)

var ErrAttributeNotFound = errors.New("attribute not found")

type AttributeRepository struct {
	db Querier
}

func NewAttributeRepository(db Querier) *AttributeRepository {
	return &AttributeRepository{db: db}
}

func (r *AttributeRepository) Create(ctx context.Context, attribute models.Attribute) error {
	const query = `
		INSERT INTO attributes (id, company_id, name, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.db.Exec(ctx, query, attribute.ID, attribute.CompanyID, attribute.Name)
	return mapWriteError(err)
}

func (r *AttributeRepository) GetByID(ctx context.Context, id, companyID string) (models.Attribute, error) {
	const query = `
		SELECT id, company_id, name, created_at
		FROM attributes
		WHERE id = $1 AND company_id = $2
	`

	row := r.db.QueryRow(ctx, query, id, companyID)
	var attribute models.Attribute
	if err := row.Scan(&attribute.ID, &attribute.CompanyID, &attribute.Name, &attribute.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Attribute{}, ErrAttributeNotFound
		}
		return models.Attribute{}, err
	}
	return attribute, nil
}

func (r *AttributeRepository) List(ctx context.Context, companyID string, limit, offset int) ([]models.Attribute, error) {
	const query = `
		SELECT id, company_id, name, created_at
		FROM attributes
		WHERE company_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attributes []models.Attribute
	for rows.Next() {
		var attribute models.Attribute
		if err := rows.Scan(&attribute.ID, &attribute.CompanyID, &attribute.Name, &attribute.CreatedAt); err != nil {
			return nil, err
		}
		attributes = append(attributes, attribute)
	}
	return attributes, rows.Err()
}

func (r *AttributeRepository) Update(ctx context.Context, attribute models.Attribute) error {
	const query = `
		UPDATE attributes SET name = $3 WHERE id = $1 AND company_id = $2
	`
	cmd, err := r.db.Exec(ctx, query, attribute.ID, attribute.CompanyID, attribute.Name)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrAttributeNotFound
	}
	return nil
}

func (r *AttributeRepository) Delete(ctx context.Context, id, companyID string) error {
	const query = `DELETE FROM attributes WHERE id = $1 AND company_id = $2`
	cmd, err := r.db.Exec(ctx, query, id, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAttributeNotFound
	}
	return nil
}
