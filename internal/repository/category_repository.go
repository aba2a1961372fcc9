package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/luisale89/storage-manager-sub000/internal/models"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository struct {
	db Querier
}

func NewCategoryRepository(db Querier) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category models.Category) error {
	const query = `
		INSERT INTO categories (id, company_id, parent_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.CompanyID, category.ParentID, category.Name)
	return mapWriteError(err)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id, companyID string) (models.Category, error) {
	const query = `
		SELECT id, company_id, parent_id, name, created_at, updated_at
		FROM categories
		WHERE id = $1 AND company_id = $2
	`

	row := r.db.QueryRow(ctx, query, id, companyID)
	var category models.Category
	if err := row.Scan(
		&category.ID,
		&category.CompanyID,
		&category.ParentID,
		&category.Name,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Category{}, ErrCategoryNotFound
		}
		return models.Category{}, err
	}
	return category, nil
}

func (r *CategoryRepository) List(ctx context.Context, companyID string, limit, offset int) ([]models.Category, error) {
	const query = `
		SELECT id, company_id, parent_id, name, created_at, updated_at
		FROM categories
		WHERE company_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(
			&category.ID,
			&category.CompanyID,
			&category.ParentID,
			&category.Name,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, category models.Category) error {
	const query = `
		UPDATE categories
		SET parent_id = $3, name = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`
	cmd, err := r.db.Exec(ctx, query, category.ID, category.CompanyID, category.ParentID, category.Name)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id, companyID string) error {
	const query = `DELETE FROM categories WHERE id = $1 AND company_id = $2`
	cmd, err := r.db.Exec(ctx, query, id, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
