package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/luisale89/storage-manager-sub000/internal/models"
)

var ErrItemNotFound = errors.New("item not found")

type ItemRepository struct {
	db Querier
}

func NewItemRepository(db Querier) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item models.Item) error {
	const query = `
		INSERT INTO items (id, company_id, category_id, name, sku, description, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		item.ID,
		item.CompanyID,
		item.CategoryID,
		item.Name,
		item.SKU,
		item.Description,
		item.UnitPrice,
	)
	return mapWriteError(err)
}

func (r *ItemRepository) GetByID(ctx context.Context, id, companyID string) (models.Item, error) {
	const query = `
		SELECT id, company_id, category_id, name, sku, description, unit_price, created_at, updated_at
		FROM items
		WHERE id = $1 AND company_id = $2
	`

	row := r.db.QueryRow(ctx, query, id, companyID)
	var item models.Item
	if err := row.Scan(
		&item.ID,
		&item.CompanyID,
		&item.CategoryID,
		&item.Name,
		&item.SKU,
		&item.Description,
		&item.UnitPrice,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Item{}, ErrItemNotFound
		}
		return models.Item{}, err
	}
	return item, nil
}

func (r *ItemRepository) List(ctx context.Context, companyID string, categoryID *string, limit, offset int) ([]models.Item, error) {
	const query = `
		SELECT id, company_id, category_id, name, sku, description, unit_price, created_at, updated_at
		FROM items
		WHERE company_id = $1 AND ($2::text IS NULL OR category_id = $2)
		ORDER BY name
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, companyID, categoryID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(
			&item.ID,
			&item.CompanyID,
			&item.CategoryID,
			&item.Name,
			&item.SKU,
			&item.Description,
			&item.UnitPrice,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ItemRepository) Update(ctx context.Context, item models.Item) error {
	const query = `
		UPDATE items
		SET category_id = $3, name = $4, sku = $5, description = $6, unit_price = $7, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`
	cmd, err := r.db.Exec(ctx, query,
		item.ID,
		item.CompanyID,
		item.CategoryID,
		item.Name,
		item.SKU,
		item.Description,
		item.UnitPrice,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id, companyID string) error {
	const query = `DELETE FROM items WHERE id = $1 AND company_id = $2`
	cmd, err := r.db.Exec(ctx, query, id, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// ReplaceAttributeValues swaps the full attribute set of an item. The item
// and every referenced attribute must belong to the company. The delete and
// the inserts must share a transaction, so callers go through
// TxStore.ReplaceItemAttributes rather than calling this on the pool.
func (r *ItemRepository) ReplaceAttributeValues(ctx context.Context, itemID, companyID string, values []models.AttributeValue) error {
	const del = `
		DELETE FROM attribute_values av
		USING items i
		WHERE av.item_id = $1 AND i.id = av.item_id AND i.company_id = $2
	`
	if _, err := r.db.Exec(ctx, del, itemID, companyID); err != nil {
		return err
	}

	const ins = `
		INSERT INTO attribute_values (id, item_id, attribute_id, value)
		SELECT $1, i.id, a.id, $4
		FROM items i, attributes a
		WHERE i.id = $2 AND i.company_id = $5
		  AND a.id = $3 AND a.company_id = $5
	`
	for _, v := range values {
		cmd, err := r.db.Exec(ctx, ins, v.ID, itemID, v.AttributeID, v.Value, companyID)
		if err != nil {
			return mapWriteError(err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrAttributeNotFound
		}
	}
	return nil
}

func (r *ItemRepository) ListAttributeValues(ctx context.Context, itemID, companyID string) ([]models.AttributeValue, error) {
	const query = `
		SELECT av.id, av.item_id, av.attribute_id, av.value
		FROM attribute_values av
		JOIN items i ON i.id = av.item_id
		WHERE av.item_id = $1 AND i.company_id = $2
	`

	rows, err := r.db.Query(ctx, query, itemID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []models.AttributeValue
	for rows.Next() {
		var v models.AttributeValue
		if err := rows.Scan(&v.ID, &v.ItemID, &v.AttributeID, &v.Value); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// DeleteOrphanedAttributeValues removes values whose item is gone. Best
// effort, run by the maintenance sweep.
func (r *ItemRepository) DeleteOrphanedAttributeValues(ctx context.Context) (int64, error) {
	const query = `
		DELETE FROM attribute_values av
		WHERE NOT EXISTS (SELECT 1 FROM items i WHERE i.id = av.item_id)
	`
	cmd, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
