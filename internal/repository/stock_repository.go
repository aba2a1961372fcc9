package repository

import (
	"context"

	"github.com/luisale89/storage-manager-sub000/internal/models"
)

// StockRepository maintains per-container stock levels and the movement
// journal behind them.
type StockRepository struct {
	db Querier
}

func NewStockRepository(db Querier) *StockRepository {
	return &StockRepository{db: db}
}

func (r *StockRepository) InsertMovement(ctx context.Context, movement models.Movement) error {
	const query = `
		INSERT INTO movements (id, company_id, item_id, container_id, kind, group_id, quantity, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	_, err := r.db.Exec(ctx, query,
		movement.ID,
		movement.CompanyID,
		movement.ItemID,
		movement.ContainerID,
		movement.Kind,
		movement.GroupID,
		movement.Quantity,
		movement.Notes,
		movement.CreatedBy,
	)
	return mapWriteError(err)
}

// AddStock raises the level for (item, container), creating the row on first
// entry. The container must belong to the company or nothing is written.
func (r *StockRepository) AddStock(ctx context.Context, itemID, containerID, companyID string, quantity float64) error {
	const query = `
		INSERT INTO stock_levels (item_id, container_id, quantity, updated_at)
		SELECT i.id, c.id, $3, NOW()
		FROM items i,
		     containers c JOIN storages s ON s.id = c.storage_id
		WHERE i.id = $1 AND i.company_id = $4
		  AND c.id = $2 AND s.company_id = $4
		ON CONFLICT (item_id, container_id)
		DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = NOW()
	`
	cmd, err := r.db.Exec(ctx, query, itemID, containerID, quantity, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrContainerNotFound
	}
	return nil
}

// RemoveStock lowers the level, refusing to go negative. The item and the
// container are resolved within the company first, so an absent or foreign
// id reads as not found rather than as an empty stock level.
func (r *StockRepository) RemoveStock(ctx context.Context, itemID, containerID, companyID string, quantity float64) error {
	const check = `
		SELECT
			EXISTS (SELECT 1 FROM items i WHERE i.id = $1 AND i.company_id = $3),
			EXISTS (
				SELECT 1 FROM containers c
				JOIN storages s ON s.id = c.storage_id
				WHERE c.id = $2 AND s.company_id = $3
			)
	`
	var itemOK, containerOK bool
	if err := r.db.QueryRow(ctx, check, itemID, containerID, companyID).Scan(&itemOK, &containerOK); err != nil {
		return err
	}
	if !itemOK {
		return ErrItemNotFound
	}
	if !containerOK {
		return ErrContainerNotFound
	}

	const query = `
		UPDATE stock_levels sl
		SET quantity = sl.quantity - $3, updated_at = NOW()
		WHERE sl.item_id = $1 AND sl.container_id = $2
		  AND sl.quantity >= $3
	`
	cmd, err := r.db.Exec(ctx, query, itemID, containerID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// The pair exists in the company but holds too little, or nothing
		// was ever stocked there. Both are a shortfall.
		return ErrInsufficientStock
	}
	return nil
}

func (r *StockRepository) ListMovements(ctx context.Context, companyID string, limit, offset int) ([]models.Movement, error) {
	const query = `
		SELECT id, company_id, item_id, container_id, kind, group_id, quantity, notes, created_by, created_at
		FROM movements
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []models.Movement
	for rows.Next() {
		var movement models.Movement
		if err := rows.Scan(
			&movement.ID,
			&movement.CompanyID,
			&movement.ItemID,
			&movement.ContainerID,
			&movement.Kind,
			&movement.GroupID,
			&movement.Quantity,
			&movement.Notes,
			&movement.CreatedBy,
			&movement.CreatedAt,
		); err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	return movements, rows.Err()
}

func (r *StockRepository) ListStock(ctx context.Context, companyID string, storageID *string, limit, offset int) ([]models.StockLevel, error) {
	const query = `
		SELECT sl.item_id, sl.container_id, c.storage_id, sl.quantity, sl.updated_at
		FROM stock_levels sl
		JOIN containers c ON c.id = sl.container_id
		JOIN storages s ON s.id = c.storage_id
		WHERE s.company_id = $1 AND ($2::text IS NULL OR c.storage_id = $2)
		ORDER BY sl.updated_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, companyID, storageID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []models.StockLevel
	for rows.Next() {
		var level models.StockLevel
		if err := rows.Scan(
			&level.ItemID,
			&level.ContainerID,
			&level.StorageID,
			&level.Quantity,
			&level.UpdatedAt,
		); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}
