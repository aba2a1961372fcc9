package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/luisale89/storage-manager-sub000/internal/models"
)

var ErrStorageNotFound = errors.New("storage not found")

type StorageRepository struct {
	db Querier
}

func NewStorageRepository(db Querier) *StorageRepository {
	return &StorageRepository{db: db}
}

func (r *StorageRepository) Create(ctx context.Context, storage models.Storage) error {
	const query = `
		INSERT INTO storages (id, company_id, name, address, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		storage.ID,
		storage.CompanyID,
		storage.Name,
		storage.Address,
		storage.Latitude,
		storage.Longitude,
	)
	return mapWriteError(err)
}

// GetByID only returns a row inside the caller's company. An id that exists
// under another tenant looks exactly like a missing id.
func (r *StorageRepository) GetByID(ctx context.Context, id, companyID string) (models.Storage, error) {
	const query = `
		SELECT id, company_id, name, address, latitude, longitude, created_at, updated_at
		FROM storages
		WHERE id = $1 AND company_id = $2
	`

	row := r.db.QueryRow(ctx, query, id, companyID)
	var storage models.Storage
	if err := row.Scan(
		&storage.ID,
		&storage.CompanyID,
		&storage.Name,
		&storage.Address,
		&storage.Latitude,
		&storage.Longitude,
		&storage.CreatedAt,
		&storage.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Storage{}, ErrStorageNotFound
		}
		return models.Storage{}, err
	}
	return storage, nil
}

func (r *StorageRepository) List(ctx context.Context, companyID string, limit, offset int) ([]models.Storage, error) {
	const query = `
		SELECT id, company_id, name, address, latitude, longitude, created_at, updated_at
		FROM storages
		WHERE company_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var storages []models.Storage
	for rows.Next() {
		var storage models.Storage
		if err := rows.Scan(
			&storage.ID,
			&storage.CompanyID,
			&storage.Name,
			&storage.Address,
			&storage.Latitude,
			&storage.Longitude,
			&storage.CreatedAt,
			&storage.UpdatedAt,
		); err != nil {
			return nil, err
		}
		storages = append(storages, storage)
	}
	return storages, rows.Err()
}

func (r *StorageRepository) Update(ctx context.Context, storage models.Storage) error {
	const query = `
		UPDATE storages
		SET name = $3, address = $4, latitude = $5, longitude = $6, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`
	cmd, err := r.db.Exec(ctx, query,
		storage.ID,
		storage.CompanyID,
		storage.Name,
		storage.Address,
		storage.Latitude,
		storage.Longitude,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrStorageNotFound
	}
	return nil
}

func (r *StorageRepository) Delete(ctx context.Context, id, companyID string) error {
	const query = `DELETE FROM storages WHERE id = $1 AND company_id = $2`
	cmd, err := r.db.Exec(ctx, query, id, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStorageNotFound
	}
	return nil
}
