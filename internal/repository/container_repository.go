package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/luisale89/storage-manager-sub000/internal/models"
)

var ErrContainerNotFound = errors.New("container not found")

// ContainerRepository scopes containers to a company through their parent
// storage; containers carry no company_id column of their own.
type ContainerRepository struct {
	db Querier
}

func NewContainerRepository(db Querier) *ContainerRepository {
	return &ContainerRepository{db: db}
}

// Create inserts only when the parent storage belongs to the company. Zero
// rows affected means the storage id is absent or foreign.
func (r *ContainerRepository) Create(ctx context.Context, container models.Container, companyID string) error {
	const query = `
		INSERT INTO containers (id, storage_id, code, description, created_at, updated_at)
		SELECT $1, s.id, $3, $4, NOW(), NOW()
		FROM storages s
		WHERE s.id = $2 AND s.company_id = $5
	`
	cmd, err := r.db.Exec(ctx, query,
		container.ID,
		container.StorageID,
		container.Code,
		container.Description,
		companyID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrStorageNotFound
	}
	return nil
}

const containerSelect = `
	SELECT c.id, c.storage_id, c.code, c.description, c.qr_object_key, c.created_at, c.updated_at
	FROM containers c
	JOIN storages s ON s.id = c.storage_id
`

func (r *ContainerRepository) GetByID(ctx context.Context, id, companyID string) (models.Container, error) {
	const query = containerSelect + ` WHERE c.id = $1 AND s.company_id = $2`

	row := r.db.QueryRow(ctx, query, id, companyID)
	var container models.Container
	if err := row.Scan(
		&container.ID,
		&container.StorageID,
		&container.Code,
		&container.Description,
		&container.QRObjectKey,
		&container.CreatedAt,
		&container.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Container{}, ErrContainerNotFound
		}
		return models.Container{}, err
	}
	return container, nil
}

func (r *ContainerRepository) ListByStorage(ctx context.Context, storageID, companyID string, limit, offset int) ([]models.Container, error) {
	const query = containerSelect + `
		WHERE c.storage_id = $1 AND s.company_id = $2
		ORDER BY c.code
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, storageID, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var containers []models.Container
	for rows.Next() {
		var container models.Container
		if err := rows.Scan(
			&container.ID,
			&container.StorageID,
			&container.Code,
			&container.Description,
			&container.QRObjectKey,
			&container.CreatedAt,
			&container.UpdatedAt,
		); err != nil {
			return nil, err
		}
		containers = append(containers, container)
	}
	return containers, rows.Err()
}

func (r *ContainerRepository) Update(ctx context.Context, container models.Container, companyID string) error {
	const query = `
		UPDATE containers c
		SET code = $3, description = $4, updated_at = NOW()
		FROM storages s
		WHERE c.id = $1 AND c.storage_id = s.id AND s.company_id = $2
	`
	cmd, err := r.db.Exec(ctx, query, container.ID, companyID, container.Code, container.Description)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrContainerNotFound
	}
	return nil
}

func (r *ContainerRepository) SetQRObjectKey(ctx context.Context, id, companyID, objectKey string) error {
	const query = `
		UPDATE containers c
		SET qr_object_key = $3, updated_at = NOW()
		FROM storages s
		WHERE c.id = $1 AND c.storage_id = s.id AND s.company_id = $2
	`
	cmd, err := r.db.Exec(ctx, query, id, companyID, objectKey)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrContainerNotFound
	}
	return nil
}

func (r *ContainerRepository) Delete(ctx context.Context, id, companyID string) error {
	const query = `
		DELETE FROM containers c
		USING storages s
		WHERE c.id = $1 AND c.storage_id = s.id AND s.company_id = $2
	`
	cmd, err := r.db.Exec(ctx, query, id, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrContainerNotFound
	}
	return nil
}
