package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/luisale89/storage-manager-sub000/internal/models"
)

var ErrAcquisitionNotFound = errors.New("acquisition not found")

type AcquisitionRepository struct {
	db Querier
}

func NewAcquisitionRepository(db Querier) *AcquisitionRepository {
	return &AcquisitionRepository{db: db}
}

func (r *AcquisitionRepository) Create(ctx context.Context, acquisition models.Acquisition) error {
	const query = `
		INSERT INTO acquisitions (id, company_id, provider_id, reference, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query,
		acquisition.ID,
		acquisition.CompanyID,
		acquisition.ProviderID,
		acquisition.Reference,
		acquisition.Notes,
		acquisition.CreatedBy,
	)
	return mapWriteError(err)
}

// CreateLine inserts one acquisition line, checking that the item and the
// container both belong to the acquisition's company.
func (r *AcquisitionRepository) CreateLine(ctx context.Context, line models.AcquisitionLine, companyID string) error {
	const query = `
		INSERT INTO acquisition_lines (id, acquisition_id, item_id, container_id, quantity, unit_cost)
		SELECT $1, $2, i.id, c.id, $5, $6
		FROM items i,
		     containers c JOIN storages s ON s.id = c.storage_id
		WHERE i.id = $3 AND i.company_id = $7
		  AND c.id = $4 AND s.company_id = $7
	`
	cmd, err := r.db.Exec(ctx, query,
		line.ID,
		line.AcquisitionID,
		line.ItemID,
		line.ContainerID,
		line.Quantity,
		line.UnitCost,
		companyID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *AcquisitionRepository) GetByID(ctx context.Context, id, companyID string) (models.Acquisition, []models.AcquisitionLine, error) {
	const query = `
		SELECT id, company_id, provider_id, reference, notes, created_by, created_at
		FROM acquisitions
		WHERE id = $1 AND company_id = $2
	`

	row := r.db.QueryRow(ctx, query, id, companyID)
	var acquisition models.Acquisition
	if err := row.Scan(
		&acquisition.ID,
		&acquisition.CompanyID,
		&acquisition.ProviderID,
		&acquisition.Reference,
		&acquisition.Notes,
		&acquisition.CreatedBy,
		&acquisition.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Acquisition{}, nil, ErrAcquisitionNotFound
		}
		return models.Acquisition{}, nil, err
	}

	const lineQuery = `
		SELECT id, acquisition_id, item_id, container_id, quantity, unit_cost
		FROM acquisition_lines
		WHERE acquisition_id = $1
	`
	rows, err := r.db.Query(ctx, lineQuery, id)
	if err != nil {
		return models.Acquisition{}, nil, err
	}
	defer rows.Close()

	var lines []models.AcquisitionLine
	for rows.Next() {
		var line models.AcquisitionLine
		if err := rows.Scan(
			&line.ID,
			&line.AcquisitionID,
			&line.ItemID,
			&line.ContainerID,
			&line.Quantity,
			&line.UnitCost,
		); err != nil {
			return models.Acquisition{}, nil, err
		}
		lines = append(lines, line)
	}
	return acquisition, lines, rows.Err()
}

func (r *AcquisitionRepository) List(ctx context.Context, companyID string, limit, offset int) ([]models.Acquisition, error) {
	const query = `
		SELECT id, company_id, provider_id, reference, notes, created_by, created_at
		FROM acquisitions
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var acquisitions []models.Acquisition
	for rows.Next() {
		var acquisition models.Acquisition
		if err := rows.Scan(
			&acquisition.ID,
			&acquisition.CompanyID,
			&acquisition.ProviderID,
			&acquisition.Reference,
			&acquisition.Notes,
			&acquisition.CreatedBy,
			&acquisition.CreatedAt,
		); err != nil {
			return nil, err
		}
		acquisitions = append(acquisitions, acquisition)
	}
	return acquisitions, rows.Err()
}
