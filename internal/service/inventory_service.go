package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/luisale89/storage-manager-sub000/internal/ids"
	"github.com/luisale89/storage-manager-sub000/internal/models"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// InventoryTxStore is the transactional slice of repository.TxStore the
// stock flows use.
type InventoryTxStore interface {
	CreateAcquisition(ctx context.Context, acquisition models.Acquisition, lines []models.AcquisitionLine) error
	ApplyMovement(ctx context.Context, movement models.Movement, toContainerID string) error
}

type AcquisitionInput struct {
	ProviderID *string
	Reference  string
	Notes      *string
	Lines      []AcquisitionLineInput
}

type AcquisitionLineInput struct {
	ItemID      string
	ContainerID string
	Quantity    float64
	UnitCost    float64
}

type MovementInput struct {
	ItemID        string
	ContainerID   string
	ToContainerID string // transfers only
	Kind          models.MovementKind
	Quantity      float64
	Notes         *string
}

type InventoryService struct {
	tx  InventoryTxStore
	log zerolog.Logger
}

func NewInventoryService(tx InventoryTxStore, log zerolog.Logger) *InventoryService {
	return &InventoryService{tx: tx, log: log}
}

// CreateAcquisition records a purchase and its initial stock in one commit.
// The acting role's company scopes every referenced item and container.
func (s *InventoryService) CreateAcquisition(ctx context.Context, actor models.RolePrincipal, input AcquisitionInput) (models.Acquisition, error) {
	acquisition := models.Acquisition{
		ID:         ids.New(),
		CompanyID:  actor.CompanyID,
		ProviderID: input.ProviderID,
		Reference:  input.Reference,
		Notes:      input.Notes,
		CreatedBy:  actor.ID,
	}

	lines := make([]models.AcquisitionLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return models.Acquisition{}, ErrInvalidQuantity
		}
		lines = append(lines, models.AcquisitionLine{
			ID:            ids.New(),
			AcquisitionID: acquisition.ID,
			ItemID:        line.ItemID,
			ContainerID:   line.ContainerID,
			Quantity:      line.Quantity,
			UnitCost:      line.UnitCost,
		})
	}

	if err := s.tx.CreateAcquisition(ctx, acquisition, lines); err != nil {
		return models.Acquisition{}, err
	}
	return acquisition, nil
}

// RecordMovement applies an entry, exit or transfer for the actor's company.
func (s *InventoryService) RecordMovement(ctx context.Context, actor models.RolePrincipal, input MovementInput) (models.Movement, error) {
	if input.Quantity <= 0 {
		return models.Movement{}, ErrInvalidQuantity
	}

	movement := models.Movement{
		ID:          ids.New(),
		CompanyID:   actor.CompanyID,
		ItemID:      input.ItemID,
		ContainerID: input.ContainerID,
		Kind:        input.Kind,
		Quantity:    input.Quantity,
		Notes:       input.Notes,
		CreatedBy:   actor.ID,
	}

	if err := s.tx.ApplyMovement(ctx, movement, input.ToContainerID); err != nil {
		return models.Movement{}, err
	}
	return movement, nil
}
