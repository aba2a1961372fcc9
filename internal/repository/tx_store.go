package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/luisale89/storage-manager-sub000/internal/database"
	"github.com/luisale89/storage-manager-sub000/internal/ids"
	"github.com/luisale89/storage-manager-sub000/internal/models"
)

// TxStore bundles the multi-row writes that must commit or roll back as one.
// Authorization failures never reach these; by the time a TxStore method
// runs, the principal has already been resolved and level-checked.
type TxStore struct {
	db database.TxBeginner
}

func NewTxStore(db database.TxBeginner) *TxStore {
	return &TxStore{db: db}
}

// CreateCompanyWithOwner creates the tenant and its founding owner role.
func (s *TxStore) CreateCompanyWithOwner(ctx context.Context, company models.Company, owner models.Role) error {
	return database.WithTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := NewCompanyRepository(tx).Create(ctx, company); err != nil {
			return err
		}
		return NewRoleRepository(tx).Create(ctx, owner)
	})
}

// AddMember creates the invited account (when it does not exist yet) and its
// role in one transaction, so a failure leaves no orphaned user row.
func (s *TxStore) AddMember(ctx context.Context, newUser *models.User, role models.Role) error {
	return database.WithTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		if newUser != nil {
			if err := NewUserRepository(tx).Create(ctx, *newUser); err != nil {
				return err
			}
		}
		return NewRoleRepository(tx).Create(ctx, role)
	})
}

// ReplaceItemAttributes swaps the item's full attribute set atomically. A bad
// attribute id aborts the whole replace and leaves the old set in place.
func (s *TxStore) ReplaceItemAttributes(ctx context.Context, itemID, companyID string, values []models.AttributeValue) error {
	return database.WithTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		return NewItemRepository(tx).ReplaceAttributeValues(ctx, itemID, companyID, values)
	})
}

// CreateAcquisition writes the acquisition, its lines, the entry movements
// and the stock increments atomically.
func (s *TxStore) CreateAcquisition(ctx context.Context, acquisition models.Acquisition, lines []models.AcquisitionLine) error {
	return database.WithTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		acqs := NewAcquisitionRepository(tx)
		stock := NewStockRepository(tx)

		if err := acqs.Create(ctx, acquisition); err != nil {
			return err
		}
		for _, line := range lines {
			if err := acqs.CreateLine(ctx, line, acquisition.CompanyID); err != nil {
				return err
			}
			if err := stock.AddStock(ctx, line.ItemID, line.ContainerID, acquisition.CompanyID, line.Quantity); err != nil {
				return err
			}
			if err := stock.InsertMovement(ctx, models.Movement{
				ID:          ids.New(),
				CompanyID:   acquisition.CompanyID,
				ItemID:      line.ItemID,
				ContainerID: line.ContainerID,
				Kind:        models.MovementEntry,
				Quantity:    line.Quantity,
				CreatedBy:   acquisition.CreatedBy,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyMovement records one inventory movement and adjusts stock. Transfers
// produce an exit and an entry sharing the movement's group id.
func (s *TxStore) ApplyMovement(ctx context.Context, movement models.Movement, toContainerID string) error {
	return database.WithTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		stock := NewStockRepository(tx)

		switch movement.Kind {
		case models.MovementEntry:
			if err := stock.AddStock(ctx, movement.ItemID, movement.ContainerID, movement.CompanyID, movement.Quantity); err != nil {
				return err
			}
			return stock.InsertMovement(ctx, movement)

		case models.MovementExit:
			if err := stock.RemoveStock(ctx, movement.ItemID, movement.ContainerID, movement.CompanyID, movement.Quantity); err != nil {
				return err
			}
			return stock.InsertMovement(ctx, movement)

		case models.MovementTransfer:
			groupID := ids.New()
			movement.GroupID = &groupID

			if err := stock.RemoveStock(ctx, movement.ItemID, movement.ContainerID, movement.CompanyID, movement.Quantity); err != nil {
				return err
			}
			out := movement
			out.Kind = models.MovementExit
			if err := stock.InsertMovement(ctx, out); err != nil {
				return err
			}

			if err := stock.AddStock(ctx, movement.ItemID, toContainerID, movement.CompanyID, movement.Quantity); err != nil {
				return err
			}
			in := movement
			in.ID = ids.New()
			in.Kind = models.MovementEntry
			in.ContainerID = toContainerID
			return stock.InsertMovement(ctx, in)

		default:
			return fmt.Errorf("unknown movement kind %q", movement.Kind)
		}
	})
}
