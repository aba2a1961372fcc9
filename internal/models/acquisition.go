package models

import "time"

type Acquisition struct {
	ID         string
	CompanyID  string
	ProviderID *string
	Reference  string
	Notes      *string
	CreatedBy  string // role id of the operator who recorded it
	CreatedAt  time.Time
}

type AcquisitionLine struct {
	ID            string
	AcquisitionID string
	ItemID        string
	ContainerID   string
	Quantity      float64
	UnitCost      float64
}

type MovementKind string

const (
	MovementEntry    MovementKind = "entry"
	MovementExit     MovementKind = "exit"
	MovementTransfer MovementKind = "transfer"
)

// Movement records one stock mutation against a container. Transfers are a
// pair of rows sharing a group id, one exit and one entry.
type Movement struct {
	ID          string
	CompanyID   string
	ItemID      string
	ContainerID string
	Kind        MovementKind
	GroupID     *string
	Quantity    float64
	Notes       *string
	CreatedBy   string
	CreatedAt   time.Time
}

// StockLevel is the current quantity of an item inside one container.
type StockLevel struct {
	ItemID      string
	ContainerID string
	StorageID   string
	Quantity    float64
	UpdatedAt   time.Time
}
