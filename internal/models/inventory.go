package models

import "time"

type Storage struct {
	ID        string
	CompanyID string
	Name      string
	Address   *string
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Container struct {
	ID          string
	StorageID   string
	Code        string
	Description *string
	QRObjectKey *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Category struct {
	ID        string
	CompanyID string
	ParentID  *string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Item struct {
	ID          string
	CompanyID   string
	CategoryID  *string
	Name        string
	SKU         string
	Description *string
	UnitPrice   float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Attribute struct {
	ID        string
	CompanyID string
	Name      string
	CreatedAt time.Time
}

// AttributeValue attaches one attribute with a concrete value to an item.
type AttributeValue struct {
	ID          string
	ItemID      string
	AttributeID string
	Value       string
}

type Provider struct {
	ID        string
	CompanyID string
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
